/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package model

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"time"

	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/repository"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
)

// Store is a merchant location owned by one account.
type Store struct {
	ID       *int64           `json:"id,omitempty"`
	OwnerID  int64            `json:"ownerId"`
	Name     string           `json:"name"`
	Phone    string           `json:"phone"`
	Address  *string          `json:"address,omitempty"`
	Settings types.JsonObject `json:"settings,omitempty"`
	RegDate  time.Time        `json:"regDate"`
	ModDate  time.Time        `json:"modDate"`
}

type StoreRow struct {
	bun.BaseModel `bun:"table:stores,alias:s"`

	ID       int64            `bun:"id,pk,autoincrement"`
	OwnerID  int64            `bun:"owner_id,notnull"`
	Name     string           `bun:"name,notnull"`
	Phone    string           `bun:"phone,notnull,unique"`
	Address  *string          `bun:"address"`
	Settings types.JsonObject `bun:"settings,type:text"`
	RegDate  time.Time        `bun:"reg_date,notnull"`
	ModDate  time.Time        `bun:"mod_date,notnull"`
}

var StoreTable = repository.NewTable("stores", "id",
	repository.WithSortable("id", repository.Column("id")),
	repository.WithSortable("name", repository.Column("name")),
	repository.WithSortable("phone", repository.Column("phone")),
	repository.WithSortable("regDate", repository.Column("reg_date")),
	repository.WithSortable("modDate", repository.Column("mod_date")),
	repository.WithUpdateColumns("name", "phone", "address", "settings", "mod_date"),
)

type storeMapper struct{}

func (storeMapper) InsertRow(m *Store) *StoreRow {
	return &StoreRow{
		OwnerID:  m.OwnerID,
		Name:     m.Name,
		Phone:    m.Phone,
		Address:  m.Address,
		Settings: maps.Clone(m.Settings),
		RegDate:  m.RegDate,
		ModDate:  m.ModDate,
	}
}

func (mp storeMapper) UpdateRow(m *Store) *StoreRow {
	row := mp.InsertRow(m)
	if m.ID != nil {
		row.ID = *m.ID
	}
	return row
}

func (storeMapper) ToModel(r *StoreRow) *Store {
	id := r.ID
	return &Store{
		ID:       &id,
		OwnerID:  r.OwnerID,
		Name:     r.Name,
		Phone:    r.Phone,
		Address:  r.Address,
		Settings: r.Settings,
		RegDate:  r.RegDate,
		ModDate:  r.ModDate,
	}
}

func (storeMapper) ID(m *Store) (int64, bool) { return ptrID(m.ID) }

func (storeMapper) SetID(m *Store, id int64) { m.ID = &id }

func (storeMapper) RowID(r *StoreRow) int64 { return r.ID }

type StoreRepository struct {
	repository.Repository[Store, int64]
}

func NewStoreRepository(db *bun.DB) *StoreRepository {
	return &StoreRepository{repository.NewRepository[Store, StoreRow, int64](db, StoreTable, storeMapper{})}
}

func (r *StoreRepository) FindAllByOwner(ctx context.Context, ownerID int64, sorters ...types.Sorter) ([]*Store, error) {
	return r.FindAllBy(ctx, "owner_id", ownerID, sorters...)
}

// FindByPhone looks a store up by its unique phone number.
func (r *StoreRepository) FindByPhone(ctx context.Context, phone string) (*Store, error) {
	row := new(StoreRow)
	err := r.NewSelect(ctx).Model(row).Where("? = ?", bun.Ident("phone"), phone).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError(StoreTable.Name(), phone)
	}
	if err != nil {
		return nil, errs.NewPersistenceError("find_by_phone", StoreTable.Name(), database.ClassifySQLError(err).String(), err)
	}
	return storeMapper{}.ToModel(row), nil
}

func ptrID(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}
