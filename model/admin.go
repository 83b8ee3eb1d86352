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
	"time"

	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/repository"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
)

// Admin is a back-office account.
type Admin struct {
	ID      *int64     `json:"id,omitempty"`
	LoginID string     `json:"loginId"`
	Name    string     `json:"name"`
	Phone   string     `json:"phone"`
	Role    types.Role `json:"role"`
	RegDate time.Time  `json:"regDate"`
	ModDate time.Time  `json:"modDate"`
}

// AdminRow stores the role by name.
type AdminRow struct {
	bun.BaseModel `bun:"table:admins,alias:a"`

	ID      int64     `bun:"id,pk,autoincrement"`
	LoginID string    `bun:"login_id,notnull,unique"`
	Name    string    `bun:"name,notnull"`
	Phone   string    `bun:"phone,notnull"`
	Role    string    `bun:"role,notnull"`
	RegDate time.Time `bun:"reg_date,notnull"`
	ModDate time.Time `bun:"mod_date,notnull"`
}

var AdminTable = repository.NewTable("admins", "id",
	repository.WithSortable("id", repository.Column("id")),
	repository.WithSortable("loginId", repository.Column("login_id")),
	repository.WithSortable("name", repository.Column("name")),
	repository.WithSortable("role", repository.Expr(
		"CASE ? WHEN 'SUPER' THEN 0 WHEN 'MANAGER' THEN 1 ELSE 2 END", bun.Ident("role"))),
	repository.WithSortable("regDate", repository.Column("reg_date")),
	repository.WithUpdateColumns("name", "phone", "role", "mod_date"),
)

type adminMapper struct{}

func (adminMapper) InsertRow(m *Admin) *AdminRow {
	return &AdminRow{
		LoginID: m.LoginID,
		Name:    m.Name,
		Phone:   m.Phone,
		Role:    m.Role.Name(),
		RegDate: m.RegDate,
		ModDate: m.ModDate,
	}
}

func (mp adminMapper) UpdateRow(m *Admin) *AdminRow {
	row := mp.InsertRow(m)
	if m.ID != nil {
		row.ID = *m.ID
	}
	return row
}

func (adminMapper) ToModel(r *AdminRow) *Admin {
	id := r.ID
	role, _ := types.ParseRole(r.Role)
	return &Admin{
		ID:      &id,
		LoginID: r.LoginID,
		Name:    r.Name,
		Phone:   r.Phone,
		Role:    role,
		RegDate: r.RegDate,
		ModDate: r.ModDate,
	}
}

func (adminMapper) ID(m *Admin) (int64, bool) { return ptrID(m.ID) }

func (adminMapper) SetID(m *Admin, id int64) { m.ID = &id }

func (adminMapper) RowID(r *AdminRow) int64 { return r.ID }

type AdminRepository struct {
	repository.Repository[Admin, int64]
}

func NewAdminRepository(db *bun.DB) *AdminRepository {
	return &AdminRepository{repository.NewRepository[Admin, AdminRow, int64](db, AdminTable, adminMapper{})}
}

// FindAllByOwner has no owner relation to follow yet.
func (r *AdminRepository) FindAllByOwner(ctx context.Context, ownerID int64, sorters ...types.Sorter) ([]*Admin, error) {
	return nil, errs.NewNotImplementedError("admins.FindAllByOwner")
}

func (r *AdminRepository) FindAllByRole(ctx context.Context, role types.Role, sorters ...types.Sorter) ([]*Admin, error) {
	if !role.IsValid() {
		return nil, errs.NewInvalidArgumentError("role", "unknown role")
	}
	return r.FindAllBy(ctx, "role", role.Name(), sorters...)
}
