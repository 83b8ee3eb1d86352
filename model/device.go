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

	"github.com/tomoncle/storekeeper/repository"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
)

// Device is a terminal installed in a store.
type Device struct {
	ID      *int64    `json:"id,omitempty"`
	StoreID int64     `json:"storeId"`
	Serial  string    `json:"serial"`
	Name    string    `json:"name"`
	RegDate time.Time `json:"regDate"`
	ModDate time.Time `json:"modDate"`
}

type DeviceRow struct {
	bun.BaseModel `bun:"table:devices,alias:d"`

	ID      int64     `bun:"id,pk,autoincrement"`
	StoreID int64     `bun:"store_id,notnull"`
	Serial  string    `bun:"serial,notnull,unique"`
	Name    string    `bun:"name,notnull"`
	RegDate time.Time `bun:"reg_date,notnull"`
	ModDate time.Time `bun:"mod_date,notnull"`
}

var DeviceTable = repository.NewTable("devices", "id",
	repository.WithSortable("id", repository.Column("id")),
	repository.WithSortable("serial", repository.Column("serial")),
	repository.WithSortable("name", repository.Column("name")),
	repository.WithSortable("regDate", repository.Column("reg_date")),
	repository.WithUpdateColumns("name", "mod_date"),
)

type deviceMapper struct{}

func (deviceMapper) InsertRow(m *Device) *DeviceRow {
	return &DeviceRow{
		StoreID: m.StoreID,
		Serial:  m.Serial,
		Name:    m.Name,
		RegDate: m.RegDate,
		ModDate: m.ModDate,
	}
}

func (mp deviceMapper) UpdateRow(m *Device) *DeviceRow {
	row := mp.InsertRow(m)
	if m.ID != nil {
		row.ID = *m.ID
	}
	return row
}

func (deviceMapper) ToModel(r *DeviceRow) *Device {
	id := r.ID
	return &Device{
		ID:      &id,
		StoreID: r.StoreID,
		Serial:  r.Serial,
		Name:    r.Name,
		RegDate: r.RegDate,
		ModDate: r.ModDate,
	}
}

func (deviceMapper) ID(m *Device) (int64, bool) { return ptrID(m.ID) }

func (deviceMapper) SetID(m *Device, id int64) { m.ID = &id }

func (deviceMapper) RowID(r *DeviceRow) int64 { return r.ID }

type DeviceRepository struct {
	repository.Repository[Device, int64]
}

func NewDeviceRepository(db *bun.DB) *DeviceRepository {
	return &DeviceRepository{repository.NewRepository[Device, DeviceRow, int64](db, DeviceTable, deviceMapper{})}
}

// FindAllByOwner lists the devices of one store.
func (r *DeviceRepository) FindAllByOwner(ctx context.Context, storeID int64, sorters ...types.Sorter) ([]*Device, error) {
	return r.FindAllBy(ctx, "store_id", storeID, sorters...)
}
