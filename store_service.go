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

package storekeeper

import (
	"context"
	"time"

	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/model"
	"github.com/tomoncle/storekeeper/types"
)

// Registration is a store together with the devices registered with it.
type Registration struct {
	Store   *model.Store
	Devices []*model.Device
}

type StoreService struct {
	Service[model.Store, int64]

	stores  *model.StoreRepository
	devices *model.DeviceRepository
	tx      *database.TxManager
	now     func() time.Time
}

func NewStoreService(tx *database.TxManager) *StoreService {
	stores := model.NewStoreRepository(tx.DB())
	return &StoreService{
		Service: NewService[model.Store, int64](stores, tx),
		stores:  stores,
		devices: model.NewDeviceRepository(tx.DB()),
		tx:      tx,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp reg_date and mod_date.
func (s *StoreService) WithClock(now func() time.Time) *StoreService {
	s.now = now
	return s
}

// Register creates the store and its devices in one scope. Either all rows
// are written or none are.
func (s *StoreService) Register(ctx context.Context, store *model.Store, devices ...*model.Device) (*Registration, error) {
	if store == nil {
		return nil, errs.NewInvalidArgumentError("store", "must not be nil")
	}
	return database.InTx(ctx, s.tx, func(ctx context.Context) (*Registration, error) {
		now := s.now().UTC()
		in := *store
		in.RegDate, in.ModDate = now, now
		created, err := s.stores.Create(ctx, &in)
		if err != nil {
			return nil, err
		}

		out := &Registration{Store: created, Devices: make([]*model.Device, 0, len(devices))}
		for _, d := range devices {
			if d == nil {
				return nil, errs.NewInvalidArgumentError("device", "must not be nil")
			}
			dev := *d
			dev.StoreID = *created.ID
			dev.RegDate, dev.ModDate = now, now
			saved, err := s.devices.Create(ctx, &dev)
			if err != nil {
				return nil, err
			}
			out.Devices = append(out.Devices, saved)
		}
		return out, nil
	})
}

// Touch updates the store and stamps mod_date.
func (s *StoreService) Touch(ctx context.Context, store *model.Store) error {
	if store == nil {
		return errs.NewInvalidArgumentError("store", "must not be nil")
	}
	in := *store
	in.ModDate = s.now().UTC()
	return s.Service.Update(ctx, &in)
}

// Devices lists the devices of an existing store.
func (s *StoreService) Devices(ctx context.Context, storeID int64, sorters ...types.Sorter) ([]*model.Device, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) ([]*model.Device, error) {
		if _, err := s.stores.Find(ctx, storeID); err != nil {
			return nil, err
		}
		return s.devices.FindAllByOwner(ctx, storeID, sorters...)
	})
}

func (s *StoreService) StoresOf(ctx context.Context, ownerID int64, sorters ...types.Sorter) ([]*model.Store, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) ([]*model.Store, error) {
		return s.stores.FindAllByOwner(ctx, ownerID, sorters...)
	})
}
