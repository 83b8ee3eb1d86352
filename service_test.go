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
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/model"
	"github.com/tomoncle/storekeeper/types"
)

var fixedNow = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func newStoreService(t *testing.T) *StoreService {
	t.Helper()
	l, _ := logtest.NewNullLogger()
	logger := database.NewLogger(l)

	cfg := database.DefaultConnectionConfig()
	cfg.DBName = "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	cfg.AutoCreate = true
	dm, err := database.Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dm.Disconnect() })

	tm := database.NewTxManager(dm.GetDB(), database.WithTxLogger(logger))
	return NewStoreService(tm).WithClock(func() time.Time { return fixedNow })
}

func TestRegisterCreatesStoreAndDevices(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx,
		&model.Store{OwnerID: 9, Name: "North", Phone: "100"},
		&model.Device{Serial: "S-1", Name: "till"},
		&model.Device{Serial: "S-2", Name: "scanner"},
	)
	require.NoError(t, err)
	require.NotNil(t, reg.Store.ID)
	assert.True(t, reg.Store.RegDate.Equal(fixedNow))
	require.Len(t, reg.Devices, 2)
	for _, d := range reg.Devices {
		assert.Equal(t, *reg.Store.ID, d.StoreID)
		assert.NotNil(t, d.ID)
	}

	devices, err := svc.Devices(ctx, *reg.Store.ID, types.NewSorter("serial", "desc"))
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "S-2", devices[0].Serial)
}

func TestRegisterIsAtomic(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx,
		&model.Store{OwnerID: 9, Name: "North", Phone: "100"},
		&model.Device{Serial: "dup", Name: "a"},
		&model.Device{Serial: "dup", Name: "b"},
	)
	require.Error(t, err)
	assert.True(t, errs.IsPersistence(err))

	stores, err := svc.StoresOf(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, stores, "store insert must roll back with the failed device")
}

func TestServiceUpdateAndDeleteReportNotFound(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, &model.Store{OwnerID: 1, Name: "a", Phone: "1", RegDate: fixedNow, ModDate: fixedNow})
	require.NoError(t, err)

	saved.Name = "renamed"
	require.NoError(t, svc.Touch(ctx, saved))
	got, err := svc.Get(ctx, *saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, svc.Delete(ctx, *saved.ID))
	err = svc.Delete(ctx, *saved.ID)
	assert.True(t, errs.IsNotFound(err))

	err = svc.Update(ctx, saved)
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Get(ctx, *saved.ID)
	assert.True(t, errs.IsNotFound(err))

	_, err = svc.Devices(ctx, *saved.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestServicePage(t *testing.T) {
	svc := newStoreService(t)
	ctx := context.Background()
	for _, name := range []string{"c", "a", "b"} {
		_, err := svc.Save(ctx, &model.Store{OwnerID: 1, Name: name, Phone: "p-" + name, RegDate: fixedNow, ModDate: fixedNow})
		require.NoError(t, err)
	}

	page, err := svc.Page(ctx, types.Page{Page: 1, PageSize: 2}, nil, types.NewSorter("name", "asc"))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a", page.Items[0].Name)
	assert.Equal(t, "b", page.Items[1].Name)
}
