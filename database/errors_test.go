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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySQLError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want SQLError
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, DuplicateKeyErr},
		{"mysql missing table", &mysql.MySQLError{Number: 1146}, NoTableErr},
		{"mysql fk", fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1452}), ForeignKeyViolationErr},
		{"pq unique", &pq.Error{Code: "23505"}, DuplicateKeyErr},
		{"pq not null", &pq.Error{Code: "23502"}, NotNullViolationErr},
		{"pq other", &pq.Error{Code: "08006"}, UnknownErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: stores.phone (2067)"), DuplicateKeyErr},
		{"sqlite no table", errors.New("SQL logic error: no such table: stores (1)"), NoTableErr},
		{"no rows", fmt.Errorf("find: %w", sql.ErrNoRows), NoRowsErr},
		{"plain", errors.New("connection reset"), UnknownErr},
		{"nil", nil, UnknownErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySQLError(tc.err))
		})
	}
}

func TestSQLErrorNames(t *testing.T) {
	assert.Equal(t, "duplicate_key", DuplicateKeyErr.String())
	assert.Equal(t, "unknown", SQLError(99).String())
	assert.True(t, DuplicateKeyErr.IsConstraintViolation())
	assert.False(t, NoTableErr.IsConstraintViolation())
}

func TestClassifyRealSQLiteViolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, insertWidget(ctx, db, "dup"))
	err := insertWidget(ctx, db, "dup")
	require.Error(t, err)
	assert.Equal(t, DuplicateKeyErr, ClassifySQLError(err))
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, CreateTables(context.Background(), db, (*widget)(nil)))
}

func TestOpenSQLiteMemory(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.DBName = "file:database_open_test?mode=memory&cache=shared"
	cfg.AutoCreate = true

	dm, err := Open(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dm.Disconnect() })

	status := dm.HealthCheck(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, dm.GetStats().MaxOpenConns)
	assert.NoError(t, CreateTables(context.Background(), dm.GetDB(), (*widget)(nil)))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "storekeeper.db", sqliteDSN("storekeeper"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "data/app.db", sqliteDSN("data/app.db"))
	assert.True(t, isSQLiteMemory(&ConnectionConfig{Type: "sqlite", DBName: "file:x?mode=memory&cache=shared"}))
	assert.False(t, isSQLiteMemory(&ConnectionConfig{Type: "sqlite", DBName: "storekeeper"}))
	assert.False(t, isSQLiteMemory(&ConnectionConfig{Type: "mysql", DBName: ":memory:"}))
}

func TestDialectFor(t *testing.T) {
	c := &ConnectionConfig{
		Type: "postgres", Host: "db", Port: 5432, Username: "app", Password: "p@ss",
		DBName: "shop", ConnectTimeout: 5 * time.Second,
	}
	driver, dsn, dialect, err := dialectFor(c)
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/shop?sslmode=disable&connect_timeout=5", dsn)
	assert.Equal(t, "pg", dialect.Name().String())

	c.Type = "mysql"
	_, dsn, _, err = dialectFor(c)
	require.NoError(t, err)
	assert.Contains(t, dsn, "app:p@ss@tcp(db:5432)/shop?")
	assert.Contains(t, dsn, "clientFoundRows=true")

	c.Type = "oracle"
	_, _, _, err = dialectFor(c)
	assert.ErrorContains(t, err, "unsupported database type")
}
