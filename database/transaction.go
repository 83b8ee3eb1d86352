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

	"github.com/google/uuid"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/uptrace/bun"
)

// NestedPolicy decides what Run does when ctx already carries a transaction.
type NestedPolicy int

const (
	// NestedJoin runs the inner work inside the outer transaction.
	NestedJoin NestedPolicy = iota
	// NestedFail rejects the inner call with errs.ErrNestedTransaction.
	NestedFail
)

type scopeKey struct{}

// scope is one open transaction. Scopes of different databases nest through
// parent, so a context can carry at most one scope per *bun.DB.
type scope struct {
	id     string
	db     *bun.DB
	tx     bun.Tx
	parent *scope
}

// scopeOf returns the scope ctx carries for db, or the innermost scope when
// db is nil.
func scopeOf(ctx context.Context, db *bun.DB) *scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeKey{}).(*scope)
	for ; s != nil && db != nil; s = s.parent {
		if s.db == db {
			return s
		}
	}
	return s
}

// TxManager opens transaction scopes over a shared *bun.DB. The active
// transaction travels in the context handed to the work function.
type TxManager struct {
	db     *bun.DB
	logger Logger
	nested NestedPolicy
	opts   *sql.TxOptions
}

type TxOption func(*TxManager)

func WithNestedPolicy(p NestedPolicy) TxOption {
	return func(m *TxManager) { m.nested = p }
}

func WithTxOptions(opts *sql.TxOptions) TxOption {
	return func(m *TxManager) { m.opts = opts }
}

func WithTxLogger(logger Logger) TxOption {
	return func(m *TxManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewTxManager(db *bun.DB, opts ...TxOption) *TxManager {
	m := &TxManager{db: db, logger: GetLogger(), nested: NestedJoin}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DB returns the shared database handle.
func (m *TxManager) DB() *bun.DB {
	return m.db
}

// Run executes work inside a transaction. It commits when work returns nil
// and rolls back otherwise, returning the work error unchanged. A panic in
// work rolls back and is re-raised.
func (m *TxManager) Run(ctx context.Context, work func(ctx context.Context) error) (err error) {
	if active := scopeOf(ctx, m.db); active != nil {
		if m.nested == NestedFail {
			return fmt.Errorf("%w: scope %s already active", errs.ErrNestedTransaction, active.id)
		}
		m.logger.Debug("joining active transaction", "scope_id", active.id)
		return work(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		m.logger.Error("failed to begin transaction", "error", err)
		return errs.NewPersistenceError("begin", "", ClassifySQLError(err).String(), err)
	}
	s := &scope{id: uuid.NewString(), db: m.db, tx: tx, parent: scopeOf(ctx, nil)}
	txCtx := context.WithValue(ctx, scopeKey{}, s)
	m.logger.Debug("transaction started", "scope_id", s.id)

	defer func() {
		if p := recover(); p != nil {
			m.rollback(s, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := work(txCtx); err != nil {
		m.rollback(s, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		m.rollback(s, err)
		return err
	}
	if err := tx.Commit(); err != nil {
		m.logger.Error("failed to commit transaction", "scope_id", s.id, "error", err)
		return errs.NewPersistenceError("commit", "", ClassifySQLError(err).String(), err)
	}
	m.logger.Debug("transaction committed", "scope_id", s.id)
	return nil
}

func (m *TxManager) rollback(s *scope, cause error) {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		m.logger.Error("failed to roll back transaction", "scope_id", s.id, "error", err, "cause", cause)
		return
	}
	m.logger.Debug("transaction rolled back", "scope_id", s.id, "cause", cause)
}

// InTx is Run for work that produces a value. The zero value is returned
// whenever the scope fails.
func InTx[T any](ctx context.Context, m *TxManager, work func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.Run(ctx, func(ctx context.Context) error {
		v, err := work(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// IDB returns the transaction ctx carries for db, or db itself when ctx has
// none. Transactions opened on other databases are never returned.
func IDB(ctx context.Context, db bun.IDB) bun.IDB {
	if d, ok := db.(*bun.DB); ok {
		if s := scopeOf(ctx, d); s != nil {
			return s.tx
		}
	}
	return db
}

// ScopeID returns the id of the innermost transaction scope carried by ctx.
func ScopeID(ctx context.Context) (string, bool) {
	if s := scopeOf(ctx, nil); s != nil {
		return s.id, true
	}
	return "", false
}

// ScopeIDFor returns the id of the scope ctx carries for db.
func ScopeIDFor(ctx context.Context, db *bun.DB) (string, bool) {
	if db == nil {
		return "", false
	}
	if s := scopeOf(ctx, db); s != nil {
		return s.id, true
	}
	return "", false
}
