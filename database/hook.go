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
	"os"
	"time"

	"github.com/uptrace/bun"
)

// StatementLogHook logs every statement executed inside a transaction scope
// at info level, tagged with the scope id. Statements outside a scope are
// only logged, at debug level, when AllStatements is set or the
// STOREKEEPER_SQL_LOG env var is "2".
type StatementLogHook struct {
	logger        Logger
	AllStatements bool
}

var _ bun.QueryHook = (*StatementLogHook)(nil)

func NewStatementLogHook(logger Logger) *StatementLogHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &StatementLogHook{logger: logger}
}

func (h *StatementLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *StatementLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	// a broken logger must never fail the statement
	defer func() { _ = recover() }()

	scopeID, inScope := eventScope(ctx, event)
	if !inScope && !h.AllStatements && os.Getenv("STOREKEEPER_SQL_LOG") != "2" {
		return
	}

	fields := []interface{}{
		"op", event.Operation(),
		"duration", time.Since(event.StartTime).Round(time.Microsecond),
		"query", event.Query,
	}
	if inScope {
		fields = append(fields, "scope_id", scopeID)
	}

	switch {
	case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows):
		if inScope {
			h.logger.Info("statement executed", fields...)
		} else {
			h.logger.Debug("statement executed", fields...)
		}
	case errors.Is(event.Err, sql.ErrTxDone):
		h.logger.Debug("statement on finished transaction", append(fields, "error", event.Err)...)
	default:
		h.logger.Warn("statement failed", append(fields, "error", event.Err, "kind", ClassifySQLError(event.Err).String())...)
	}
}

// SlowQueryHook warns about statements that ran longer than SlowTime.
type SlowQueryHook struct {
	SlowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{SlowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.SlowTime <= 0 {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.SlowTime {
		return
	}
	fields := []interface{}{
		"duration", duration.Round(time.Microsecond),
		"slow_threshold", h.SlowTime,
		"query", event.Query,
	}
	if id, ok := eventScope(ctx, event); ok {
		fields = append(fields, "scope_id", id)
	}
	h.logger.Warn("slow query detected", fields...)
}

// eventScope finds the scope of the database that ran the statement.
func eventScope(ctx context.Context, event *bun.QueryEvent) (string, bool) {
	if event.DB != nil {
		return ScopeIDFor(ctx, event.DB)
	}
	return ScopeID(ctx)
}
