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

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

type baseRepositoryImpl[M any, R any, ID comparable] struct {
	db     *bun.DB
	table  *Table
	mapper Mapper[M, R, ID]
}

// NewRepository returns a generic repository over the shared Bun DB. The
// executor is chosen per call: the transaction in ctx, else db.
func NewRepository[M any, R any, ID comparable](db *bun.DB, table *Table, mapper Mapper[M, R, ID]) Repository[M, ID] {
	return &baseRepositoryImpl[M, R, ID]{db: db, table: table, mapper: mapper}
}

func (r *baseRepositoryImpl[M, R, ID]) Table() *Table { return r.table }

func (r *baseRepositoryImpl[M, R, ID]) ID(model *M) (ID, bool) {
	if model == nil {
		var zero ID
		return zero, false
	}
	return r.mapper.ID(model)
}

func (r *baseRepositoryImpl[M, R, ID]) conn(ctx context.Context) bun.IDB {
	return database.IDB(ctx, r.db)
}

func (r *baseRepositoryImpl[M, R, ID]) NewSelect(ctx context.Context) *bun.SelectQuery {
	return r.conn(ctx).NewSelect()
}

func (r *baseRepositoryImpl[M, R, ID]) fail(op string, err error) error {
	return errs.NewPersistenceError(op, r.table.Name(), database.ClassifySQLError(err).String(), err)
}

func (r *baseRepositoryImpl[M, R, ID]) toModels(rows []*R) []*M {
	out := make([]*M, len(rows))
	for i, row := range rows {
		out[i] = r.mapper.ToModel(row)
	}
	return out
}

func (r *baseRepositoryImpl[M, R, ID]) Create(ctx context.Context, model *M) (*M, error) {
	if model == nil {
		return nil, errs.NewInvalidArgumentError("model", "must not be nil")
	}
	row := r.mapper.InsertRow(model)
	if _, err := r.conn(ctx).NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, r.fail("create", err)
	}
	created := *model
	r.mapper.SetID(&created, r.mapper.RowID(row))
	return &created, nil
}

func (r *baseRepositoryImpl[M, R, ID]) Find(ctx context.Context, id ID) (*M, error) {
	row := new(R)
	err := r.conn(ctx).NewSelect().
		Model(row).
		Where("? = ?", bun.Ident(r.table.PK()), id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError(r.table.Name(), id)
	}
	if err != nil {
		return nil, r.fail("find", err)
	}
	return r.mapper.ToModel(row), nil
}

func (r *baseRepositoryImpl[M, R, ID]) Update(ctx context.Context, model *M) (int64, error) {
	if model == nil {
		return 0, errs.NewInvalidArgumentError("model", "must not be nil")
	}
	id, ok := r.mapper.ID(model)
	if !ok {
		return 0, errs.NewInvalidArgumentError("id", "must be set before update")
	}
	q := r.conn(ctx).NewUpdate().
		Model(r.mapper.UpdateRow(model)).
		Where("? = ?", bun.Ident(r.table.PK()), id)
	if cols := r.table.UpdateColumns(); len(cols) > 0 {
		q = q.Column(cols...)
	} else {
		q = q.ExcludeColumn(r.table.PK())
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, r.fail("update", err)
	}
	return rowsAffected(res)
}

func (r *baseRepositoryImpl[M, R, ID]) Delete(ctx context.Context, id ID) (int64, error) {
	res, err := r.conn(ctx).NewDelete().
		Model((*R)(nil)).
		Where("? = ?", bun.Ident(r.table.PK()), id).
		Exec(ctx)
	if err != nil {
		return 0, r.fail("delete", err)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errs.NewPersistenceError("rows_affected", "", database.ClassifySQLError(err).String(), err)
	}
	return n, nil
}

func (r *baseRepositoryImpl[M, R, ID]) FindAll(ctx context.Context, sorters ...types.Sorter) ([]*M, error) {
	return r.List(ctx, nil, sorters...)
}

func (r *baseRepositoryImpl[M, R, ID]) FindAllBy(ctx context.Context, column string, value any, sorters ...types.Sorter) ([]*M, error) {
	if column == "" {
		return nil, errs.NewInvalidArgumentError("column", "must not be empty")
	}
	return r.List(ctx, types.NewQueryFilter("? = ?", bun.Ident(column), value), sorters...)
}

func (r *baseRepositoryImpl[M, R, ID]) List(ctx context.Context, filter *types.QueryFilter, sorters ...types.Sorter) ([]*M, error) {
	var rows []*R
	query := r.conn(ctx).NewSelect().Model(&rows)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := ApplySort(query, r.table, sorters).Scan(ctx); err != nil {
		return nil, r.fail("list", err)
	}
	return r.toModels(rows), nil
}

func (r *baseRepositoryImpl[M, R, ID]) Page(ctx context.Context, page types.Page, filter *types.QueryFilter, sorters ...types.Sorter) (*types.PagedResult[M], error) {
	page = page.Normalize()
	var rows []*R
	query := r.conn(ctx).NewSelect().Model(&rows)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	total, err := query.Count(ctx)
	if err != nil {
		return nil, r.fail("count", err)
	}
	if total == 0 {
		return types.NewPagedResult[M](nil, 0, page), nil
	}
	err = ApplySort(query, r.table, sorters).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Scan(ctx)
	if err != nil {
		return nil, r.fail("page", err)
	}
	return types.NewPagedResult(r.toModels(rows), total, page), nil
}

// Upsert inserts the model or, on a conflict over conflictColumns (the
// primary key by default), rewrites the table's update columns.
func (r *baseRepositoryImpl[M, R, ID]) Upsert(ctx context.Context, model *M, conflictColumns ...string) (int64, error) {
	if model == nil {
		return 0, errs.NewInvalidArgumentError("model", "must not be nil")
	}
	fields := r.table.UpdateColumns()
	if len(fields) == 0 {
		return 0, errs.NewInvalidArgumentError("columns", fmt.Sprintf("%s has no update columns", r.table.Name()))
	}
	if len(conflictColumns) == 0 {
		conflictColumns = []string{r.table.PK()}
	}

	insertQuery := r.conn(ctx).NewInsert().Model(r.mapper.InsertRow(model))
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		var set []string
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(field), bun.Ident(field)))
		}
		insertQuery = insertQuery.
			On("CONFLICT (" + strings.Join(conflictColumns, ",") + ") DO UPDATE").
			Set(strings.Join(set, ", "))
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		var set []string
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(field), bun.Ident(field)))
		}
		insertQuery = insertQuery.On("DUPLICATE KEY UPDATE " + strings.Join(set, ", "))
	default:
		return 0, errs.NewNotImplementedError(r.table.Name() + ".Upsert on " + r.db.Dialect().Name().String())
	}

	res, err := insertQuery.Exec(ctx)
	if err != nil {
		return 0, r.fail("upsert", err)
	}
	return rowsAffected(res)
}
