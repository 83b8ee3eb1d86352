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

	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
)

// Mapper converts between a domain model M and its persisted row R.
// InsertRow and UpdateRow are the column projections used for writes;
// ToModel is the inverse used for reads.
type Mapper[M any, R any, ID comparable] interface {
	InsertRow(model *M) *R
	UpdateRow(model *M) *R
	ToModel(row *R) *M
	// ID reports the model identifier and whether it is set.
	ID(model *M) (ID, bool)
	SetID(model *M, id ID)
	RowID(row *R) ID
}

// CrudRepository defines basic CRUD operations for a generic model type.
// Every call runs on the transaction carried by ctx, if any.
type CrudRepository[M any, ID comparable] interface {
	// Create inserts the model and returns a copy carrying the generated id.
	Create(ctx context.Context, model *M) (*M, error)

	// Find returns errs.NotFoundError when no row has the id.
	Find(ctx context.Context, id ID) (*M, error)

	// Update writes the update projection and returns the rows matched.
	Update(ctx context.Context, model *M) (int64, error)

	// Delete returns the rows removed, 0 or 1.
	Delete(ctx context.Context, id ID) (int64, error)

	Upsert(ctx context.Context, model *M, conflictColumns ...string) (int64, error)
}

// ListRepository defines unpaged listing operations with dynamic sort.
type ListRepository[M any] interface {
	FindAll(ctx context.Context, sorters ...types.Sorter) ([]*M, error)

	FindAllBy(ctx context.Context, column string, value any, sorters ...types.Sorter) ([]*M, error)

	List(ctx context.Context, filter *types.QueryFilter, sorters ...types.Sorter) ([]*M, error)
}

// PageQueryRepository defines pagination functionality for listing models.
type PageQueryRepository[M any] interface {
	Page(ctx context.Context, page types.Page, filter *types.QueryFilter, sorters ...types.Sorter) (*types.PagedResult[M], error)
}

// Repository combines CRUD, listing and pagination for one table and
// exposes a select builder bound to the current executor.
type Repository[M any, ID comparable] interface {
	CrudRepository[M, ID]
	ListRepository[M]
	PageQueryRepository[M]
	Table() *Table
	// ID reports the identifier of model, false when it is unset.
	ID(model *M) (ID, bool)
	NewSelect(ctx context.Context) *bun.SelectQuery
}
