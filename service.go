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

	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/repository"
	"github.com/tomoncle/storekeeper/types"
)

// Service runs every call in its own transaction scope, joining the caller's
// scope when ctx already carries one.
type Service[M any, ID comparable] interface {
	// Get returns a single model by its identifier.
	Get(ctx context.Context, id ID) (*M, error)

	// All returns all models in the requested order.
	All(ctx context.Context, sorters ...types.Sorter) ([]*M, error)

	// List returns models that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter, sorters ...types.Sorter) ([]*M, error)

	// Page returns a paginated list of models.
	Page(ctx context.Context, page types.Page, filter *types.QueryFilter, sorters ...types.Sorter) (*types.PagedResult[M], error)

	// Save inserts a new model and returns it with its identifier.
	Save(ctx context.Context, model *M) (*M, error)

	// SaveOrUpdate upserts a model on the given conflict columns.
	SaveOrUpdate(ctx context.Context, model *M, conflictColumns ...string) error

	// Update modifies an existing model; errs.NotFoundError when no row matched.
	Update(ctx context.Context, model *M) error

	// Delete removes a model; errs.NotFoundError when nothing was removed.
	Delete(ctx context.Context, id ID) error

	Repository() repository.Repository[M, ID]
}

type baseServiceImpl[M any, ID comparable] struct {
	repo repository.Repository[M, ID]
	tx   *database.TxManager
}

// NewService returns a default Service over repo.
func NewService[M any, ID comparable](repo repository.Repository[M, ID], tx *database.TxManager) Service[M, ID] {
	return &baseServiceImpl[M, ID]{repo: repo, tx: tx}
}

func (s *baseServiceImpl[M, ID]) Repository() repository.Repository[M, ID] { return s.repo }

func (s *baseServiceImpl[M, ID]) Get(ctx context.Context, id ID) (*M, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) (*M, error) {
		return s.repo.Find(ctx, id)
	})
}

func (s *baseServiceImpl[M, ID]) All(ctx context.Context, sorters ...types.Sorter) ([]*M, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) ([]*M, error) {
		return s.repo.FindAll(ctx, sorters...)
	})
}

func (s *baseServiceImpl[M, ID]) List(ctx context.Context, filter *types.QueryFilter, sorters ...types.Sorter) ([]*M, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) ([]*M, error) {
		return s.repo.List(ctx, filter, sorters...)
	})
}

func (s *baseServiceImpl[M, ID]) Page(ctx context.Context, page types.Page, filter *types.QueryFilter, sorters ...types.Sorter) (*types.PagedResult[M], error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) (*types.PagedResult[M], error) {
		return s.repo.Page(ctx, page, filter, sorters...)
	})
}

func (s *baseServiceImpl[M, ID]) Save(ctx context.Context, model *M) (*M, error) {
	return database.InTx(ctx, s.tx, func(ctx context.Context) (*M, error) {
		return s.repo.Create(ctx, model)
	})
}

func (s *baseServiceImpl[M, ID]) SaveOrUpdate(ctx context.Context, model *M, conflictColumns ...string) error {
	return s.tx.Run(ctx, func(ctx context.Context) error {
		_, err := s.repo.Upsert(ctx, model, conflictColumns...)
		return err
	})
}

func (s *baseServiceImpl[M, ID]) Update(ctx context.Context, model *M) error {
	return s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.repo.Update(ctx, model)
		if err != nil {
			return err
		}
		if n == 0 {
			id, _ := s.repo.ID(model)
			return errs.NewNotFoundError(s.repo.Table().Name(), id)
		}
		return nil
	})
}

func (s *baseServiceImpl[M, ID]) Delete(ctx context.Context, id ID) error {
	return s.tx.Run(ctx, func(ctx context.Context) error {
		n, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.NewNotFoundError(s.repo.Table().Name(), id)
		}
		return nil
	})
}
