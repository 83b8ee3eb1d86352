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
	"testing"

	"github.com/google/go-cmp/cmp"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/errs"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type note struct {
	ID    *int64
	Title string
	Rank  int
	Owner string
}

type noteRow struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull,unique"`
	Rank  int    `bun:"rank,notnull"`
	Owner string `bun:"owner,notnull"`
}

type noteMapper struct{}

func (noteMapper) InsertRow(m *note) *noteRow {
	return &noteRow{Title: m.Title, Rank: m.Rank, Owner: m.Owner}
}

func (noteMapper) UpdateRow(m *note) *noteRow {
	row := noteMapper{}.InsertRow(m)
	if m.ID != nil {
		row.ID = *m.ID
	}
	return row
}

func (noteMapper) ToModel(r *noteRow) *note {
	id := r.ID
	return &note{ID: &id, Title: r.Title, Rank: r.Rank, Owner: r.Owner}
}

func (noteMapper) ID(m *note) (int64, bool) {
	if m.ID == nil {
		return 0, false
	}
	return *m.ID, true
}

func (noteMapper) SetID(m *note, id int64) { m.ID = &id }

func (noteMapper) RowID(r *noteRow) int64 { return r.ID }

var noteTable = NewTable("notes", "id",
	WithSortColumns("title", "rank"),
	WithSortable("ownerThenTitle", Expr("owner || ':' || title")),
	WithUpdateColumns("title", "rank"),
)

func newNoteRepo(t *testing.T) (Repository[note, int64], *database.TxManager) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.CreateTables(context.Background(), db, (*noteRow)(nil)))

	l, _ := logtest.NewNullLogger()
	return NewRepository[note, noteRow, int64](db, noteTable, noteMapper{}),
		database.NewTxManager(db, database.WithTxLogger(database.NewLogger(l)))
}

func titles(ns []*note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func TestCreateThenFind(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()

	in := &note{Title: "alpha", Rank: 3, Owner: "o1"}
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Nil(t, in.ID, "input model must not be mutated")

	found, err := repo.Find(ctx, *created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, found); diff != "" {
		t.Errorf("found differs from created (-want +got):\n%s", diff)
	}
}

func TestFindMissing(t *testing.T) {
	repo, _ := newNoteRepo(t)
	_, err := repo.Find(context.Background(), 404)
	assert.True(t, errs.IsNotFound(err))
	var nf *errs.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "notes", nf.Table)
}

func TestUpdate(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, &note{Title: "alpha", Rank: 1, Owner: "o1"})
	require.NoError(t, err)

	created.Rank = 9
	created.Owner = "ignored"
	n, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.Find(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, found.Rank)
	assert.Equal(t, "o1", found.Owner, "owner is not an update column")

	missing := int64(777)
	n, err = repo.Update(ctx, &note{ID: &missing, Title: "ghost"})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.Update(ctx, &note{Title: "no id"})
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestDeleteTwice(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, &note{Title: "alpha", Owner: "o1"})
	require.NoError(t, err)

	n, err := repo.Delete(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, *created.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.Find(ctx, *created.ID)
	assert.True(t, errs.IsNotFound(err))
}

func seedNotes(t *testing.T, repo Repository[note, int64]) {
	t.Helper()
	for _, n := range []*note{
		{Title: "charlie", Rank: 2, Owner: "o2"},
		{Title: "alpha", Rank: 3, Owner: "o1"},
		{Title: "bravo", Rank: 1, Owner: "o1"},
	} {
		_, err := repo.Create(context.Background(), n)
		require.NoError(t, err)
	}
}

func TestFindAllSorting(t *testing.T) {
	repo, _ := newNoteRepo(t)
	seedNotes(t, repo)
	ctx := context.Background()

	all, err := repo.FindAll(ctx, types.NewSorter("title", "asc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, titles(all))

	all, err = repo.FindAll(ctx, types.NewSorter("rank", "DESC"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "charlie", "bravo"}, titles(all))

	all, err = repo.FindAll(ctx, types.NewSorter("ownerThenTitle", "desc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "bravo", "alpha"}, titles(all))

	unsorted, err := repo.FindAll(ctx)
	require.NoError(t, err)
	ignored, err := repo.FindAll(ctx, types.NewSorter("nonexistentField", "desc"))
	require.NoError(t, err)
	assert.Equal(t, titles(unsorted), titles(ignored))

	mixed, err := repo.FindAll(ctx, types.NewSorter("bogus", "asc"), types.NewSorter("title", "desc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "bravo", "alpha"}, titles(mixed))
}

func TestFindAllBy(t *testing.T) {
	repo, _ := newNoteRepo(t)
	seedNotes(t, repo)

	owned, err := repo.FindAllBy(context.Background(), "owner", "o1", types.NewSorter("title", "asc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo"}, titles(owned))

	_, err = repo.FindAllBy(context.Background(), "", "o1")
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestPage(t *testing.T) {
	repo, _ := newNoteRepo(t)
	seedNotes(t, repo)

	res, err := repo.Page(context.Background(), types.Page{Page: 2, PageSize: 2}, nil, types.NewSorter("title", "asc"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, []string{"charlie"}, titles(res.Items))

	res, err = repo.Page(context.Background(), types.Page{}, types.NewQueryFilter("owner = ?", "nobody"))
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.CurrentPage)
}

func TestConstraintViolationRollsBackScope(t *testing.T) {
	repo, tm := newNoteRepo(t)
	ctx := context.Background()

	err := tm.Run(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, &note{Title: "dup", Owner: "o1"}); err != nil {
			return err
		}
		_, err := repo.Create(ctx, &note{Title: "dup", Owner: "o2"})
		return err
	})
	require.Error(t, err)
	assert.True(t, errs.IsPersistence(err))
	var pe *errs.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "create", pe.Op)
	assert.Equal(t, "notes", pe.Table)
	assert.Equal(t, database.DuplicateKeyErr.String(), pe.Kind)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpsert(t *testing.T) {
	repo, _ := newNoteRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, &note{Title: "alpha", Rank: 1, Owner: "o1"})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, &note{Title: "alpha", Rank: 5, Owner: "o1"}, "title")
	require.NoError(t, err)
	found, err := repo.Find(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Rank)

	_, err = repo.Upsert(ctx, &note{Title: "beta", Rank: 2, Owner: "o3"}, "title")
	require.NoError(t, err)
	all, err := repo.FindAll(ctx, types.NewSorter("title", "asc"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, titles(all))
}
