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
	"sort"

	"github.com/tomoncle/storekeeper/database"
	"github.com/tomoncle/storekeeper/types"
	"github.com/uptrace/bun"
)

// SortExpr is an ORDER BY expression in bun placeholder form.
type SortExpr struct {
	Query string
	Args  []interface{}
}

// Column sorts by a plain column identifier.
func Column(name string) SortExpr {
	return SortExpr{Query: "?", Args: []interface{}{bun.Ident(name)}}
}

// Expr sorts by a SQL expression. The query must be a constant; values go in args.
func Expr(query string, args ...interface{}) SortExpr {
	return SortExpr{Query: query, Args: args}
}

// SortResolver maps an API sort field to an expression. It never fails:
// unknown fields report false.
type SortResolver interface {
	Resolve(field string) (SortExpr, bool)
}

// Table describes one persisted entity: its name, primary key, sortable
// fields and update columns. It is immutable once built.
type Table struct {
	name      string
	pk        string
	sortable  map[string]SortExpr
	updatable []string
}

type TableOption func(*Table)

// WithSortable registers field under the given expression.
func WithSortable(field string, expr SortExpr) TableOption {
	return func(t *Table) { t.sortable[field] = expr }
}

// WithSortColumns registers fields whose API name is the column name.
func WithSortColumns(columns ...string) TableOption {
	return func(t *Table) {
		for _, c := range columns {
			t.sortable[c] = Column(c)
		}
	}
}

func WithUpdateColumns(columns ...string) TableOption {
	return func(t *Table) { t.updatable = append(t.updatable, columns...) }
}

func NewTable(name, pk string, opts ...TableOption) *Table {
	t := &Table{name: name, pk: pk, sortable: map[string]SortExpr{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) Name() string { return t.name }

func (t *Table) PK() string { return t.pk }

func (t *Table) UpdateColumns() []string {
	out := make([]string, len(t.updatable))
	copy(out, t.updatable)
	return out
}

// SortFields returns the registered field names in lexical order.
func (t *Table) SortFields() []string {
	out := make([]string, 0, len(t.sortable))
	for f := range t.sortable {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Resolve matches field exactly, case included.
func (t *Table) Resolve(field string) (SortExpr, bool) {
	expr, ok := t.sortable[field]
	return expr, ok
}

var _ SortResolver = (*Table)(nil)

// ApplySort appends one ORDER BY term per resolvable sorter, in order.
// Unresolvable sorters are skipped.
func ApplySort(q *bun.SelectQuery, resolver SortResolver, sorters []types.Sorter) *bun.SelectQuery {
	for _, s := range sorters {
		expr, ok := resolver.Resolve(s.Field)
		if !ok {
			database.GetLogger().Debug("ignoring unknown sort field", "field", s.Field)
			continue
		}
		q = q.OrderExpr(expr.Query+" "+s.Direction.String(), expr.Args...)
	}
	return q
}
