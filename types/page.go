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

package types

import "strings"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Direction is the ordering of a single sort key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ParseDirection is case-insensitive; anything other than "desc" is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Desc
	}
	return Asc
}

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Sorter is one (field, direction) pair of a sort specification. Field is the
// client facing name, not a column.
type Sorter struct {
	Field     string
	Direction Direction
}

// NewSorter builds a sorter from raw request values.
func NewSorter(field, direction string) Sorter {
	return Sorter{Field: field, Direction: ParseDirection(direction)}
}

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// Page is a 1-based page request.
type Page struct {
	Page     int
	PageSize int
}

// Normalize clamps the request: page below 1 becomes 1, a missing size becomes
// DefaultPageSize and sizes above MaxPageSize are capped.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// PagedResult is a read-only projection of one page of entities.
type PagedResult[T any] struct {
	Items       []*T `json:"items"`
	TotalCount  int  `json:"totalCount"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
}

// NewPagedResult computes TotalPages from the total count and the page size.
func NewPagedResult[T any](items []*T, total int, page Page) *PagedResult[T] {
	page = page.Normalize()
	if items == nil {
		items = make([]*T, 0)
	}
	pages := 0
	if total > 0 {
		pages = (total + page.PageSize - 1) / page.PageSize
	}
	return &PagedResult[T]{
		Items:       items,
		TotalCount:  total,
		CurrentPage: page.Page,
		TotalPages:  pages,
	}
}
