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

package errs

import (
	"errors"
	"fmt"
)

// Error kinds shared by repositories, transaction scopes and the ingest pipeline.
var (
	// ErrInvalidArgument is returned when a required argument, usually an identifier, is unset.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when no row matches an identifier.
	ErrNotFound = errors.New("entity not found")

	// ErrPersistence is returned when the underlying store rejects a statement.
	ErrPersistence = errors.New("persistence failure")

	// ErrPartialWrite is returned when a batch was accepted but some items were not stored.
	ErrPartialWrite = errors.New("partial write failure")

	// ErrNotImplemented is returned by repository specialisations that leave an operation unfinished.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNestedTransaction is returned when a scope is opened inside another one
	// and the manager is configured to reject nesting.
	ErrNestedTransaction = errors.New("nested transaction not allowed")
)

// InvalidArgumentError names the argument that was rejected.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NotFoundError represents a lookup by identifier that matched nothing.
type NotFoundError struct {
	Table string
	ID    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError wraps a store failure with the operation, table and the
// classified SQL kind (duplicate key, not null violation ...).
type PersistenceError struct {
	Op    string
	Table string
	Kind  string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s on %s failed (%s): %v", e.Op, e.Table, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialWriteError reports the items a batch store did not durably accept.
type PartialWriteError struct {
	Count int
	Items []any
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%d item(s) were not processed by the store", e.Count)
}

func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

// NotImplementedError names the operation a specialisation does not provide.
type NotImplementedError struct {
	Operation string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not implemented", e.Operation)
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// ChunkError is a fatal failure of a single batch request. Every item of the
// chunk, listed in Items, is considered not written.
type ChunkError struct {
	Index int
	Size  int
	Items []any
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d items) failed: %v", e.Index, e.Size, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

func NewInvalidArgumentError(field, message string) error {
	return &InvalidArgumentError{Field: field, Message: message}
}

func NewNotFoundError(table string, id any) error {
	return &NotFoundError{Table: table, ID: id}
}

func NewPersistenceError(op, table, kind string, err error) error {
	return &PersistenceError{Op: op, Table: table, Kind: kind, Err: err}
}

func NewPartialWriteError(items []any) error {
	return &PartialWriteError{Count: len(items), Items: items}
}

func NewNotImplementedError(operation string) error {
	return &NotImplementedError{Operation: operation}
}

func NewChunkError(index int, items []any, err error) error {
	return &ChunkError{Index: index, Size: len(items), Items: items, Err: err}
}

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }

func IsPartialWrite(err error) bool { return errors.Is(err, ErrPartialWrite) }

func IsNotImplemented(err error) bool { return errors.Is(err, ErrNotImplemented) }
