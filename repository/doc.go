// Package repository provides a generic repository built on Bun: CRUD over a
// row mapper, dynamic sort through a table descriptor, pagination and upsert.
package repository
