// Package model holds the persisted entities, their row mappings, table
// descriptors and specialised repositories.
package model
