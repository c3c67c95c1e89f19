// Package store exposes the generic record-collection interface the
// application persists through: table-scoped list/filter/create/update/delete
// with server-assigned identity. Backends exist for Supabase (PostgREST),
// plain SQL databases and an in-memory fixture store.
package store

import (
	"context"
	"errors"
)

// Record is a single row of a collection, keyed by column name.
type Record map[string]any

// Operator restricts filter conditions to what every backend supports.
type Operator string

const (
	// OpEq matches records whose field equals the condition value.
	OpEq Operator = "eq"
	// OpIn matches records whose field is a member of the condition value,
	// which must be a slice.
	OpIn Operator = "in"
)

// Condition is a single field predicate.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// In builds a set-membership condition.
func In(field string, values ...any) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// ListOptions controls ordering and pagination of reads.
type ListOptions struct {
	OrderBy    string
	Descending bool
	Limit      int // 0 means no limit
	Offset     int
}

// ErrNotFound is returned by Update and Delete for an unknown record id.
var ErrNotFound = errors.New("store: record not found")

// Store is the record-collection interface consumed by the core.
// Create assigns the record id and creation timestamp on the server side.
type Store interface {
	List(ctx context.Context, table string, opts ListOptions) ([]Record, error)
	Filter(ctx context.Context, table string, conds []Condition, opts ListOptions) ([]Record, error)
	Create(ctx context.Context, table string, rec Record) (Record, error)
	Update(ctx context.Context, table string, id string, partial Record) (Record, error)
	Delete(ctx context.Context, table string, id string) error
}
