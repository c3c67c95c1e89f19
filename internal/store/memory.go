package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used for tests and fixture injection.
// Records are deep-copied on the way in and out so callers cannot
// mutate stored state behind the store's back.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Record

	// FailCreate, when set, is consulted before every Create; returning a
	// non-nil error simulates a transient write failure for that record.
	FailCreate func(table string, rec Record) error
	// FailList, when set, is consulted before every List and Filter.
	FailList func(table string) error

	// Now supplies server timestamps; defaults to time.Now.
	Now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]Record)}
}

// Seed inserts records into a table without assigning ids or timestamps,
// for building test fixtures.
func (m *Memory) Seed(table string, recs ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.tables[table] = append(m.tables[table], copyRecord(rec))
	}
}

// Len returns the number of records in a table.
func (m *Memory) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// List returns all records of a table, honoring sort and pagination.
func (m *Memory) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	return m.Filter(ctx, table, nil, opts)
}

// Filter returns the records of a table matching all conditions.
func (m *Memory) Filter(ctx context.Context, table string, conds []Condition, opts ListOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailList != nil {
		if err := m.FailList(table); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.tables[table] {
		if matches(rec, conds) {
			out = append(out, copyRecord(rec))
		}
	}

	if opts.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValues(out[i][opts.OrderBy], out[j][opts.OrderBy])
			if opts.Descending {
				return !less
			}
			return less
		})
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Create stores a record, assigning a UUID id and creation timestamp.
func (m *Memory) Create(ctx context.Context, table string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailCreate != nil {
		if err := m.FailCreate(table, rec); err != nil {
			return nil, err
		}
	}

	stored := copyRecord(rec)
	stored["id"] = uuid.New().String()
	stored["created_at"] = m.now().Format(time.RFC3339)

	m.mu.Lock()
	m.tables[table] = append(m.tables[table], stored)
	m.mu.Unlock()

	return copyRecord(stored), nil
}

// Update merges a partial record into the record with the given id.
func (m *Memory) Update(ctx context.Context, table string, id string, partial Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, rec := range m.tables[table] {
		if stringValue(rec["id"]) == id {
			merged := copyRecord(rec)
			for k, v := range partial {
				merged[k] = v
			}
			merged["updated_at"] = m.now().Format(time.RFC3339)
			m.tables[table][i] = merged
			return copyRecord(merged), nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the record with the given id.
func (m *Memory) Delete(ctx context.Context, table string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.tables[table]
	for i, rec := range recs {
		if stringValue(rec["id"]) == id {
			m.tables[table] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func matches(rec Record, conds []Condition) bool {
	for _, c := range conds {
		switch c.Op {
		case OpEq:
			if stringValue(rec[c.Field]) != stringValue(c.Value) {
				return false
			}
		case OpIn:
			values, ok := c.Value.([]any)
			if !ok {
				return false
			}
			found := false
			for _, v := range values {
				if stringValue(rec[c.Field]) == stringValue(v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func lessValues(a, b any) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	}
	return stringValue(a) < stringValue(b)
}
