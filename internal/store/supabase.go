package store

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// Supabase is a Store backed by the Supabase PostgREST API. Identity and
// creation timestamps are assigned server-side by the table defaults.
type Supabase struct {
	client *supabase.Client
}

// NewSupabase connects a Store to a Supabase project.
func NewSupabase(projectURL, apiKey string) (*Supabase, error) {
	client, err := supabase.NewClient(projectURL, apiKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &Supabase{client: client}, nil
}

// List returns records of a table, honoring sort and pagination.
func (s *Supabase) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	return s.Filter(ctx, table, nil, opts)
}

// Filter returns the records of a table matching all conditions.
func (s *Supabase) Filter(ctx context.Context, table string, conds []Condition, opts ListOptions) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := s.client.From(table).Select("*", "", false)
	for _, c := range conds {
		switch c.Op {
		case OpEq:
			builder = builder.Eq(c.Field, filterValue(c.Value))
		case OpIn:
			values, ok := c.Value.([]any)
			if !ok {
				return nil, fmt.Errorf("in-condition on %q requires a slice value", c.Field)
			}
			strs := make([]string, 0, len(values))
			for _, v := range values {
				strs = append(strs, filterValue(v))
			}
			builder = builder.In(c.Field, strs)
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
	}

	if opts.OrderBy != "" {
		builder = builder.Order(opts.OrderBy, &postgrest.OrderOpts{Ascending: !opts.Descending})
	}
	if opts.Offset > 0 {
		upper := opts.Offset + 999999
		if opts.Limit > 0 {
			upper = opts.Offset + opts.Limit - 1
		}
		builder = builder.Range(opts.Offset, upper, "")
	} else if opts.Limit > 0 {
		builder = builder.Limit(opts.Limit, "")
	}

	var recs []Record
	if _, err := builder.ExecuteTo(&recs); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return recs, nil
}

// Create inserts a record and returns the stored representation.
func (s *Supabase) Create(ctx context.Context, table string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []Record
	if _, err := s.client.From(table).Insert(rec, false, "", "representation", "").ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s returned no representation", table)
	}
	return rows[0], nil
}

// Update applies a partial record to the row with the given id.
func (s *Supabase) Update(ctx context.Context, table string, id string, partial Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []Record
	if _, err := s.client.From(table).Update(partial, "representation", "").Eq("id", id).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Delete removes the row with the given id.
func (s *Supabase) Delete(ctx context.Context, table string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, _, err := s.client.From(table).Delete("", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	return nil
}

func filterValue(v any) string {
	switch tv := v.(type) {
	case time.Time:
		return tv.Format(time.RFC3339)
	case string:
		return tv
	default:
		return fmt.Sprint(v)
	}
}
