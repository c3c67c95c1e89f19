package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQL is a Store backed by a relational database through sqlx, for
// self-hosted deployments. Supported drivers: postgres, sqlite3.
type SQL struct {
	db *sqlx.DB
}

// ConnectSQL opens a database connection and bootstraps the schema.
func ConnectSQL(driver, dsn string) (*SQL, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	s := &SQL{db: db}
	if err := s.initializeSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQL) Close() error {
	return s.db.Close()
}

// initializeSchema creates necessary tables if they don't exist
func (s *SQL) initializeSchema() error {
	statements := []struct {
		table string
		ddl   string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT,
				telegram_chat_id BIGINT DEFAULT 0,
				preferences TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"progress", `
			CREATE TABLE IF NOT EXISTS progress (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				consecutive_login_days INTEGER DEFAULT 0,
				last_login_date TIMESTAMP,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"flashcards", `
			CREATE TABLE IF NOT EXISTS flashcards (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				word TEXT NOT NULL,
				translation TEXT,
				repetitions INTEGER DEFAULT 0,
				interval INTEGER DEFAULT 0,
				ease_factor REAL DEFAULT 2.5,
				next_review TIMESTAMP,
				last_review TIMESTAMP,
				last_quality INTEGER DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"groups", `
			CREATE TABLE IF NOT EXISTS groups (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				members TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"group_challenges", `
			CREATE TABLE IF NOT EXISTS group_challenges (
				id TEXT PRIMARY KEY,
				group_id TEXT NOT NULL,
				title TEXT NOT NULL,
				start_date TIMESTAMP,
				is_active BOOLEAN DEFAULT TRUE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"notifications", `
			CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				notification_type TEXT NOT NULL,
				title TEXT,
				message TEXT,
				icon TEXT,
				action_target TEXT,
				is_read BOOLEAN DEFAULT FALSE,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.table, err)
		}
	}
	return nil
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// List returns records of a table, honoring sort and pagination.
func (s *SQL) List(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	return s.Filter(ctx, table, nil, opts)
}

// Filter returns the records of a table matching all conditions.
func (s *SQL) Filter(ctx context.Context, table string, conds []Condition, opts ListOptions) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	var sb strings.Builder
	var args []any
	fmt.Fprintf(&sb, "SELECT * FROM %s", table)

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		for i, c := range conds {
			if err := checkIdent(c.Field); err != nil {
				return nil, err
			}
			if i > 0 {
				sb.WriteString(" AND ")
			}
			switch c.Op {
			case OpEq:
				fmt.Fprintf(&sb, "%s = ?", c.Field)
				args = append(args, sqlValue(c.Value))
			case OpIn:
				values, ok := c.Value.([]any)
				if !ok || len(values) == 0 {
					return nil, fmt.Errorf("in-condition on %q requires a non-empty slice value", c.Field)
				}
				placeholders := make([]string, len(values))
				for j, v := range values {
					placeholders[j] = "?"
					args = append(args, sqlValue(v))
				}
				fmt.Fprintf(&sb, "%s IN (%s)", c.Field, strings.Join(placeholders, ", "))
			default:
				return nil, fmt.Errorf("unsupported filter operator %q", c.Op)
			}
		}
	}

	if opts.OrderBy != "" {
		if err := checkIdent(opts.OrderBy); err != nil {
			return nil, err
		}
		direction := "ASC"
		if opts.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", opts.OrderBy, direction)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(sb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		raw := map[string]any{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		rec := make(Record, len(raw))
		for k, v := range raw {
			rec[k] = normalizeValue(v)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return out, nil
}

// Create inserts a record, assigning a UUID id and creation timestamp.
func (s *SQL) Create(ctx context.Context, table string, rec Record) (Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	stored := make(Record, len(rec)+2)
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = uuid.New().String()
	stored["created_at"] = time.Now().UTC().Format(time.RFC3339)

	columns := make([]string, 0, len(stored))
	for k := range stored {
		if err := checkIdent(k); err != nil {
			return nil, err
		}
		columns = append(columns, k)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		args[i] = sqlValue(stored[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return stored, nil
}

// Update applies a partial record to the row with the given id.
func (s *SQL) Update(ctx context.Context, table string, id string, partial Record) (Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(partial))
	for k := range partial {
		if err := checkIdent(k); err != nil {
			return nil, err
		}
		columns = append(columns, k)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns)+1)
	var args []any
	for _, col := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = ?", col))
		args = append(args, sqlValue(partial[col]))
	}
	assignments = append(assignments, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(assignments, ", "))
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", table, id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, ErrNotFound
	}

	recs, err := s.Filter(ctx, table, []Condition{Eq("id", id)}, ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// Delete removes the row with the given id.
func (s *SQL) Delete(ctx context.Context, table string, id string) error {
	if err := checkIdent(table); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// sqlValue serializes non-scalar values (member lists, preference
// objects) as JSON text columns.
func sqlValue(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, float64, time.Time:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// normalizeValue maps driver types back into record values: byte slices
// become strings, and JSON text columns become structured values again.
func normalizeValue(v any) any {
	switch tv := v.(type) {
	case []byte:
		return normalizeText(string(tv))
	case string:
		return normalizeText(tv)
	case time.Time:
		return tv.Format(time.RFC3339)
	default:
		return v
	}
}

func normalizeText(s string) any {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var structured any
		if err := json.Unmarshal([]byte(trimmed), &structured); err == nil {
			return structured
		}
	}
	return s
}
