package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidIdentifier is returned before any I/O when a table or column name
// would not be safe to interpolate into a statement.
var ErrInvalidIdentifier = stderrors.New("invalid SQL identifier")

// ValidIdentifier reports whether name may be used as a table or column name
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Table describes a table by its ordered columns. The first column is the
// surrogate primary key; INSERT and UPDATE statements are generated from the
// remaining columns in declared order, as named parameters matching db tags.
type Table struct {
	name    string
	columns []string
}

// NewTable validates every identifier and returns the table metadata
func NewTable(name string, columns ...string) (Table, error) {
	if !ValidIdentifier(name) {
		return Table{}, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, name)
	}
	if len(columns) < 2 {
		return Table{}, fmt.Errorf("table %s needs a key and at least one column", name)
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if !ValidIdentifier(col) {
			return Table{}, fmt.Errorf("%w: column %q of %s", ErrInvalidIdentifier, col, name)
		}
		if seen[col] {
			return Table{}, fmt.Errorf("table %s declares column %s twice", name, col)
		}
		seen[col] = true
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{name: name, columns: cols}, nil
}

// MustTable is NewTable for package-level registries; it panics on invalid metadata
func MustTable(name string, columns ...string) Table {
	t, err := NewTable(name, columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name
func (t Table) Name() string { return t.name }

// Key returns the primary key column
func (t Table) Key() string { return t.columns[0] }

// Columns returns a copy of the declared columns, key first
func (t Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Has reports whether column is declared on the table
func (t Table) Has(column string) bool {
	for _, col := range t.columns {
		if col == column {
			return true
		}
	}
	return false
}

func (t Table) valueColumns() []string {
	return t.columns[1:]
}

// InsertSQL builds a named INSERT over every non-key column, returning the key
func (t Table) InsertSQL() string {
	cols := t.valueColumns()
	params := make([]string, len(cols))
	for i, col := range cols {
		params[i] = ":" + col
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name, strings.Join(cols, ", "), strings.Join(params, ", "), t.Key())
}

// UpdateSQL builds a named UPDATE of every non-key column, keyed on the primary key
func (t Table) UpdateSQL() string {
	cols := t.valueColumns()
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + " = :" + col
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s",
		t.name, strings.Join(sets, ", "), t.Key(), t.Key())
}

// SelectSQL builds a SELECT of every declared column
func (t Table) SelectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

func (t Table) whereSQL(column string) (string, error) {
	if !ValidIdentifier(column) {
		return "", fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column)
	}
	if !t.Has(column) {
		return "", fmt.Errorf("%w: %s has no column %q", ErrInvalidIdentifier, t.name, column)
	}
	return fmt.Sprintf("%s WHERE %s = $1", t.SelectSQL(), column), nil
}

// InsertRecord inserts record (a struct with db tags or a map) and returns the generated key
func InsertRecord(ctx context.Context, q Querier, t Table, record interface{}) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, q, t.InsertSQL(), record)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("insert into %s returned no key", t.name)
	}

	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, err
	}
	return id, rows.Err()
}

// UpdateRecord writes every non-key column of record and returns the affected row count
func UpdateRecord(ctx context.Context, q Querier, t Table, record interface{}) (int64, error) {
	result, err := sqlx.NamedExecContext(ctx, q, t.UpdateSQL(), record)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetByKey loads the single row whose column equals value into dest.
// It reports false without error when no row matches.
func GetByKey(ctx context.Context, q Querier, t Table, dest interface{}, column string, value interface{}) (bool, error) {
	query, err := t.whereSQL(column)
	if err != nil {
		return false, err
	}

	if err := q.GetContext(ctx, dest, query, value); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListBy loads every row whose column equals value into dest, ordered by key
func ListBy(ctx context.Context, q Querier, t Table, dest interface{}, column string, value interface{}) error {
	query, err := t.whereSQL(column)
	if err != nil {
		return err
	}
	return q.SelectContext(ctx, dest, query+" ORDER BY "+t.Key(), value)
}

// LoadColumns reads the live column order of a table from information_schema
func LoadColumns(ctx context.Context, q Querier, table string) ([]string, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}

	var cols []string
	err := q.SelectContext(ctx, &cols, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	return cols, err
}

// Verify compares the declared metadata with the live table: the key must be
// the first live column and every declared column must exist.
func (t Table) Verify(ctx context.Context, q Querier) error {
	live, err := LoadColumns(ctx, q, t.name)
	if err != nil {
		return fmt.Errorf("load columns of %s: %w", t.name, err)
	}
	if len(live) == 0 {
		return fmt.Errorf("table %s does not exist", t.name)
	}
	if live[0] != t.Key() {
		return fmt.Errorf("table %s: key is %s, declared %s", t.name, live[0], t.Key())
	}

	present := make(map[string]bool, len(live))
	for _, col := range live {
		present[col] = true
	}
	var missing []string
	for _, col := range t.columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s: missing columns %s", t.name, strings.Join(missing, ", "))
	}
	return nil
}
