package query

import (
	"fmt"
	"strings"
)

// Fields maps public field names to SQL column expressions.
type Fields map[string]string

// Column resolves a field name.
func (f Fields) Column(field string) (string, bool) {
	col, ok := f[field]
	return col, ok
}

// Dialect renders the parts of a WHERE clause that differ between databases.
type Dialect interface {
	Placeholder(n int) string
	Contains(column, placeholder string) string
	EqualFold(column, placeholder string) string
}

// SQLiteFold names the scalar function that lower-cases with Unicode rules.
// The built-in lower() of SQLite folds ASCII only; the function must be
// registered with the driver before the SQLite dialect is used.
const SQLiteFold = "helpdesk_fold"

type postgresDialect struct{}

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) Contains(column, placeholder string) string {
	return fmt.Sprintf("strpos(lower(%s), lower(%s)) > 0", column, placeholder)
}

func (postgresDialect) EqualFold(column, placeholder string) string {
	return fmt.Sprintf("lower(%s) = lower(%s)", column, placeholder)
}

type sqliteDialect struct{}

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) Contains(column, placeholder string) string {
	return fmt.Sprintf("instr(%[1]s(%[2]s), %[1]s(%[3]s)) > 0", SQLiteFold, column, placeholder)
}

func (sqliteDialect) EqualFold(column, placeholder string) string {
	return fmt.Sprintf("%[1]s(%[2]s) = %[1]s(%[3]s)", SQLiteFold, column, placeholder)
}

var (
	// Postgres renders numbered placeholders.
	Postgres Dialect = postgresDialect{}
	// SQLite renders positional placeholders.
	SQLite Dialect = sqliteDialect{}
)

// Where renders criteria as an ANDed clause. Placeholders are numbered after
// argOffset existing arguments. No criteria renders "1=1".
func Where(d Dialect, fields Fields, criteria []Criterion, argOffset int) (string, []any, error) {
	clauses := make([]string, 0, len(criteria))
	args := make([]any, 0, len(criteria))
	for _, c := range criteria {
		col, ok := fields.Column(c.Field)
		if !ok {
			return "", nil, fmt.Errorf("query: unknown filter field %q", c.Field)
		}
		args = append(args, c.Value)
		ph := d.Placeholder(argOffset + len(args))
		switch c.Op {
		case OpContains:
			clauses = append(clauses, d.Contains(col, ph))
		case OpEqualFold:
			clauses = append(clauses, d.EqualFold(col, ph))
		case OpEqual:
			clauses = append(clauses, fmt.Sprintf("%s = %s", col, ph))
		default:
			return "", nil, fmt.Errorf("query: unsupported operator %q", c.Op)
		}
	}
	if len(clauses) == 0 {
		return "1=1", args, nil
	}
	return strings.Join(clauses, " AND "), args, nil
}
