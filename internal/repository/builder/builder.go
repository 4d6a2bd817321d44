package builder

import (
	"fmt"
	"strings"
)

type statementKind int

const (
	kindSelect statementKind = iota + 1
	kindInsert
	kindUpdate
	kindDelete
)

// SQLBuilder helps construct SQL queries dynamically.
// Conditions use "?" markers which Build rewrites to $1, $2, ... in order.
type SQLBuilder struct {
	kind       statementKind
	table      string
	columns    []string
	values     []interface{}
	updateCols []string
	updateArgs []interface{}
	where      []string
	whereArgs  []interface{}
	orderBy    []string
	limit      int
	returning  []string
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.kind = kindSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.kind = kindInsert
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.kind = kindUpdate
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.kind = kindDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set specifies the columns and values for update.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.updateCols = append(b.updateCols, col)
	b.updateArgs = append(b.updateArgs, val)
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition to the query. Multiple conditions are joined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Returning adds a RETURNING clause to INSERT, UPDATE or DELETE statements.
func (b *SQLBuilder) Returning(cols ...string) *SQLBuilder {
	b.returning = cols
	return b
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of "?" markers doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	markers := strings.Count(strings.Join(b.where, " "), "?")
	if markers != len(b.whereArgs) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", markers, len(b.whereArgs))
	}
	if b.kind == kindInsert && len(b.columns) != len(b.values) {
		return "", nil, fmt.Errorf("column count (%d) does not match value count (%d)", len(b.columns), len(b.values))
	}
	sql, args := b.Build()
	return sql, args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	next := func() string {
		return fmt.Sprintf("$%d", len(args))
	}

	switch b.kind {
	case kindSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case kindInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i, v := range b.values {
			args = append(args, v)
			placeholders[i] = next()
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
	case kindUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.updateCols))
		for i, col := range b.updateCols {
			args = append(args, b.updateArgs[i])
			setClauses[i] = col + " = " + next()
		}
		sb.WriteString(strings.Join(setClauses, ", "))
	case kindDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 && b.kind != kindInsert {
		sb.WriteString(" WHERE ")
		argIndex := 0
		parts := strings.Split(strings.Join(b.where, " AND "), "?")
		for i, part := range parts {
			sb.WriteString(part)
			if i < len(parts)-1 {
				if argIndex < len(b.whereArgs) {
					args = append(args, b.whereArgs[argIndex])
				}
				argIndex++
				sb.WriteString(fmt.Sprintf("$%d", len(args)))
			}
		}
	}

	if b.kind == kindSelect {
		if len(b.orderBy) > 0 {
			sb.WriteString(" ORDER BY ")
			sb.WriteString(strings.Join(b.orderBy, ", "))
		}
		if b.limit > 0 {
			sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
		}
	}

	if len(b.returning) > 0 && b.kind != kindSelect {
		sb.WriteString(" RETURNING ")
		sb.WriteString(strings.Join(b.returning, ", "))
	}

	return sb.String(), args
}
