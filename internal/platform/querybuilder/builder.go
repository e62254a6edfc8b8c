// Package querybuilder renders the small set of Postgres statements the
// repositories issue. Values are always bound as $n parameters.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	errNoTable   = errors.New("table is required")
	errNoColumns = errors.New("columns are required")
)

// statement accumulates SQL text and its bound arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, p := range parts {
		s.sql.WriteString(p)
	}
}

// bind appends v as the next positional argument.
func (s *statement) bind(v any) {
	s.args = append(s.args, v)
	s.sql.WriteByte('$')
	s.sql.WriteString(strconv.Itoa(len(s.args)))
}

func (s *statement) list(items []string) {
	s.write(strings.Join(items, ", "))
}

func (s *statement) where(conds []Condition) {
	if len(conds) == 0 {
		return
	}
	s.write(" WHERE ")
	writeJoined(s, conds, " AND ")
}

func (s *statement) returning(cols []string) {
	if len(cols) == 0 {
		return
	}
	s.write(" RETURNING ")
	s.list(cols)
}

func (s *statement) result() (string, []any, error) {
	return s.sql.String(), s.args, nil
}

// Condition is one predicate of a WHERE clause.
type Condition interface {
	render(s *statement)
}

type conditionFunc func(s *statement)

func (f conditionFunc) render(s *statement) { f(s) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(s *statement) {
		s.write(column, " = ")
		s.bind(value)
	})
}

// In matches column against values. An empty list matches nothing.
func In(column string, values []any) Condition {
	return conditionFunc(func(s *statement) {
		if len(values) == 0 {
			s.write("FALSE")
			return
		}
		s.write(column, " IN (")
		for i, v := range values {
			if i > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	})
}

// IsTrue matches rows where a boolean column is set.
func IsTrue(column string) Condition {
	return conditionFunc(func(s *statement) {
		s.write(column)
	})
}

// Or groups conditions in parentheses joined by OR.
func Or(conds ...Condition) Condition {
	return conditionFunc(func(s *statement) {
		if len(conds) == 0 {
			s.write("FALSE")
			return
		}
		s.write("(")
		writeJoined(s, conds, " OR ")
		s.write(")")
	})
}

func writeJoined(s *statement, conds []Condition, sep string) {
	for i, c := range conds {
		if i > 0 {
			s.write(sep)
		}
		c.render(s)
	}
}

type SelectBuilder struct {
	columns   []string
	table     string
	conds     []Condition
	orderBy   []string
	limit     int
	forUpdate bool
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) OrderBy(exprs ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, exprs...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (b *SelectBuilder) ForUpdate() *SelectBuilder {
	b.forUpdate = true
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("select: %w", errNoTable)
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select: %w", errNoColumns)
	}

	var s statement
	s.write("SELECT ")
	s.list(b.columns)
	s.write(" FROM ", b.table)
	s.where(b.conds)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ")
		s.list(b.orderBy)
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	if b.forUpdate {
		s.write(" FOR UPDATE")
	}
	return s.result()
}

type InsertBuilder struct {
	table     string
	columns   []string
	rows      [][]any
	returning []string
	err       error
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = columns
	return b
}

// Values adds one row. Its length must match Columns.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = columns
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.err != nil:
		return "", nil, b.err
	case b.table == "":
		return "", nil, fmt.Errorf("insert: %w", errNoTable)
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert into %s: %w", b.table, errNoColumns)
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert into %s: no rows", b.table)
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (")
	s.list(b.columns)
	s.write(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert into %s: row %d has %d values for %d columns", b.table, i, len(row), len(b.columns))
		}
		if i > 0 {
			s.write(", ")
		}
		s.write("(")
		for j, v := range row {
			if j > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	}
	s.returning(b.returning)
	return s.result()
}

type assignment struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table     string
	sets      []assignment
	conds     []Condition
	returning []string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// Increment bumps an integer column by one in place.
func (b *UpdateBuilder) Increment(column string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: column + " + 1"})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = columns
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("update: %w", errNoTable)
	case len(b.sets) == 0:
		return "", nil, fmt.Errorf("update %s: nothing to set", b.table)
	}

	var s statement
	s.write("UPDATE ", b.table, " SET ")
	for i, a := range b.sets {
		if i > 0 {
			s.write(", ")
		}
		s.write(a.column, " = ")
		if a.raw != "" {
			s.write(a.raw)
			continue
		}
		s.bind(a.value)
	}
	s.where(b.conds)
	s.returning(b.returning)
	return s.result()
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// ToSQL refuses to render a DELETE without conditions.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	switch {
	case b.table == "":
		return "", nil, fmt.Errorf("delete: %w", errNoTable)
	case len(b.conds) == 0:
		return "", nil, fmt.Errorf("delete from %s: conditions are required", b.table)
	}

	var s statement
	s.write("DELETE FROM ", b.table)
	s.where(b.conds)
	return s.result()
}
