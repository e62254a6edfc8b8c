package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Model fills columns and a single row from the exported, db-tagged fields
// of a struct. Fields tagged "-" or without a tag are skipped.
func (b *InsertBuilder) Model(model any) *InsertBuilder {
	cols, vals, err := taggedFields(model)
	if err != nil {
		b.err = fmt.Errorf("insert into %s: %w", b.table, err)
		return b
	}
	b.columns = cols
	b.rows = [][]any{vals}
	return b
}

func taggedFields(model any) ([]string, []any, error) {
	v := reflect.Indirect(reflect.ValueOf(model))
	if !v.IsValid() {
		return nil, nil, errors.New("model is nil")
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model is %s, not a struct", v.Kind())
	}

	var (
		cols []string
		vals []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || len(field.Index) > 1 {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.FieldByIndex(field.Index).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("model has no db columns")
	}
	return cols, vals, nil
}
