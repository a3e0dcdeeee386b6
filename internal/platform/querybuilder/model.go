package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// UpsertModel builds an INSERT for the db-tagged fields of model that
// overwrites every non-key column when conflictColumn already exists.
func UpsertModel(table string, model any, conflictColumn string) (string, []any, error) {
	cols, vals, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		if col == conflictColumn {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	if len(updates) == len(cols) {
		return "", nil, fmt.Errorf("conflict column %q is not a model column", conflictColumn)
	}

	suffix := "ON CONFLICT (" + conflictColumn + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT (" + conflictColumn + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", v.Kind())
	}

	var (
		cols []string
		vals []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || len(field.Index) != 1 {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, v.FieldByIndex(field.Index).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
