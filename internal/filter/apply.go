package filter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Apply returns the items that satisfy every filter, in their original order.
// T must be a struct or a pointer to a struct. With no filters the input is
// returned unchanged. A filter naming an unknown property or carrying a value
// that does not convert to the property's type fails even when items is empty.
func Apply[T any](items []T, filters []Filter) ([]T, error) {
	preds, err := compile(reflect.TypeFor[T](), filters)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return items, nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		v := reflect.ValueOf(item)
		if !v.IsValid() {
			continue
		}
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				break
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			continue
		}

		if matchesAll(v, preds) {
			out = append(out, item)
		}
	}

	return out, nil
}

func matchesAll(v reflect.Value, preds []predicate) bool {
	for _, p := range preds {
		if !p.matches(v) {
			return false
		}
	}
	return true
}

// Where compiles filters into a SQL condition over the columns named by the
// struct's db tags. Placeholders start at $firstArg. With no filters it
// returns an empty clause. Fields without a db column are treated as unknown.
func Where[T any](filters []Filter, firstArg int) (string, []any, error) {
	preds, err := compile(reflect.TypeFor[T](), filters)
	if err != nil {
		return "", nil, err
	}
	if len(preds) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for i, p := range preds {
		if p.field.column == "" {
			return "", nil, &Error{Property: p.filter.Property, Value: p.filter.Value, Err: ErrUnknownProperty}
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", pgx.Identifier{p.field.column}.Sanitize(), firstArg+i))
		args = append(args, p.value.Interface())
	}

	return strings.Join(clauses, " AND "), args, nil
}
