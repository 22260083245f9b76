package filter

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	timeType            = reflect.TypeFor[time.Time]()
)

// field is one filterable struct field.
type field struct {
	name   string
	index  []int
	typ    reflect.Type
	column string
}

// fieldTable indexes the filterable fields of one struct type.
type fieldTable struct {
	byJSON map[string]*field
	byName map[string]*field // lower-cased Go name
	byFold map[string]*field // lower-cased json name
}

var tables sync.Map // reflect.Type -> *fieldTable

func tableFor(t reflect.Type) *fieldTable {
	if cached, ok := tables.Load(t); ok {
		return cached.(*fieldTable)
	}

	tbl := &fieldTable{
		byJSON: make(map[string]*field),
		byName: make(map[string]*field),
		byFold: make(map[string]*field),
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous || sf.Tag.Get("filter") == "-" {
			continue
		}

		f := &field{
			name:  sf.Name,
			index: sf.Index,
			typ:   sf.Type,
		}
		if col, _, _ := strings.Cut(sf.Tag.Get("db"), ","); col != "-" {
			f.column = col
		}

		tbl.byName[strings.ToLower(sf.Name)] = f
		if jsonName, _, _ := strings.Cut(sf.Tag.Get("json"), ","); jsonName != "" && jsonName != "-" {
			tbl.byJSON[jsonName] = f
			tbl.byFold[strings.ToLower(jsonName)] = f
		}
	}

	actual, _ := tables.LoadOrStore(t, tbl)
	return actual.(*fieldTable)
}

// lookup finds a field by its JSON name, then by Go name ignoring case, then by
// JSON name ignoring case.
func (tbl *fieldTable) lookup(property string) (*field, bool) {
	if f, ok := tbl.byJSON[property]; ok {
		return f, true
	}
	lower := strings.ToLower(property)
	if f, ok := tbl.byName[lower]; ok {
		return f, true
	}
	f, ok := tbl.byFold[lower]
	return f, ok
}

// predicate is a resolved filter: the field to read and the value it must equal.
type predicate struct {
	filter Filter
	field  *field
	value  reflect.Value
}

// compile resolves every filter against the struct type behind t.
func compile(t reflect.Type, filters []Filter) ([]predicate, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("filter target %s is not a struct", t)
	}

	tbl := tableFor(t)
	preds := make([]predicate, 0, len(filters))
	for _, f := range filters {
		fld, ok := tbl.lookup(f.Property)
		if !ok {
			return nil, &Error{Property: f.Property, Value: f.Value, Err: ErrUnknownProperty}
		}

		value, err := convert(f.Value, fld.typ)
		if err != nil {
			return nil, &Error{Property: f.Property, Value: f.Value, Err: err}
		}

		preds = append(preds, predicate{filter: f, field: fld, value: value})
	}

	return preds, nil
}

// convert parses raw into a value of type t. Pointer types convert to their
// element type.
func convert(raw string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		return convert(raw, t.Elem())
	}
	if !t.Comparable() {
		return reflect.Value{}, ErrUnsupportedType
	}

	// Enum-like types and timestamps parse themselves.
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return ptr.Elem(), nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return reflect.Value{}, ErrInvalidValue
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, ErrInvalidValue
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, ErrInvalidValue
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return reflect.Value{}, ErrInvalidValue
		}
		v.SetFloat(n)
	default:
		return reflect.Value{}, ErrUnsupportedType
	}

	return v, nil
}

// matches reports whether the struct value v satisfies p.
func (p predicate) matches(v reflect.Value) bool {
	fv := v.FieldByIndex(p.field.index)
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return false
		}
		fv = fv.Elem()
	}

	if fv.Type() == timeType {
		return fv.Interface().(time.Time).Equal(p.value.Interface().(time.Time))
	}
	return fv.Equal(p.value)
}
