// Package filter turns raw query strings into equality constraints and applies
// them to collections of any struct type.
//
// A list endpoint hands its raw query to Parse and passes the resulting filters
// to either Apply (in-memory collections) or Where (SQL-backed collections).
// Both paths resolve properties and convert values the same way, so a query
// that fails against one store fails against the other.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Filter is one (property, value) equality constraint taken from a query parameter.
type Filter struct {
	Property string
	Value    string
}

func (f Filter) String() string {
	return f.Property + "=" + f.Value
}

// Filter errors.
var (
	ErrMalformedQuery  = errors.New("malformed query string")
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidValue    = errors.New("invalid value for property")
	ErrUnsupportedType = errors.New("property type cannot be filtered")
)

// Error describes a filter that could not be parsed or applied.
type Error struct {
	Property string
	Value    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("filter %q=%q: %v", e.Property, e.Value, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err was caused by a bad filter rather than by
// the underlying store.
func IsMalformed(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// Parse splits a raw query string into filters. Order is preserved and
// repeated keys yield one filter each. An empty query yields no filters.
func Parse(rawQuery string) ([]Filter, error) {
	if rawQuery == "" {
		return nil, nil
	}

	var filters []Filter
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}

		rawKey, rawValue, _ := strings.Cut(part, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, &Error{Property: rawKey, Value: rawValue, Err: ErrMalformedQuery}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, &Error{Property: key, Value: rawValue, Err: ErrMalformedQuery}
		}

		filters = append(filters, Filter{Property: key, Value: value})
	}

	return filters, nil
}
