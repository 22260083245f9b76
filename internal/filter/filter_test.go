package filter_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/filter"
)

type shift string

const (
	shiftDay   shift = "day"
	shiftNight shift = "night"
)

func (s *shift) UnmarshalText(text []byte) error {
	switch v := shift(text); v {
	case shiftDay, shiftNight:
		*s = v
		return nil
	default:
		return fmt.Errorf("unknown shift %q", text)
	}
}

type person struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Age       int       `json:"age" db:"age"`
	Active    bool      `json:"active" db:"active"`
	Score     float64   `json:"score" db:"score"`
	Shift     shift     `json:"shift" db:"shift"`
	WardID    *int64    `json:"wardId,omitempty" db:"ward_id"`
	Born      time.Time `json:"born" db:"born"`
	Secret    string    `json:"-" db:"secret" filter:"-"`
	Nicknames []string  `json:"nicknames" db:"-"`
	Computed  string    `json:"computed" db:"-"`
}

func ptr[T any](v T) *T { return &v }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []filter.Filter
	}{
		{"empty", "", nil},
		{"single", "age=5", []filter.Filter{{Property: "age", Value: "5"}}},
		{
			name: "order and duplicates preserved",
			raw:  "name=B&age=5&age=7",
			want: []filter.Filter{
				{Property: "name", Value: "B"},
				{Property: "age", Value: "5"},
				{Property: "age", Value: "7"},
			},
		},
		{"escaped", "name=Anne%20Marie&x%20y=a+b", []filter.Filter{
			{Property: "name", Value: "Anne Marie"},
			{Property: "x y", Value: "a b"},
		}},
		{"missing value", "active", []filter.Filter{{Property: "active", Value: ""}}},
		{"empty segments skipped", "&age=5&&", []filter.Filter{{Property: "age", Value: "5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BadEscape(t *testing.T) {
	_, err := filter.Parse("name=%zz")
	require.Error(t, err)
	assert.ErrorIs(t, err, filter.ErrMalformedQuery)
	assert.True(t, filter.IsMalformed(err))
}

func TestApply_Equality(t *testing.T) {
	people := []person{{Name: "A", Age: 5}, {Name: "B", Age: 7}}

	got, err := filter.Apply(people, []filter.Filter{{Property: "Age", Value: "5"}})
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "A", Age: 5}}, got)
}

func TestApply_Conjunctive(t *testing.T) {
	people := []person{{Name: "A", Age: 5}, {Name: "B", Age: 7}}

	got, err := filter.Apply(people, []filter.Filter{
		{Property: "Age", Value: "5"},
		{Property: "Age", Value: "7"},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApply_NoFiltersReturnsInput(t *testing.T) {
	people := []person{{Name: "C"}, {Name: "A"}, {Name: "B"}}

	got, err := filter.Apply(people, nil)
	require.NoError(t, err)
	assert.Equal(t, people, got)
}

func TestApply_PreservesOrder(t *testing.T) {
	people := []person{
		{ID: 3, Age: 5}, {ID: 1, Age: 9}, {ID: 2, Age: 5}, {ID: 7, Age: 5},
	}

	got, err := filter.Apply(people, []filter.Filter{{Property: "age", Value: "5"}})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(7), got[2].ID)
}

func TestApply_PropertyResolution(t *testing.T) {
	people := []person{{Name: "A", WardID: ptr(int64(4))}, {Name: "B"}}

	for _, key := range []string{"wardId", "WardID", "wardid", "WARDID"} {
		t.Run(key, func(t *testing.T) {
			got, err := filter.Apply(people, []filter.Filter{{Property: key, Value: "4"}})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "A", got[0].Name)
		})
	}
}

func TestApply_Conversions(t *testing.T) {
	born := time.Date(1990, 3, 1, 8, 0, 0, 0, time.UTC)
	people := []person{
		{ID: 1, Active: true, Score: 1.5, Shift: shiftDay, Born: born},
		{ID: 2, Active: false, Score: 2, Shift: shiftNight, Born: born.Add(time.Hour)},
	}

	tests := []struct {
		name   string
		filter filter.Filter
		wantID int64
	}{
		{"bool", filter.Filter{Property: "active", Value: "true"}, 1},
		{"float", filter.Filter{Property: "score", Value: "2"}, 2},
		{"enum by member name", filter.Filter{Property: "shift", Value: "night"}, 2},
		{"time in another zone", filter.Filter{Property: "born", Value: "1990-03-01T10:00:00+02:00"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filter.Apply(people, []filter.Filter{tt.filter})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantID, got[0].ID)
		})
	}
}

func TestApply_PointerItems(t *testing.T) {
	a := &person{Name: "A", Age: 5}
	b := &person{Name: "B", Age: 7}

	got, err := filter.Apply([]*person{a, nil, b}, []filter.Filter{{Property: "name", Value: "B"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Same(t, b, got[0])
}

func TestApply_Failures(t *testing.T) {
	tests := []struct {
		name    string
		filter  filter.Filter
		wantErr error
	}{
		{"unknown property", filter.Filter{Property: "height", Value: "1"}, filter.ErrUnknownProperty},
		{"hidden property", filter.Filter{Property: "secret", Value: "x"}, filter.ErrUnknownProperty},
		{"bad int", filter.Filter{Property: "age", Value: "five"}, filter.ErrInvalidValue},
		{"int overflow", filter.Filter{Property: "age", Value: "99999999999999999999"}, filter.ErrInvalidValue},
		{"bad bool", filter.Filter{Property: "active", Value: "maybe"}, filter.ErrInvalidValue},
		{"bad enum member", filter.Filter{Property: "shift", Value: "evening"}, filter.ErrInvalidValue},
		{"bad time", filter.Filter{Property: "born", Value: "yesterday"}, filter.ErrInvalidValue},
		{"slice field", filter.Filter{Property: "nicknames", Value: "x"}, filter.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Failures surface even when there is nothing to filter.
			_, err := filter.Apply([]person{}, []filter.Filter{tt.filter})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, filter.IsMalformed(err))

			var fe *filter.Error
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.filter.Property, fe.Property)
		})
	}
}

func TestApply_NilPointerFieldNeverMatches(t *testing.T) {
	people := []person{{Name: "A"}, {Name: "B", WardID: ptr(int64(0))}}

	got, err := filter.Apply(people, []filter.Filter{{Property: "wardId", Value: "0"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Name)
}

func TestWhere(t *testing.T) {
	clause, args, err := filter.Where[person]([]filter.Filter{
		{Property: "name", Value: "A"},
		{Property: "wardId", Value: "3"},
		{Property: "shift", Value: "day"},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, `"name" = $2 AND "ward_id" = $3 AND "shift" = $4`, clause)
	assert.Equal(t, []any{"A", int64(3), shiftDay}, args)
}

func TestWhere_Empty(t *testing.T) {
	clause, args, err := filter.Where[person](nil, 1)
	require.NoError(t, err)
	assert.Empty(t, clause)
	assert.Empty(t, args)
}

func TestWhere_FieldWithoutColumn(t *testing.T) {
	_, _, err := filter.Where[person]([]filter.Filter{{Property: "computed", Value: "x"}}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, filter.ErrUnknownProperty)
}
