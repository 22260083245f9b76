// Package store provides a generic in-memory table used by the in-memory
// repositories. It is intended for tests and local development; production
// uses the PostgreSQL repositories.
package store

import (
	"errors"
	"sync"

	"github.com/carejournal/carejournal/internal/filter"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("row not found")

// Table holds rows of T ordered by an auto-incrementing int64 id.
// Rows are stored and returned by value.
type Table[T any] struct {
	mu     sync.RWMutex
	rows   []T
	nextID int64
	id     func(*T) *int64
}

// NewTable creates a table. id returns a pointer to the row's id field.
func NewTable[T any](id func(*T) *int64) *Table[T] {
	return &Table[T]{id: id}
}

// Insert assigns the next id to row, stores it and returns the stored row.
func (t *Table[T]) Insert(row T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	*t.id(&row) = t.nextID
	t.rows = append(t.rows, row)
	return row
}

// InsertIf stores row only when ok reports true for the current rows. Both run
// under the same lock.
func (t *Table[T]) InsertIf(row T, ok func(rows []T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ok(t.rows); err != nil {
		var zero T
		return zero, err
	}

	t.nextID++
	*t.id(&row) = t.nextID
	t.rows = append(t.rows, row)
	return row, nil
}

// Get returns the row with the given id.
func (t *Table[T]) Get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i := t.indexOf(id); i >= 0 {
		return t.rows[i], true
	}
	var zero T
	return zero, false
}

// Find returns the first row, in id order, for which match is true.
func (t *Table[T]) Find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// Count returns the number of rows.
func (t *Table[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// List returns the rows satisfying filters, in id order.
func (t *Table[T]) List(filters []filter.Filter) ([]T, error) {
	t.mu.RLock()
	snapshot := make([]T, len(t.rows))
	copy(snapshot, t.rows)
	t.mu.RUnlock()

	return filter.Apply(snapshot, filters)
}

// Update applies fn to a copy of the row and stores the result when fn
// succeeds. fn also receives the other rows for uniqueness checks.
func (t *Table[T]) Update(id int64, fn func(row *T, others []T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	i := t.indexOf(id)
	if i < 0 {
		return zero, ErrNotFound
	}

	others := make([]T, 0, len(t.rows)-1)
	others = append(others, t.rows[:i]...)
	others = append(others, t.rows[i+1:]...)

	row := t.rows[i]
	if err := fn(&row, others); err != nil {
		return zero, err
	}
	*t.id(&row) = id
	t.rows[i] = row
	return row, nil
}

// Delete removes and returns the row with the given id.
func (t *Table[T]) Delete(id int64) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	i := t.indexOf(id)
	if i < 0 {
		return zero, false
	}
	row := t.rows[i]
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return row, true
}

// DeleteWhere removes every row for which match is true and returns how many
// were removed.
func (t *Table[T]) DeleteWhere(match func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.rows[:0]
	removed := 0
	for _, row := range t.rows {
		if match(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return removed
}

// UpdateWhere applies fn to every row for which match is true and returns
// how many rows changed. fn must not change the id.
func (t *Table[T]) UpdateWhere(match func(T) bool, fn func(row *T)) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	updated := 0
	for i := range t.rows {
		if match(t.rows[i]) {
			fn(&t.rows[i])
			updated++
		}
	}
	return updated
}

// IDs returns the ids of the rows for which match is true, in id order.
func (t *Table[T]) IDs(match func(T) bool) []int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var ids []int64
	for i := range t.rows {
		if match(t.rows[i]) {
			ids = append(ids, *t.id(&t.rows[i]))
		}
	}
	return ids
}

// indexOf finds a row by id. Rows are appended in id order, so binary search
// applies. Callers must hold the lock.
func (t *Table[T]) indexOf(id int64) int {
	lo, hi := 0, len(t.rows)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if *t.id(&t.rows[mid]) < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(t.rows) && *t.id(&t.rows[lo]) == id {
		return lo
	}
	return -1
}

// Pointers returns pointers into rows, in order.
func Pointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
