package device

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bindings map[string]*Binding // keyed by token
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bindings: make(map[string]*Binding),
	}
}

// Exists reports whether a binding for token exists.
func (r *InMemoryRepository) Exists(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bindings[token]
	return ok, nil
}

// GetByToken retrieves a binding by token.
func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[token]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyBinding(b), nil
}

// ListByUsers retrieves the bindings owned by any of userIDs, ordered by token.
func (r *InMemoryRepository) ListByUsers(_ context.Context, userIDs []int64) ([]*Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	var items []*Binding
	for _, b := range r.bindings {
		if _, ok := wanted[b.UserID]; ok {
			items = append(items, copyBinding(b))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Token < items[j].Token
	})

	return items, nil
}

// Upsert creates or rebinds a token.
func (r *InMemoryRepository) Upsert(_ context.Context, binding *Binding) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bindings[binding.Token]; ok {
		existing.UserID = binding.UserID
		existing.UpdatedAt = binding.UpdatedAt
		return false, nil
	}

	r.bindings[binding.Token] = copyBinding(binding)
	return true, nil
}

// DeleteByToken deletes a binding.
func (r *InMemoryRepository) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bindings[token]; !ok {
		return ErrDeviceNotFound
	}
	delete(r.bindings, token)
	return nil
}

// DeleteByUser deletes all bindings of a user.
func (r *InMemoryRepository) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, b := range r.bindings {
		if b.UserID == userID {
			delete(r.bindings, token)
		}
	}
	return nil
}

func copyBinding(b *Binding) *Binding {
	c := *b
	return &c
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
