package store

import (
	"context"
	"sync"
)

// DeleteHook runs before the row with the given id is removed from a parent
// table. Returning an error keeps the row. Hooks carry the ON DELETE rules
// of the PostgreSQL schema over to the in-memory repositories.
type DeleteHook func(ctx context.Context, id int64) error

// DeleteHooks is an ordered, concurrency-safe list of delete hooks. The zero
// value is ready to use.
type DeleteHooks struct {
	mu    sync.RWMutex
	hooks []DeleteHook
}

// Add appends a hook.
func (h *DeleteHooks) Add(hook DeleteHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Run calls every hook in order and stops at the first error.
func (h *DeleteHooks) Run(ctx context.Context, id int64) error {
	h.mu.RLock()
	hooks := append([]DeleteHook(nil), h.hooks...)
	h.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
