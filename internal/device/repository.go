package device

import "context"

// Repository defines the interface for device binding persistence.
type Repository interface {
	// Exists reports whether a binding for token exists.
	Exists(ctx context.Context, token string) (bool, error)

	// GetByToken retrieves a binding by token.
	GetByToken(ctx context.Context, token string) (*Binding, error)

	// ListByUsers retrieves the bindings owned by any of userIDs.
	ListByUsers(ctx context.Context, userIDs []int64) ([]*Binding, error)

	// Upsert creates the binding or moves an existing token to the binding's
	// user. Returns true if a new binding was created, false if updated.
	Upsert(ctx context.Context, binding *Binding) (created bool, err error)

	// DeleteByToken deletes a binding. Returns ErrDeviceNotFound if absent.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUser deletes all bindings of a user.
	DeleteByUser(ctx context.Context, userID int64) error
}
