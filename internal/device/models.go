// Package device keeps the push-notification device bindings: which user owns
// which device token. A token is bound to at most one user at a time.
package device

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Binding links a push token to the user signed in on that device.
type Binding struct {
	Token     string    `json:"token" db:"token"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TokenLast4 returns the last 4 characters of the token for logging.
func (b *Binding) TokenLast4() string {
	if len(b.Token) < 4 {
		return b.Token
	}
	return b.Token[len(b.Token)-4:]
}
