package device

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
)

const columns = `token, user_id, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Exists reports whether a binding for token exists.
func (r *PostgresRepository) Exists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM devices WHERE token = $1)`, token).Scan(&exists)
	return exists, err
}

// GetByToken retrieves a binding by token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Binding, error) {
	return database.SelectOne[Binding](ctx, r.pool, ErrDeviceNotFound,
		`SELECT `+columns+` FROM devices WHERE token = $1`, token)
}

// ListByUsers retrieves the bindings owned by any of userIDs.
func (r *PostgresRepository) ListByUsers(ctx context.Context, userIDs []int64) ([]*Binding, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return database.SelectAll[Binding](ctx, r.pool,
		`SELECT `+columns+` FROM devices WHERE user_id = ANY($1) ORDER BY token`, userIDs)
}

// Upsert creates or rebinds a token.
// Returns true if a new binding was created, false if updated.
func (r *PostgresRepository) Upsert(ctx context.Context, binding *Binding) (bool, error) {
	// The token is the conflict target since a token has one owner.
	query := `
		INSERT INTO devices (token, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		binding.Token,
		binding.UserID,
		binding.CreatedAt,
		binding.UpdatedAt,
	).Scan(&inserted)

	if err != nil {
		return false, err
	}

	return inserted, nil
}

// DeleteByToken deletes a binding.
func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE token = $1`, token)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// DeleteByUser deletes all bindings of a user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE user_id = $1`, userID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
