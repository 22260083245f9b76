package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const userColumns = `id, name, email, password_hash, job_title, role, department_id, created_at, updated_at`

// emailConstraint is the unique index on lower(email).
const emailConstraint = "users_email_lower_key"

// firstUserLockKey serializes first-user bootstrap attempts.
const firstUserLockKey = 0x75736572

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the users matching filters, ordered by ID.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*User, error) {
	return database.SelectFiltered[User](ctx, r.pool, `SELECT `+userColumns+` FROM users`, filters)
}

// Get retrieves a user by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*User, error) {
	return database.SelectOne[User](ctx, r.pool, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return database.SelectOne[User](ctx, r.pool, ErrUserNotFound,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// Count returns the number of users.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

const insertUser = `
	INSERT INTO users (name, email, password_hash, job_title, role, department_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
`

// Create stores a new user and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	err := r.pool.QueryRow(ctx, insertUser, insertArgs(user)...).Scan(&user.ID)
	if database.IsUniqueViolation(err, emailConstraint) {
		return ErrEmailTaken
	}
	return err
}

// CreateFirst stores the user only if the users table is empty. Concurrent
// callers are serialized with a transaction-scoped advisory lock.
func (r *PostgresRepository) CreateFirst(ctx context.Context, user *User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, firstUserLockKey); err != nil {
		return fmt.Errorf("acquire bootstrap lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrUsersExist
	}

	if err := tx.QueryRow(ctx, insertUser, insertArgs(user)...).Scan(&user.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertArgs(u *User) []any {
	return []any{u.Name, u.Email, u.PasswordHash, u.JobTitle, u.Role, u.DepartmentID, u.CreatedAt, u.UpdatedAt}
}

// Update updates an existing user.
func (r *PostgresRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users SET
			name = $2,
			email = $3,
			password_hash = $4,
			job_title = $5,
			role = $6,
			department_id = $7,
			updated_at = $8
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.JobTitle,
		user.Role,
		user.DepartmentID,
		user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, emailConstraint) {
			return ErrEmailTaken
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete deletes a user and returns the deleted record.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*User, error) {
	return database.SelectOne[User](ctx, r.pool, ErrUserNotFound,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
