package department

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const columns = `id, title, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL department repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the departments matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*Department, error) {
	return database.SelectFiltered[Department](ctx, r.pool, `SELECT `+columns+` FROM departments`, filters)
}

// Get retrieves a department by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Department, error) {
	return database.SelectOne[Department](ctx, r.pool, ErrDepartmentNotFound,
		`SELECT `+columns+` FROM departments WHERE id = $1`, id)
}

// Create stores a new department and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, d *Department) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO departments (title, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		d.Title, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
}

// Update replaces a stored department.
func (r *PostgresRepository) Update(ctx context.Context, d *Department) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE departments SET title = $2, updated_at = $3 WHERE id = $1`,
		d.ID, d.Title, d.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// Delete removes a department and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*Department, error) {
	d, err := database.SelectOne[Department](ctx, r.pool, ErrDepartmentNotFound,
		`DELETE FROM departments WHERE id = $1 RETURNING `+columns, id)
	if database.IsForeignKeyViolation(err) {
		return nil, ErrDepartmentInUse
	}
	return d, err
}

var _ Repository = (*PostgresRepository)(nil)
