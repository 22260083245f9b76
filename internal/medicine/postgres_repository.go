package medicine

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const columns = `id, title, description, active_substance, price_per_mg, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL medicine repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the medicines matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*Medicine, error) {
	return database.SelectFiltered[Medicine](ctx, r.pool, `SELECT `+columns+` FROM medicines`, filters)
}

// Get retrieves a medicine by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Medicine, error) {
	return database.SelectOne[Medicine](ctx, r.pool, ErrMedicineNotFound,
		`SELECT `+columns+` FROM medicines WHERE id = $1`, id)
}

// Create stores a new medicine and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, m *Medicine) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medicines (title, description, active_substance, price_per_mg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		m.Title, m.Description, m.ActiveSubstance, m.PricePerMg, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
}

// Update replaces a stored medicine.
func (r *PostgresRepository) Update(ctx context.Context, m *Medicine) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE medicines SET
			title = $2,
			description = $3,
			active_substance = $4,
			price_per_mg = $5,
			updated_at = $6
		WHERE id = $1`,
		m.ID, m.Title, m.Description, m.ActiveSubstance, m.PricePerMg, m.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMedicineNotFound
	}
	return nil
}

// Delete removes a medicine and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*Medicine, error) {
	m, err := database.SelectOne[Medicine](ctx, r.pool, ErrMedicineNotFound,
		`DELETE FROM medicines WHERE id = $1 RETURNING `+columns, id)
	if database.IsForeignKeyViolation(err) {
		return nil, ErrMedicineInUse
	}
	return m, err
}

var _ Repository = (*PostgresRepository)(nil)
