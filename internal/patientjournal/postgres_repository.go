package patientjournal

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const columns = `id, patient_id, description, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL journal repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the journal entries matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*PatientJournal, error) {
	return database.SelectFiltered[PatientJournal](ctx, r.pool, `SELECT `+columns+` FROM patient_journals`, filters)
}

// Get retrieves a journal entry by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*PatientJournal, error) {
	return database.SelectOne[PatientJournal](ctx, r.pool, ErrJournalNotFound,
		`SELECT `+columns+` FROM patient_journals WHERE id = $1`, id)
}

// Create stores a new journal entry and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, j *PatientJournal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_journals (patient_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		j.PatientID, j.Description, j.CreatedAt, j.UpdatedAt,
	).Scan(&j.ID)
}

// Update replaces a stored journal entry.
func (r *PostgresRepository) Update(ctx context.Context, j *PatientJournal) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE patient_journals SET patient_id = $2, description = $3, updated_at = $4 WHERE id = $1`,
		j.ID, j.PatientID, j.Description, j.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrJournalNotFound
	}
	return nil
}

// Delete removes a journal entry and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*PatientJournal, error) {
	return database.SelectOne[PatientJournal](ctx, r.pool, ErrJournalNotFound,
		`DELETE FROM patient_journals WHERE id = $1 RETURNING `+columns, id)
}

var _ Repository = (*PostgresRepository)(nil)
