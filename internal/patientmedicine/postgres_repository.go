package patientmedicine

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const columns = `id, patient_id, medicine_id, amount, unit, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL patient medicine repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the assignments matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*PatientMedicine, error) {
	return database.SelectFiltered[PatientMedicine](ctx, r.pool, `SELECT `+columns+` FROM patient_medicines`, filters)
}

// Get retrieves an assignment by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*PatientMedicine, error) {
	return database.SelectOne[PatientMedicine](ctx, r.pool, ErrPatientMedicineNotFound,
		`SELECT `+columns+` FROM patient_medicines WHERE id = $1`, id)
}

// Create stores a new assignment and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, pm *PatientMedicine) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_medicines (patient_id, medicine_id, amount, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		pm.PatientID, pm.MedicineID, pm.Amount, pm.Unit, pm.CreatedAt, pm.UpdatedAt,
	).Scan(&pm.ID)
}

// Update changes the dosage of an assignment.
func (r *PostgresRepository) Update(ctx context.Context, pm *PatientMedicine) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE patient_medicines SET amount = $2, unit = $3, updated_at = $4 WHERE id = $1`,
		pm.ID, pm.Amount, pm.Unit, pm.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPatientMedicineNotFound
	}
	return nil
}

// Delete removes an assignment and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*PatientMedicine, error) {
	return database.SelectOne[PatientMedicine](ctx, r.pool, ErrPatientMedicineNotFound,
		`DELETE FROM patient_medicines WHERE id = $1 RETURNING `+columns, id)
}

var _ Repository = (*PostgresRepository)(nil)
