package patient

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const (
	columns       = `id, name, social_security_number, department_id, created_at, updated_at`
	ssnConstraint = "patients_ssn_key"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL patient repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the patients matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*Patient, error) {
	return database.SelectFiltered[Patient](ctx, r.pool, `SELECT `+columns+` FROM patients`, filters)
}

// Get retrieves a patient by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Patient, error) {
	return database.SelectOne[Patient](ctx, r.pool, ErrPatientNotFound,
		`SELECT `+columns+` FROM patients WHERE id = $1`, id)
}

// GetBySSN retrieves a patient by social security number.
func (r *PostgresRepository) GetBySSN(ctx context.Context, ssn string) (*Patient, error) {
	return database.SelectOne[Patient](ctx, r.pool, ErrPatientNotFound,
		`SELECT `+columns+` FROM patients WHERE social_security_number = $1`, ssn)
}

// Create stores a new patient and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, social_security_number, department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.Name, p.SocialSecurityNumber, p.DepartmentID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return mapWriteError(err)
}

// Update replaces a stored patient.
func (r *PostgresRepository) Update(ctx context.Context, p *Patient) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			name = $2,
			social_security_number = $3,
			department_id = $4,
			updated_at = $5
		WHERE id = $1`,
		p.ID, p.Name, p.SocialSecurityNumber, p.DepartmentID, p.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	if result.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// Delete removes a patient and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*Patient, error) {
	return database.SelectOne[Patient](ctx, r.pool, ErrPatientNotFound,
		`DELETE FROM patients WHERE id = $1 RETURNING `+columns, id)
}

func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err, ssnConstraint):
		return ErrSSNTaken
	case database.IsForeignKeyViolation(err):
		return ErrDepartmentNotFound
	default:
		return err
	}
}

var _ Repository = (*PostgresRepository)(nil)
