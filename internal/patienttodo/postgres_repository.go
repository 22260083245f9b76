package patienttodo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/filter"
)

const columns = `id, patient_medicine_id, patient_id, user_id, done, planned_time_at_day, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL todo repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the todos matching filters.
func (r *PostgresRepository) List(ctx context.Context, filters []filter.Filter) ([]*PatientTodo, error) {
	return database.SelectFiltered[PatientTodo](ctx, r.pool, `SELECT `+columns+` FROM patient_todos`, filters)
}

// Get retrieves a todo by ID.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*PatientTodo, error) {
	return database.SelectOne[PatientTodo](ctx, r.pool, ErrPatientTodoNotFound,
		`SELECT `+columns+` FROM patient_todos WHERE id = $1`, id)
}

// Create stores a new todo and sets its ID.
func (r *PostgresRepository) Create(ctx context.Context, todo *PatientTodo) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_todos (patient_medicine_id, patient_id, user_id, done, planned_time_at_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		todo.PatientMedicineID, todo.PatientID, todo.UserID, todo.Done, todo.PlannedTimeAtDay,
		todo.CreatedAt, todo.UpdatedAt,
	).Scan(&todo.ID)
}

// Update stores the done flag and planned time of a todo.
func (r *PostgresRepository) Update(ctx context.Context, todo *PatientTodo) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE patient_todos SET done = $2, planned_time_at_day = $3, updated_at = $4 WHERE id = $1`,
		todo.ID, todo.Done, todo.PlannedTimeAtDay, todo.UpdatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPatientTodoNotFound
	}
	return nil
}

// Delete removes a todo and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*PatientTodo, error) {
	return database.SelectOne[PatientTodo](ctx, r.pool, ErrPatientTodoNotFound,
		`DELETE FROM patient_todos WHERE id = $1 RETURNING `+columns, id)
}

var _ Repository = (*PostgresRepository)(nil)
