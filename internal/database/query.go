package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carejournal/carejournal/internal/filter"
)

// Querier is implemented by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SelectAll runs query and maps every row onto T by column name.
func SelectAll[T any](ctx context.Context, q Querier, query string, args ...any) ([]*T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
}

// SelectOne runs query and maps exactly one row onto T. notFound is returned
// when the query yields no row.
func SelectOne[T any](ctx context.Context, q Querier, notFound error, query string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound
	}
	return v, err
}

// SelectFiltered appends the filter chain to baseQuery as a WHERE clause,
// orders by id and maps the rows onto T.
func SelectFiltered[T any](ctx context.Context, q Querier, baseQuery string, filters []filter.Filter) ([]*T, error) {
	where, args, err := filter.Where[T](filters, 1)
	if err != nil {
		return nil, err
	}
	query := baseQuery
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"
	return SelectAll[T](ctx, q, query, args...)
}
