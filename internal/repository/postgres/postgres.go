// Package postgres implements the catalog repositories on PostgreSQL with
// pgx. Every repository runs its statements on the transaction carried by
// the context when there is one.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/IGDevX/marche-conclu-shop-service/pkg/database"
	apperrors "github.com/IGDevX/marche-conclu-shop-service/pkg/errors"
)

// errNoRow is returned when an INSERT ... RETURNING yields nothing.
var errNoRow = errors.New("statement returned no row")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgCode(err) == pgUniqueViolation }

func isForeignKeyViolation(err error) bool { return pgCode(err) == pgForeignKeyViolation }

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// liveFilter returns the WHERE fragment restricting reads to live rows.
func liveFilter(alias string, includeDeleted bool) string {
	if includeDeleted {
		return "TRUE"
	}
	if alias != "" {
		return alias + ".is_deleted = FALSE"
	}
	return "is_deleted = FALSE"
}

// queryOne runs a single-row query. pgx.ErrNoRows becomes notFound.
func queryOne[T any](ctx context.Context, db database.DBTX, op, query string, scan func(scanner, *T) error, notFound error, args ...any) (_ *T, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var v T
	if err = scan(database.Conn(ctx, db).QueryRow(ctx, query, args...), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}

// queryAll runs a multi-row query and never returns a nil slice on success.
func queryAll[T any](ctx context.Context, db database.DBTX, op, query string, scan func(scanner, *T) error, args ...any) (_ []T, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	rows, err := database.Conn(ctx, db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var v T
		if err = scan(rows, &v); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return out, nil
}

// setDeleted flips is_deleted on one row of table.
func setDeleted(ctx context.Context, db database.DBTX, table, resource string, id int64, deleted bool) (err error) {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = $1, updated_at = NOW() WHERE id = $2`, table)
	ctx, end := database.TraceQuery(ctx, table+".SetDeleted", query)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, db).Exec(ctx, query, deleted, id)
	if err != nil {
		return fmt.Errorf("set %s deleted: %w", resource, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}

// hardDelete removes one row of table.
func hardDelete(ctx context.Context, db database.DBTX, table, resource string, id int64) (err error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	ctx, end := database.TraceQuery(ctx, table+".HardDelete", query)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, db).Exec(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidState(fmt.Sprintf("%s %d is still referenced by products", resource, id))
		}
		return fmt.Errorf("delete %s: %w", resource, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}
