package xpgx

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps a pgx pool with squirrel-aware helpers so the store never
// touches raw SQL strings and placeholders by hand.
type Pool struct {
	*pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Pool{pool}, nil
}

func (p *Pool) Execx(ctx context.Context, q sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build query: %w", err)
	}
	return p.Exec(ctx, sql, args...)
}

func (p *Pool) Queryx(ctx context.Context, q sq.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return p.Query(ctx, sql, args...)
}

// Get runs q and scans its single row into a T by db tags.
func Get[T any](ctx context.Context, p *Pool, q sq.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// Select runs q and scans every row into a T by db tags.
func Select[T any](ctx context.Context, p *Pool, q sq.Sqlizer) ([]T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// Scalars runs q and scans every row into a bare value.
func Scalars[T any](ctx context.Context, p *Pool, q sq.Sqlizer) ([]T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[T])
}

// Scalar runs q and scans its single row into a bare value.
func Scalar[T any](ctx context.Context, p *Pool, q sq.Sqlizer) (T, error) {
	var zero T
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return zero, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowTo[T])
}
