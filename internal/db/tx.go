package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Beginner é satisfeito por *pgxpool.Pool e *pgx.Conn.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// WithTx executa fn dentro de uma transação read committed; qualquer erro desfaz tudo.
func WithTx(ctx context.Context, conn Beginner, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
