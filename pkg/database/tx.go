package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// InTx runs fn inside a transaction carried by the returned context.
// Repositories obtain the transaction through Conn, so every statement fn
// issues commits or rolls back together. A call nested in an existing
// transaction joins it instead of opening a new one.
//
// Usage in services:
//
//	err := s.db.InTx(ctx, func(ctx context.Context) error {
//	    if err := s.batches.Create(ctx, batch); err != nil { return err }
//	    return s.deliveries.Create(ctx, delivery)
//	})
func (db *DB) InTx(ctx context.Context, fn func(context.Context) error) error {
	if db.getTx(ctx) != nil {
		return fn(ctx)
	}

	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction stored in ctx, or the pool when there is none
func (db *DB) Conn(ctx context.Context) Querier {
	if tx := db.getTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// getTx extracts transaction from context if present
func (db *DB) getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
