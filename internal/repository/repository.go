// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package repository implements persistence for accounts, addresses and
// verification tokens over sqlx. It is the sole writer of token rows; the
// services never touch SQL directly.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vinovest/sqlx"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("record not found")

// executor is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx that the
// repository needs.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Repository wraps a database handle. A Repository obtained from New operates
// in auto-commit mode; InTx yields one bound to a single transaction.
type Repository struct {
	q  executor
	db *sqlx.DB // nil when bound to a transaction
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{q: db, db: db}
}

// InTx runs fn against a Repository bound to one transaction and commits if
// fn returns nil, rolling back otherwise. The connection is opened with
// _txlock=immediate, so the transaction holds the write lock from the start;
// concurrent read-then-write sequences against token rows serialize here.
// Calling InTx on an already transaction-bound Repository reuses that
// transaction.
func (r *Repository) InTx(ctx context.Context, fn func(*Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// wrapError converts sql errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
