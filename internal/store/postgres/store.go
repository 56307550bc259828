// Package postgres реализует интерфейсы store поверх PostgreSQL (lib/pq).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/store"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// querier — общее подмножество *sql.DB и *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store — реализация store.Store для PostgreSQL.
type Store struct {
	db  *database.DB
	tx  *sql.Tx
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

// New создаёт хранилище поверх пула соединений.
func New(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// InTx выполняет fn в транзакции. Если хранилище уже работает внутри
// транзакции, fn выполняется в ней же.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.db.InTx(ctx, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, tx: tx, log: s.log})
	})
}

// atomic выполняет несколько запросов одной транзакцией.
func (s *Store) atomic(ctx context.Context, fn func(tx *Store) error) error {
	return s.InTx(ctx, func(tx store.Store) error {
		return fn(tx.(*Store))
	})
}

// Ping проверяет соединение с базой.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil || s.db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func requireAffected(result sql.Result, onZero error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return onZero
	}
	return nil
}

func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(msg, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
