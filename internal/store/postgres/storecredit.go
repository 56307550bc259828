package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

func (s *Store) insertCreditEntry(ctx context.Context, e *models.StoreCreditEntry) error {
	query := `
		INSERT INTO store_credit_entries (id, user_id, amount, source, note, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.q().ExecContext(ctx, query, e.ID, e.UserID, e.Amount, e.Source, e.Note, e.OrderID, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert store credit entry: %w", err)
	}
	return nil
}

// AddCredit записывает начисление в журнал и увеличивает баланс.
func (s *Store) AddCredit(ctx context.Context, entry *models.StoreCreditEntry) (float64, error) {
	if entry.Amount <= 0 {
		return 0, apperror.Validation("credit amount must be positive", nil)
	}

	var balance float64
	err := s.atomic(ctx, func(tx *Store) error {
		if err := tx.insertCreditEntry(ctx, entry); err != nil {
			return err
		}
		query := `
			INSERT INTO store_credit_balances (user_id, balance, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET balance = store_credit_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
			RETURNING balance
		`
		if err := tx.q().QueryRowContext(ctx, query, entry.UserID, entry.Amount, entry.CreatedAt).Scan(&balance); err != nil {
			return fmt.Errorf("failed to update store credit balance: %w", err)
		}
		return nil
	})
	return balance, err
}

// GetCreditBalance возвращает баланс; у пользователя без начислений он нулевой.
func (s *Store) GetCreditBalance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := s.q().QueryRowContext(ctx, `SELECT balance FROM store_credit_balances WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get store credit balance: %w", err)
	}
	return balance, nil
}

// ListCreditEntries возвращает последние записи журнала.
func (s *Store) ListCreditEntries(ctx context.Context, userID string, limit int) ([]models.StoreCreditEntry, error) {
	query := `
		SELECT id, user_id, amount, source, note, order_id, created_at
		FROM store_credit_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.q().QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list store credit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.StoreCreditEntry, 0)
	for rows.Next() {
		var e models.StoreCreditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Source, &e.Note, &e.OrderID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store credit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate store credit entries: %w", err)
	}
	return entries, nil
}

// SpendCredit списывает -entry.Amount, только если баланса хватает.
// Сумма записи списания отрицательная.
func (s *Store) SpendCredit(ctx context.Context, entry *models.StoreCreditEntry) (float64, error) {
	spend := -entry.Amount
	if spend <= 0 {
		return 0, apperror.Validation("spend amount must be positive", nil)
	}

	var balance float64
	err := s.atomic(ctx, func(tx *Store) error {
		query := `
			UPDATE store_credit_balances
			SET balance = balance - $1, updated_at = $2
			WHERE user_id = $3 AND balance >= $1
			RETURNING balance
		`
		if err := tx.q().QueryRowContext(ctx, query, spend, entry.CreatedAt, entry.UserID).Scan(&balance); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.Conflict("insufficient store credit", err)
			}
			return fmt.Errorf("failed to spend store credit: %w", err)
		}
		return tx.insertCreditEntry(ctx, entry)
	})
	return balance, err
}
