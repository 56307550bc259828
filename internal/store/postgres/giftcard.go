package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

// CreateGiftCard сохраняет выпущенную карту.
func (s *Store) CreateGiftCard(ctx context.Context, g *models.GiftCard) error {
	query := `
		INSERT INTO gift_cards (id, code, initial_balance, balance, currency, owner_user_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.q().ExecContext(ctx, query, g.ID, g.Code, g.InitialBalance, g.Balance, g.Currency,
		g.OwnerUserID, g.ExpiresAt, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("gift card code already exists", err)
		}
		return fmt.Errorf("failed to create gift card: %w", err)
	}
	return nil
}

// GetGiftCard возвращает карту по коду.
func (s *Store) GetGiftCard(ctx context.Context, code string) (*models.GiftCard, error) {
	query := `
		SELECT id, code, initial_balance, balance, currency, owner_user_id, expires_at, created_at, updated_at
		FROM gift_cards
		WHERE code = $1
	`
	g := &models.GiftCard{}
	err := s.q().QueryRowContext(ctx, query, code).Scan(&g.ID, &g.Code, &g.InitialBalance, &g.Balance,
		&g.Currency, &g.OwnerUserID, &g.ExpiresAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "gift card not found", "failed to get gift card")
	}
	return g, nil
}

// DebitGiftCard списывает сумму одним условным UPDATE.
func (s *Store) DebitGiftCard(ctx context.Context, code string, amount float64, now time.Time) (float64, error) {
	if amount <= 0 {
		return 0, apperror.Validation("debit amount must be positive", nil)
	}
	query := `
		UPDATE gift_cards
		SET balance = balance - $1, updated_at = $2
		WHERE code = $3 AND balance >= $1 AND (expires_at IS NULL OR expires_at > $2)
		RETURNING balance
	`
	var balance float64
	if err := s.q().QueryRowContext(ctx, query, amount, now, code).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.Conflict("insufficient gift card balance or card expired", err)
		}
		return 0, fmt.Errorf("failed to debit gift card: %w", err)
	}
	return balance, nil
}

// ClaimGiftCard назначает владельца карте без владельца.
func (s *Store) ClaimGiftCard(ctx context.Context, code, userID string) error {
	query := `
		UPDATE gift_cards
		SET owner_user_id = $1, updated_at = $2
		WHERE code = $3 AND (owner_user_id IS NULL OR owner_user_id = $1)
	`
	result, err := s.q().ExecContext(ctx, query, userID, time.Now(), code)
	if err != nil {
		return fmt.Errorf("failed to claim gift card: %w", err)
	}
	return requireAffected(result, apperror.Conflict("gift card belongs to another user", nil))
}
