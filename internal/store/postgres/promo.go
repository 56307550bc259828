package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

const promoColumns = `code, discount_percent, discount_fixed, min_order, valid_from, valid_until, max_uses, used_count, active, created_at, updated_at`

func scanPromo(row interface{ Scan(...interface{}) error }) (*models.PromoCode, error) {
	p := &models.PromoCode{}
	err := row.Scan(&p.Code, &p.DiscountPercent, &p.DiscountFixed, &p.MinOrder, &p.ValidFrom, &p.ValidUntil,
		&p.MaxUses, &p.UsedCount, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePromo сохраняет новый промокод.
func (s *Store) CreatePromo(ctx context.Context, p *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes (code, discount_percent, discount_fixed, min_order, valid_from, valid_until, max_uses, used_count, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10)
	`
	_, err := s.q().ExecContext(ctx, query, p.Code, p.DiscountPercent, p.DiscountFixed, p.MinOrder,
		p.ValidFrom, p.ValidUntil, p.MaxUses, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("promo code already exists", err)
		}
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

// GetPromo возвращает промокод по коду.
func (s *Store) GetPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`
	p, err := scanPromo(s.q().QueryRowContext(ctx, query, code))
	if err != nil {
		return nil, notFoundOr(err, "promo code not found", "failed to get promo code")
	}
	return p, nil
}

// ListPromos возвращает промокоды, новые первыми.
func (s *Store) ListPromos(ctx context.Context, limit, offset int) ([]*models.PromoCode, error) {
	query := `SELECT ` + promoColumns + ` FROM promo_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := s.q().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	defer rows.Close()

	var promos []*models.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate promo codes: %w", err)
	}
	return promos, nil
}

// UpdatePromo обновляет параметры промокода. Счётчик использований не меняется.
func (s *Store) UpdatePromo(ctx context.Context, p *models.PromoCode) error {
	query := `
		UPDATE promo_codes
		SET discount_percent = $1, discount_fixed = $2, min_order = $3, valid_from = $4, valid_until = $5,
		    max_uses = $6, active = $7, updated_at = $8
		WHERE code = $9
	`
	result, err := s.q().ExecContext(ctx, query, p.DiscountPercent, p.DiscountFixed, p.MinOrder,
		p.ValidFrom, p.ValidUntil, p.MaxUses, p.Active, p.UpdatedAt, p.Code)
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	return requireAffected(result, apperror.NotFound("promo code not found", nil))
}

// DeletePromo удаляет промокод.
func (s *Store) DeletePromo(ctx context.Context, code string) error {
	result, err := s.q().ExecContext(ctx, "DELETE FROM promo_codes WHERE code = $1", code)
	if err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}
	return requireAffected(result, apperror.NotFound("promo code not found", nil))
}

// IncrementPromoUsage увеличивает счётчик, пока лимит не исчерпан.
func (s *Store) IncrementPromoUsage(ctx context.Context, code string) error {
	query := `
		UPDATE promo_codes
		SET used_count = used_count + 1, updated_at = $1
		WHERE code = $2 AND active AND (max_uses = 0 OR used_count < max_uses)
	`
	result, err := s.q().ExecContext(ctx, query, time.Now(), code)
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	return requireAffected(result, apperror.Conflict("promo code usage limit reached", nil))
}
