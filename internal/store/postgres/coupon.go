package postgres

import (
	"context"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"

	"github.com/google/uuid"
)

const couponColumns = `id, user_id, code, type, value, min_order, max_uses, used_count, shipping_habit, expires_at, created_at`

func scanCoupon(row interface{ Scan(...interface{}) error }) (*models.UserCoupon, error) {
	c := &models.UserCoupon{}
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.Type, &c.Value, &c.MinOrder, &c.MaxUses, &c.UsedCount,
		&c.ShippingHabit, &c.ExpiresAt, &c.CreatedAt)
	return c, err
}

// CreateCoupon сохраняет купон пользователя.
func (s *Store) CreateCoupon(ctx context.Context, c *models.UserCoupon) error {
	query := `
		INSERT INTO user_coupons (id, user_id, code, type, value, min_order, max_uses, used_count, shipping_habit, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.q().ExecContext(ctx, query, c.ID, c.UserID, c.Code, c.Type, c.Value, c.MinOrder, c.MaxUses,
		c.UsedCount, c.ShippingHabit, c.ExpiresAt, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("coupon already assigned to user", err)
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// GetCoupon возвращает купон по идентификатору.
func (s *Store) GetCoupon(ctx context.Context, id uuid.UUID) (*models.UserCoupon, error) {
	query := `SELECT ` + couponColumns + ` FROM user_coupons WHERE id = $1`
	c, err := scanCoupon(s.q().QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "coupon not found", "failed to get coupon")
	}
	return c, nil
}

// ListCouponsForUser возвращает купоны пользователя, включая истёкшие.
func (s *Store) ListCouponsForUser(ctx context.Context, userID string) ([]*models.UserCoupon, error) {
	query := `SELECT ` + couponColumns + ` FROM user_coupons WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.q().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]*models.UserCoupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coupons: %w", err)
	}
	return coupons, nil
}

// IncrementCouponUsage увеличивает счётчик, только если used_count < max_uses.
func (s *Store) IncrementCouponUsage(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE user_coupons SET used_count = used_count + 1 WHERE id = $1 AND used_count < max_uses`
	result, err := s.q().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	return requireAffected(result, apperror.Conflict("coupon usage limit reached", nil))
}
