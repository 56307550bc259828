package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// CreateOrder сохраняет заказ вместе с позициями.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.atomic(ctx, func(tx *Store) error {
		query := `
			INSERT INTO orders (id, user_id, subtotal, shipping_type, shipping_cost, discount_amount, discount_code,
			                    gift_card_amount, store_credit_amount, total, currency, status, payment_intent_id,
			                    estimated_delivery, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`
		_, err := tx.q().ExecContext(ctx, query, o.ID, o.UserID, o.Subtotal, o.ShippingType, o.ShippingCost,
			o.DiscountAmount, o.DiscountCode, o.GiftCardAmount, o.StoreCreditAmount, o.Total, o.Currency,
			o.Status, o.PaymentIntentID, o.EstimatedDelivery, o.CreatedAt, o.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("order already exists", err)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_items (id, order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			if _, err := tx.q().ExecContext(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.Name, item.Quantity, item.Price); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return nil
	})
}

// GetOrder возвращает заказ с позициями.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT id, user_id, subtotal, shipping_type, shipping_cost, discount_amount, discount_code,
		       gift_card_amount, store_credit_amount, total, currency, status, payment_intent_id,
		       estimated_delivery, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	o := &models.Order{}
	err := s.q().QueryRowContext(ctx, query, id).Scan(&o.ID, &o.UserID, &o.Subtotal, &o.ShippingType, &o.ShippingCost,
		&o.DiscountAmount, &o.DiscountCode, &o.GiftCardAmount, &o.StoreCreditAmount, &o.Total, &o.Currency,
		&o.Status, &o.PaymentIntentID, &o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "order not found", "failed to get order")
	}

	rows, err := s.q().QueryContext(ctx, `SELECT id, order_id, product_id, name, quantity, price FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return o, nil
}

// UpdateOrderPayment сохраняет идентификатор платежа и статус заказа.
func (s *Store) UpdateOrderPayment(ctx context.Context, id uuid.UUID, paymentIntentID string, status models.OrderStatus) error {
	query := `UPDATE orders SET payment_intent_id = $1, status = $2, updated_at = $3 WHERE id = $4`
	result, err := s.q().ExecContext(ctx, query, paymentIntentID, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update order payment: %w", err)
	}
	return requireAffected(result, apperror.NotFound("order not found", nil))
}

// ShippingTypeCounts считает неотменённые заказы пользователя по способам доставки.
func (s *Store) ShippingTypeCounts(ctx context.Context, userID string) (map[models.ShippingType]int, error) {
	query := `
		SELECT shipping_type, COUNT(*)
		FROM orders
		WHERE user_id = $1 AND status <> $2
		GROUP BY shipping_type
	`
	rows, err := s.q().QueryContext(ctx, query, userID, models.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by shipping type: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ShippingType]int)
	for rows.Next() {
		var (
			t models.ShippingType
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan shipping type count: %w", err)
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shipping type counts: %w", err)
	}
	return counts, nil
}
