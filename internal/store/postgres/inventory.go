package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/apperror"

	"github.com/lib/pq"
)

// GetStock возвращает складской остаток товара.
func (s *Store) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	if err := s.q().QueryRowContext(ctx, `SELECT stock FROM inventory WHERE product_id = $1`, productID).Scan(&stock); err != nil {
		return 0, notFoundOr(err, "product not found", "failed to get stock")
	}
	return stock, nil
}

// ReserveStock уменьшает остаток, только если его хватает.
func (s *Store) ReserveStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return apperror.Validation("quantity must be positive", nil)
	}
	query := `UPDATE inventory SET stock = stock - $1, updated_at = $2 WHERE product_id = $3 AND stock >= $1`
	result, err := s.q().ExecContext(ctx, query, qty, time.Now(), productID)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	return requireAffected(result, apperror.Conflict(fmt.Sprintf("insufficient stock for product %s", productID), nil))
}

// GetPrices возвращает каталожные цены товаров, для которых цена задана.
func (s *Store) GetPrices(ctx context.Context, productIDs []string) (map[string]float64, error) {
	query := `SELECT product_id, price FROM inventory WHERE product_id = ANY($1) AND price IS NOT NULL`
	rows, err := s.q().QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64, len(productIDs))
	for rows.Next() {
		var (
			id    string
			price float64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prices: %w", err)
	}
	return prices, nil
}
