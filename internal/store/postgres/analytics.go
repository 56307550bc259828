package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/lib/pq"
)

// OrdersStats считает заказы по статусам и по дням.
func (s *Store) OrdersStats(ctx context.Context, filter models.AnalyticsFilter) (*models.OrdersStats, error) {
	stats := &models.OrdersStats{
		From:     filter.From,
		To:       filter.To,
		ByStatus: make(map[string]int),
		Daily:    make([]models.DailyOrderStat, 0),
	}

	rows, err := s.q().QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY status
	`, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan orders by status: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders by status: %w", err)
	}

	daily, err := s.q().QueryContext(ctx, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND status <> 'cancelled'
		GROUP BY day
		ORDER BY day ASC
	`, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily orders: %w", err)
	}
	defer daily.Close()

	for daily.Next() {
		var (
			day  time.Time
			item models.DailyOrderStat
		)
		if err := daily.Scan(&day, &item.Orders, &item.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan daily orders: %w", err)
		}
		item.Date = day.Format("2006-01-02")
		stats.Daily = append(stats.Daily, item)
	}
	if err := daily.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily orders: %w", err)
	}

	return stats, nil
}

// OverviewStats считает выручку и суммы скидок за период. Отменённые заказы не учитываются.
func (s *Store) OverviewStats(ctx context.Context, filter models.AnalyticsFilter) (*models.OverviewStats, error) {
	query := `
		SELECT COALESCE(SUM(total), 0) AS revenue,
		       COUNT(*) AS orders_count,
		       COALESCE(AVG(total), 0) AS average_order_value,
		       COUNT(DISTINCT user_id) AS customers,
		       COALESCE(SUM(discount_amount), 0),
		       COALESCE(SUM(gift_card_amount), 0),
		       COALESCE(SUM(store_credit_amount), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND status <> 'cancelled'
	`
	stats := &models.OverviewStats{From: filter.From, To: filter.To}
	err := s.q().QueryRowContext(ctx, query, filter.From, filter.To).Scan(&stats.Revenue, &stats.OrdersCount,
		&stats.AverageOrderValue, &stats.Customers, &stats.DiscountTotal, &stats.GiftCardTotal, &stats.StoreCreditTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}
	return stats, nil
}

// ProductsStats возвращает топ товаров по продажам с рейтингом отзывов.
func (s *Store) ProductsStats(ctx context.Context, filter models.AnalyticsFilter) (*models.ProductsStats, error) {
	query := `
		SELECT oi.product_id,
		       MAX(oi.name) AS name,
		       COALESCE(SUM(oi.quantity), 0) AS quantity,
		       COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue,
		       COALESCE(r.rating, 0) AS rating,
		       COALESCE(r.reviews, 0) AS reviews
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN (
			SELECT product_id, AVG(rating) AS rating, COUNT(*) AS reviews
			FROM reviews
			GROUP BY product_id
		) r ON r.product_id = oi.product_id
		WHERE o.status <> 'cancelled'
		  AND o.created_at BETWEEN $1 AND $2
		  AND (cardinality($3::text[]) = 0 OR oi.product_id = ANY($3))
		GROUP BY oi.product_id, r.rating, r.reviews
		ORDER BY quantity DESC, revenue DESC, oi.product_id ASC
		LIMIT $4
	`
	ids := filter.ProductIDs
	if ids == nil {
		ids = []string{}
	}

	rows, err := s.q().QueryContext(ctx, query, filter.From, filter.To, pq.Array(ids), filter.TopItemsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load product stats: %w", err)
	}
	defer rows.Close()

	stats := &models.ProductsStats{From: filter.From, To: filter.To, Products: make([]models.ProductStat, 0)}
	for rows.Next() {
		var p models.ProductStat
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue, &p.Rating, &p.Reviews); err != nil {
			return nil, fmt.Errorf("failed to scan product stats: %w", err)
		}
		stats.Products = append(stats.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product stats: %w", err)
	}
	return stats, nil
}
