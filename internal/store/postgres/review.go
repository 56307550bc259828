package postgres

import (
	"context"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"
)

// CreateReview сохраняет отзыв. Повторный отзыв пользователя на товар — конфликт.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.q().ExecContext(ctx, query, r.ID, r.ProductID, r.UserID, r.Rating, r.Title, r.Body, r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("review already exists", err)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListReviews возвращает последние отзывы о товаре.
func (s *Store) ListReviews(ctx context.Context, productID string, limit int) ([]models.Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, title, body, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.q().QueryContext(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Body, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}
