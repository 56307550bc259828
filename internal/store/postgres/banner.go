package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
)

// ListBanners возвращает активные баннеры, отсортированные по позиции и порядку.
func (s *Store) ListBanners(ctx context.Context, position models.BannerPosition, now time.Time) ([]models.Banner, error) {
	query := `
		SELECT id, title, image_url, link_url, position, sort_order, active, starts_at, ends_at
		FROM banners
		WHERE active
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at > $1)
	`
	args := []interface{}{now}
	if position != "" {
		query += " AND position = $2"
		args = append(args, position)
	}
	query += " ORDER BY position ASC, sort_order ASC"

	rows, err := s.q().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := make([]models.Banner, 0)
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.SortOrder, &b.Active, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate banners: %w", err)
	}
	return banners, nil
}
