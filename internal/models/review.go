package models

import (
	"time"

	"github.com/google/uuid"
)

// Review представляет отзыв покупателя о товаре
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Title     string    `json:"title,omitempty" db:"title"`
	Body      string    `json:"body,omitempty" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateReviewRequest представляет запрос на создание отзыва
type CreateReviewRequest struct {
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
}
