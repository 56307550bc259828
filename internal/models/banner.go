package models

import (
	"time"

	"github.com/google/uuid"
)

// BannerPosition описывает место баннера на витрине.
type BannerPosition string

const (
	BannerTop    BannerPosition = "top"
	BannerMid    BannerPosition = "mid"
	BannerBottom BannerPosition = "bottom"
)

// Valid сообщает, известна ли позиция.
func (p BannerPosition) Valid() bool {
	switch p {
	case BannerTop, BannerMid, BannerBottom:
		return true
	}
	return false
}

// Banner представляет рекламный баннер витрины.
type Banner struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Title     string         `json:"title" db:"title"`
	ImageURL  string         `json:"image_url" db:"image_url"`
	LinkURL   string         `json:"link_url,omitempty" db:"link_url"`
	Position  BannerPosition `json:"position" db:"position"`
	SortOrder int            `json:"sort_order" db:"sort_order"`
	Active    bool           `json:"active" db:"active"`
	StartsAt  *time.Time     `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt    *time.Time     `json:"ends_at,omitempty" db:"ends_at"`
}
