package services

import (
	"context"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/i18n"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/validate"

	"github.com/google/uuid"
)

// ReviewService принимает отзывы покупателей.
type ReviewService struct {
	store store.ReviewRepository
	tr    *i18n.Translator
	log   *logger.Logger
	now   func() time.Time
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(st store.ReviewRepository, tr *i18n.Translator, log *logger.Logger) *ReviewService {
	if tr == nil {
		tr = i18n.Default()
	}
	return &ReviewService{store: st, tr: tr, log: log, now: time.Now}
}

// Create проверяет и сохраняет отзыв.
func (s *ReviewService) Create(ctx context.Context, locale string, req *models.CreateReviewRequest) (*models.Review, error) {
	productID := strings.TrimSpace(req.ProductID)
	userID := strings.TrimSpace(req.UserID)
	if productID == "" || userID == "" {
		return nil, apperror.Validation("product_id and user_id are required", nil)
	}

	check := validate.New(s.tr, locale).Review(validate.ReviewInput{Rating: req.Rating, Title: req.Title, Body: req.Body})
	if !check.Valid {
		return nil, apperror.Validation(check.Message, nil)
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"rating":     review.Rating,
	}).Info("Review created")
	return review, nil
}

// List возвращает последние отзывы о товаре.
func (s *ReviewService) List(ctx context.Context, productID string, limit int) ([]models.Review, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, apperror.BadRequest("productId is required", nil)
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.store.ListReviews(ctx, productID, limit)
}
