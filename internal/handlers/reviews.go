package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"
)

const defaultReviewLimit = 20

// ReviewHandler обрабатывает отзывы о товарах.
type ReviewHandler struct {
	reviews ReviewService
	log     *logger.Logger
}

// NewReviewHandler создаёт обработчик отзывов.
func NewReviewHandler(reviews ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

// Create обрабатывает POST /api/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Create(r.Context(), requestLocale(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create review")
		return
	}

	writeJSONResponse(w, http.StatusCreated, review)
}

// List обрабатывает GET /api/reviews?productId=.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	if productID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "productId is required")
		return
	}
	limit := parseIntWithDefault(r.URL.Query().Get("limit"), defaultReviewLimit)

	reviews, err := h.reviews.List(r.Context(), productID, limit)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load reviews")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	writeJSONResponse(w, http.StatusOK, reviews)
}
