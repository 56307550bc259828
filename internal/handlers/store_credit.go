package handlers

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/logger"
	"storefront/internal/models"
)

// StoreCreditHandler обрабатывает баланс store credit.
type StoreCreditHandler struct {
	credits  StoreCreditService
	producer EventProducer
	log      *logger.Logger
}

// NewStoreCreditHandler создаёт обработчик store credit. producer может быть nil.
func NewStoreCreditHandler(credits StoreCreditService, producer EventProducer, log *logger.Logger) *StoreCreditHandler {
	return &StoreCreditHandler{credits: credits, producer: producer, log: log}
}

// Balance обрабатывает GET /api/user/store-credit?userId=.
func (h *StoreCreditHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	credit, err := h.credits.Balance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load store credit")
		return
	}

	writeJSONResponse(w, http.StatusOK, credit)
}

// Issue обрабатывает POST /api/admin/store-credit.
func (h *StoreCreditHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueStoreCreditRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	credit, err := h.credits.Issue(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to issue store credit")
		return
	}

	if h.producer != nil {
		data := models.StoreCreditEventData{UserID: credit.UserID, Amount: req.Amount, Source: req.Source}
		if err := h.producer.PublishStoreCreditIssued(data); err != nil {
			h.log.WithError(err).WithField("user_id", credit.UserID).Error("Failed to publish store credit event")
		}
	}

	writeJSONResponse(w, http.StatusCreated, credit)
}

// Spend обрабатывает POST /api/admin/store-credit/spend.
func (h *StoreCreditHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var req models.SpendStoreCreditRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	balance, err := h.credits.Spend(r.Context(), userID, req.Amount, req.OrderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to spend store credit")
		return
	}

	writeJSONResponse(w, http.StatusOK, models.StoreCredit{UserID: userID, Balance: balance, UpdatedAt: time.Now().UTC()})
}
