package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/go-chi/chi/v5"
)

// GiftCardHandler обрабатывает подарочные карты.
type GiftCardHandler struct {
	giftCards GiftCardService
	producer  EventProducer
	log       *logger.Logger
}

// NewGiftCardHandler создаёт обработчик подарочных карт. producer может быть nil.
func NewGiftCardHandler(giftCards GiftCardService, producer EventProducer, log *logger.Logger) *GiftCardHandler {
	return &GiftCardHandler{giftCards: giftCards, producer: producer, log: log}
}

// Validate обрабатывает POST /api/giftcards/validate.
// Результат проверки всегда 200: ошибки формы возвращаются как данные.
func (h *GiftCardHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateGiftCardRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, h.giftCards.Validate(requestLocale(r), &req))
}

// Issue обрабатывает POST /api/giftcards.
func (h *GiftCardHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req models.IssueGiftCardRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.giftCards.Issue(r.Context(), requestLocale(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to issue gift card")
		return
	}

	h.publish(models.EventTypeGiftCardIssued, models.GiftCardEventData{
		Code:    card.Code,
		Amount:  card.InitialBalance,
		Balance: &card.Balance,
	})

	writeJSONResponse(w, http.StatusCreated, card)
}

// Check обрабатывает GET /api/giftcards/{code}.
func (h *GiftCardHandler) Check(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	card, err := h.giftCards.Check(r.Context(), code)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load gift card")
		return
	}

	writeJSONResponse(w, http.StatusOK, card)
}

// Redeem обрабатывает POST /api/giftcards/{code}/redeem.
func (h *GiftCardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		writeErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	var req models.RedeemGiftCardRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	card, err := h.giftCards.Redeem(r.Context(), requestLocale(r), code, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to redeem gift card")
		return
	}

	h.publish(models.EventTypeGiftCardRedeemed, models.GiftCardEventData{
		Code:    card.Code,
		UserID:  strings.TrimSpace(req.UserID),
		Amount:  req.Amount,
		Balance: &card.Balance,
	})

	writeJSONResponse(w, http.StatusOK, card)
}

func (h *GiftCardHandler) publish(eventType models.EventType, data models.GiftCardEventData) {
	if h.producer == nil {
		return
	}
	if err := h.producer.PublishGiftCardEvent(eventType, data); err != nil {
		h.log.WithError(err).WithField("code", data.Code).Error("Failed to publish gift card event")
	}
}
