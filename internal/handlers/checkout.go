package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/logger"
	"storefront/internal/models"
)

// CheckoutHandler считает корзину и оформляет заказы.
type CheckoutHandler struct {
	checkout CheckoutService
	producer EventProducer
	log      *logger.Logger
}

// NewCheckoutHandler создаёт обработчик оформления заказа. producer может быть nil.
func NewCheckoutHandler(checkout CheckoutService, producer EventProducer, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, producer: producer, log: log}
}

// Config обрабатывает GET /api/checkout/config.
func (h *CheckoutHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.checkout.Config())
}

// Quote обрабатывает POST /api/checkout/quote.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.checkout.Quote(r.Context(), requestLocale(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to calculate quote")
		return
	}

	writeJSONResponse(w, http.StatusOK, quote)
}

// PlaceOrder обрабатывает POST /api/checkout/orders.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), requestLocale(r), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to place order")
		return
	}

	// Заказ уже создан, ошибки публикации клиенту не возвращаются
	h.publishOrderEvents(order, &req)

	writeJSONResponse(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) publishOrderEvents(order *models.Order, req *models.CheckoutRequest) {
	if h.producer == nil {
		return
	}
	log := h.log.WithField("order_id", order.ID)

	if err := h.producer.PublishOrderPlaced(order); err != nil {
		log.WithError(err).Error("Failed to publish order placed event")
	}

	if d := order.Discount; d != nil {
		eventType := models.EventTypePromoApplied
		if d.Source == "coupon" {
			eventType = models.EventTypeCouponRedeemed
		}
		data := models.DiscountRedeemedData{
			Code:     d.Code,
			CouponID: d.CouponID,
			UserID:   order.UserID,
			OrderID:  &order.ID,
			Amount:   order.DiscountAmount,
		}
		if err := h.producer.PublishDiscountRedeemed(eventType, data); err != nil {
			log.WithError(err).Error("Failed to publish discount event")
		}
	}

	if order.GiftCardAmount > 0 && req.GiftCardCode != nil {
		data := models.GiftCardEventData{
			Code:    strings.ToUpper(strings.TrimSpace(*req.GiftCardCode)),
			UserID:  order.UserID,
			OrderID: &order.ID,
			Amount:  order.GiftCardAmount,
		}
		if err := h.producer.PublishGiftCardEvent(models.EventTypeGiftCardRedeemed, data); err != nil {
			log.WithError(err).Error("Failed to publish gift card event")
		}
	}
}
