package handlers

import (
	"net/http"

	"storefront/internal/logger"
)

// ShippingHandler отдаёт варианты доставки для корзины.
type ShippingHandler struct {
	shipping ShippingProvider
	log      *logger.Logger
}

// NewShippingHandler создаёт обработчик доставки.
func NewShippingHandler(shipping ShippingProvider, log *logger.Logger) *ShippingHandler {
	return &ShippingHandler{shipping: shipping, log: log}
}

// Options обрабатывает GET /api/shipping/options?subtotal=.
// Отсутствующий или некорректный subtotal трактуется как 0.
func (h *ShippingHandler) Options(w http.ResponseWriter, r *http.Request) {
	subtotal := parseFloatOrZero(r.URL.Query().Get("subtotal"))
	options := h.shipping.Options(r.Context(), subtotal, requestLocale(r))
	writeJSONResponse(w, http.StatusOK, options)
}
