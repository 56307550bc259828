package handlers

import (
	"net/http"
	"strings"

	"storefront/internal/discount"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// CouponHandler обрабатывает купоны пользователей.
type CouponHandler struct {
	coupons  CouponService
	producer EventProducer
	log      *logger.Logger
}

// NewCouponHandler создаёт обработчик купонов. producer может быть nil.
func NewCouponHandler(coupons CouponService, producer EventProducer, log *logger.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, producer: producer, log: log}
}

// EvaluateCouponRequest описывает корзину для проверки купона.
type EvaluateCouponRequest struct {
	UserID        string               `json:"user_id"`
	Subtotal      float64              `json:"subtotal"`
	Shipping      float64              `json:"shipping"`
	ShippingHabit models.ShippingHabit `json:"shipping_habit,omitempty"`
}

// ListForUser обрабатывает GET /api/user/coupons?userId=.
func (h *CouponHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	coupons, err := h.coupons.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load coupons")
		return
	}
	if coupons == nil {
		coupons = []*models.UserCoupon{}
	}

	writeJSONResponse(w, http.StatusOK, coupons)
}

// Assign обрабатывает POST /api/admin/coupons.
func (h *CouponHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req models.AssignCouponRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	coupon, err := h.coupons.Assign(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to assign coupon")
		return
	}

	writeJSONResponse(w, http.StatusCreated, coupon)
}

// Evaluate обрабатывает POST /api/user/coupons/{id}/evaluate.
func (h *CouponHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	couponID, err := uuidParam(r, "id")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req EvaluateCouponRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	order := discount.Order{
		Subtotal:      req.Subtotal,
		Shipping:      req.Shipping,
		UserID:        strings.TrimSpace(req.UserID),
		ShippingHabit: req.ShippingHabit,
	}
	check, err := h.coupons.Evaluate(r.Context(), requestLocale(r), couponID, order)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to evaluate coupon")
		return
	}

	writeJSONResponse(w, http.StatusOK, check)
}

// Redeem обрабатывает POST /api/user/coupons/{id}/redeem.
// Привычка доставки берётся из истории заказов, а не из тела запроса.
func (h *CouponHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	couponID, err := uuidParam(r, "id")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req EvaluateCouponRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	order := discount.Order{Subtotal: req.Subtotal, Shipping: req.Shipping, UserID: userID}
	check, err := h.coupons.Redeem(r.Context(), requestLocale(r), couponID, order)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to redeem coupon")
		return
	}

	if h.producer != nil {
		data := models.DiscountRedeemedData{Code: check.Code, CouponID: &couponID, UserID: userID, Amount: check.Saving}
		if err := h.producer.PublishDiscountRedeemed(models.EventTypeCouponRedeemed, data); err != nil {
			h.log.WithError(err).WithField("coupon_id", couponID).Error("Failed to publish coupon event")
		}
	}

	writeJSONResponse(w, http.StatusOK, check)
}
