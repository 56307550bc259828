// Package discount оценивает применимость промокодов и пользовательских
// купонов к заказу и выбирает не более одной скидки.
package discount

import (
	"math"
	"time"

	"storefront/internal/models"
)

// Reason объясняет, почему скидка не применима.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonInactive      Reason = "inactive"
	ReasonNotYetValid   Reason = "not_yet_valid"
	ReasonExpired       Reason = "expired"
	ReasonMinOrder      Reason = "min_order"
	ReasonUsageLimit    Reason = "usage_limit"
	ReasonHabitMismatch Reason = "habit_mismatch"
	ReasonWrongUser     Reason = "wrong_user"
)

// Order — минимальное описание заказа для оценки скидки.
type Order struct {
	Subtotal      float64
	Shipping      float64
	UserID        string
	ShippingHabit models.ShippingHabit
}

// Candidate — промокод или купон пользователя. Заполняется ровно одно поле.
type Candidate struct {
	Promo  *models.PromoCode
	Coupon *models.UserCoupon
}

// Code возвращает код кандидата.
func (c Candidate) Code() string {
	switch {
	case c.Promo != nil:
		return c.Promo.Code
	case c.Coupon != nil:
		return c.Coupon.Code
	}
	return ""
}

// Result — итог оценки одного кандидата.
type Result struct {
	Candidate   Candidate
	Eligible    bool
	Reason      Reason
	MinOrder    float64
	SubtotalOff float64
	ShippingOff float64
}

// Saving возвращает суммарную экономию.
func (r Result) Saving() float64 {
	return roundMoney(r.SubtotalOff + r.ShippingOff)
}

// Evaluate оценивает одного кандидата.
func Evaluate(order Order, c Candidate, now time.Time) Result {
	switch {
	case c.Promo != nil:
		return EvaluatePromo(order, c.Promo, now)
	case c.Coupon != nil:
		return EvaluateCoupon(order, c.Coupon, now)
	}
	return Result{Candidate: c, Reason: ReasonInactive}
}

// EvaluatePromo проверяет промокод: активность, окно действия,
// минимальную сумму заказа и лимит использований.
func EvaluatePromo(order Order, p *models.PromoCode, now time.Time) Result {
	res := Result{Candidate: Candidate{Promo: p}, MinOrder: p.MinOrder}
	subtotal := nonNegative(order.Subtotal)

	switch {
	case !p.Active:
		res.Reason = ReasonInactive
	case p.ValidFrom != nil && now.Before(*p.ValidFrom):
		res.Reason = ReasonNotYetValid
	case p.ValidUntil != nil && now.After(*p.ValidUntil):
		res.Reason = ReasonExpired
	case subtotal < p.MinOrder:
		res.Reason = ReasonMinOrder
	case p.MaxUses > 0 && p.UsedCount >= p.MaxUses:
		res.Reason = ReasonUsageLimit
	}
	if res.Reason != ReasonNone {
		return res
	}

	// процент и фиксированная сумма не взаимоисключающие: берём большую скидку
	byPercent := percentOf(subtotal, p.DiscountPercent)
	byFixed := fixedOff(subtotal, p.DiscountFixed)
	res.Eligible = true
	res.SubtotalOff = math.Max(byPercent, byFixed)
	return res
}

// EvaluateCoupon проверяет купон пользователя: владельца, срок действия,
// минимальную сумму, лимит использований и привычку доставки.
func EvaluateCoupon(order Order, c *models.UserCoupon, now time.Time) Result {
	res := Result{Candidate: Candidate{Coupon: c}, MinOrder: c.MinOrder}
	subtotal := nonNegative(order.Subtotal)

	switch {
	case c.UserID != order.UserID:
		res.Reason = ReasonWrongUser
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		res.Reason = ReasonExpired
	case subtotal < c.MinOrder:
		res.Reason = ReasonMinOrder
	case c.UsedCount >= c.MaxUses:
		res.Reason = ReasonUsageLimit
	case c.ShippingHabit != nil && *c.ShippingHabit != order.ShippingHabit:
		res.Reason = ReasonHabitMismatch
	}
	if res.Reason != ReasonNone {
		return res
	}

	res.Eligible = true
	switch c.Type {
	case models.CouponTypePercent:
		res.SubtotalOff = percentOf(subtotal, c.Value)
	case models.CouponTypeFixed:
		res.SubtotalOff = fixedOff(subtotal, c.Value)
	case models.CouponTypeFreeShipping:
		res.ShippingOff = roundMoney(nonNegative(order.Shipping))
	default:
		res.Eligible = false
		res.Reason = ReasonInactive
	}
	return res
}

// SelectBest оценивает всех кандидатов и выбирает одну скидку с наибольшей
// экономией. При равенстве выигрывает кандидат, переданный раньше.
// Скидки с нулевой экономией не выбираются. Возвращает nil, если выбрать нечего,
// и результаты оценки всех кандидатов в исходном порядке.
func SelectBest(order Order, candidates []Candidate, now time.Time) (*Result, []Result) {
	results := make([]Result, 0, len(candidates))
	var best *Result
	for _, c := range candidates {
		results = append(results, Evaluate(order, c, now))
	}
	for i := range results {
		r := &results[i]
		if !r.Eligible || r.Saving() <= 0 {
			continue
		}
		if best == nil || r.Saving() > best.Saving() {
			best = r
		}
	}
	if best == nil {
		return nil, results
	}
	chosen := *best
	return &chosen, results
}

// Apply возвращает итоговые подытог и доставку после применения скидки.
func Apply(order Order, r *Result) (subtotal, shipping float64) {
	subtotal = nonNegative(order.Subtotal)
	shipping = nonNegative(order.Shipping)
	if r == nil || !r.Eligible {
		return subtotal, shipping
	}
	return roundMoney(math.Max(0, subtotal-r.SubtotalOff)), roundMoney(math.Max(0, shipping-r.ShippingOff))
}

func percentOf(subtotal, pct float64) float64 {
	pct = math.Min(math.Max(pct, 0), 100)
	return roundMoney(subtotal * pct / 100)
}

func fixedOff(subtotal, value float64) float64 {
	return roundMoney(math.Max(0, math.Min(value, subtotal)))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
