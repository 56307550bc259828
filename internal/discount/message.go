package discount

import (
	"storefront/internal/format"
	"storefront/internal/i18n"
)

var reasonMessages = map[Reason]i18n.MessageID{
	ReasonInactive:      i18n.MsgDiscountInactive,
	ReasonNotYetValid:   i18n.MsgDiscountNotYetValid,
	ReasonExpired:       i18n.MsgDiscountExpired,
	ReasonMinOrder:      i18n.MsgDiscountMinOrder,
	ReasonUsageLimit:    i18n.MsgDiscountUsageLimit,
	ReasonHabitMismatch: i18n.MsgDiscountHabitMismatch,
	ReasonWrongUser:     i18n.MsgDiscountWrongUser,
}

// Message возвращает сообщение для покупателя на локали locale.
func Message(tr *i18n.Translator, locale, currencyCode string, r Result) string {
	if tr == nil {
		tr = i18n.Default()
	}
	if r.Eligible {
		if r.SubtotalOff == 0 && r.ShippingOff > 0 {
			return tr.T(locale, i18n.MsgDiscountFreeShipping)
		}
		return tr.T(locale, i18n.MsgDiscountApplied, format.Currency(r.Saving(), currencyCode, locale))
	}
	id, ok := reasonMessages[r.Reason]
	if !ok {
		return tr.T(locale, i18n.MsgDiscountInactive)
	}
	if r.Reason == ReasonMinOrder {
		return tr.T(locale, id, format.Currency(r.MinOrder, currencyCode, locale))
	}
	return tr.T(locale, id)
}
