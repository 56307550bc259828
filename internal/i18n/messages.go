package i18n

// MessageID — идентификатор сообщения в каталоге переводов.
type MessageID string

const (
	MsgGiftCardCodeRequired MessageID = "giftcard.code.required"
	MsgGiftCardCodeLength   MessageID = "giftcard.code.length"
	MsgGiftCardCodeChars    MessageID = "giftcard.code.chars"
	MsgGiftCardAmount       MessageID = "giftcard.amount.range"
	MsgGiftCardExpired      MessageID = "giftcard.expired"
	MsgGiftCardInsufficient MessageID = "giftcard.insufficient"

	MsgReviewRating       MessageID = "review.rating.range"
	MsgReviewBodyTooLong  MessageID = "review.body.too_long"
	MsgReviewTitleTooLong MessageID = "review.title.too_long"
	MsgPhoneInvalid       MessageID = "phone.invalid"
	MsgEmailRequired      MessageID = "email.required"
	MsgEmailInvalid       MessageID = "email.invalid"

	MsgDiscountExpired       MessageID = "discount.expired"
	MsgDiscountNotYetValid   MessageID = "discount.not_yet_valid"
	MsgDiscountMinOrder      MessageID = "discount.min_order"
	MsgDiscountUsageLimit    MessageID = "discount.usage_limit"
	MsgDiscountInactive      MessageID = "discount.inactive"
	MsgDiscountHabitMismatch MessageID = "discount.habit_mismatch"
	MsgDiscountWrongUser     MessageID = "discount.wrong_user"
	MsgDiscountApplied       MessageID = "discount.applied"
	MsgDiscountFreeShipping  MessageID = "discount.free_shipping"

	MsgShippingStandard  MessageID = "shipping.standard"
	MsgShippingExpress   MessageID = "shipping.express"
	MsgShippingOvernight MessageID = "shipping.overnight"
	MsgShippingPickup    MessageID = "shipping.pickup"
)

// Catalog — таблица переводов: локаль -> идентификатор -> шаблон.
type Catalog map[Locale]map[MessageID]string

// DefaultCatalog возвращает встроенные переводы.
func DefaultCatalog() Catalog {
	return Catalog{
		"en": {
			MsgGiftCardCodeRequired: "Gift card code is required",
			MsgGiftCardCodeLength:   "Gift card code must be between %d and %d characters",
			MsgGiftCardCodeChars:    "Gift card code may only contain letters, digits and hyphens",
			MsgGiftCardAmount:       "Gift card amount must be between $5 and $500",
			MsgGiftCardExpired:      "This gift card has expired",
			MsgGiftCardInsufficient: "Insufficient gift card balance",

			MsgReviewRating:       "Rating must be between 1 and 5",
			MsgReviewBodyTooLong:  "Review must be 2000 characters or less",
			MsgReviewTitleTooLong: "Title must be 200 characters or less",
			MsgPhoneInvalid:       "Please enter a valid phone number",
			MsgEmailRequired:      "Email is required",
			MsgEmailInvalid:       "Please enter a valid email address",

			MsgDiscountExpired:       "This code has expired",
			MsgDiscountNotYetValid:   "This code is not active yet",
			MsgDiscountMinOrder:      "Minimum order of %s required",
			MsgDiscountUsageLimit:    "This code has reached its usage limit",
			MsgDiscountInactive:      "This code is no longer active",
			MsgDiscountHabitMismatch: "This coupon is not available for the selected shipping method",
			MsgDiscountWrongUser:     "This coupon belongs to another account",
			MsgDiscountApplied:       "You saved %s",
			MsgDiscountFreeShipping:  "Free shipping applied",

			MsgShippingStandard:  "Standard Shipping",
			MsgShippingExpress:   "Express Shipping",
			MsgShippingOvernight: "Overnight Shipping",
			MsgShippingPickup:    "In-Store Pickup",
		},
		"es": {
			MsgGiftCardCodeRequired: "El código de la tarjeta regalo es obligatorio",
			MsgGiftCardCodeLength:   "El código debe tener entre %d y %d caracteres",
			MsgGiftCardAmount:       "El importe debe estar entre 5 $ y 500 $",
			MsgReviewRating:         "La valoración debe estar entre 1 y 5",
			MsgPhoneInvalid:         "Introduce un número de teléfono válido",
			MsgEmailRequired:        "El correo electrónico es obligatorio",
			MsgEmailInvalid:         "Introduce un correo electrónico válido",
			MsgDiscountExpired:      "Este código ha caducado",
			MsgDiscountMinOrder:     "Pedido mínimo de %s",
			MsgShippingStandard:     "Envío estándar",
			MsgShippingExpress:      "Envío exprés",
			MsgShippingOvernight:    "Entrega al día siguiente",
			MsgShippingPickup:       "Recogida en tienda",
		},
		"fr": {
			MsgGiftCardCodeRequired: "Le code de la carte cadeau est obligatoire",
			MsgGiftCardAmount:       "Le montant doit être compris entre 5 $ et 500 $",
			MsgReviewRating:         "La note doit être comprise entre 1 et 5",
			MsgPhoneInvalid:         "Veuillez saisir un numéro de téléphone valide",
			MsgEmailRequired:        "L'adresse e-mail est obligatoire",
			MsgEmailInvalid:         "Veuillez saisir une adresse e-mail valide",
			MsgDiscountExpired:      "Ce code a expiré",
			MsgShippingStandard:     "Livraison standard",
			MsgShippingExpress:      "Livraison express",
			MsgShippingPickup:       "Retrait en magasin",
		},
	}
}
