// Package validate содержит чистые проверки пользовательского ввода.
// Проверки не возвращают ошибок: результат описывается значением Result,
// которое можно сразу показать в форме.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"storefront/internal/i18n"
)

const (
	GiftCardCodeMinLen = 8
	GiftCardCodeMaxLen = 32
	GiftCardMinAmount  = 5.0
	GiftCardMaxAmount  = 500.0

	MinRating      = 1
	MaxRating      = 5
	MaxReviewBody  = 2000
	MaxReviewTitle = 200

	MinPhoneDigits = 10
)

var (
	giftCardCodePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Result — результат проверки.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ReviewInput — проверяемые поля отзыва.
type ReviewInput struct {
	Rating int
	Title  string
	Body   string
}

// Validator формирует сообщения на выбранной локали.
type Validator struct {
	tr     *i18n.Translator
	locale string
}

// New создаёт валидатор. Пустая локаль означает локаль по умолчанию.
func New(tr *i18n.Translator, locale string) *Validator {
	if tr == nil {
		tr = i18n.Default()
	}
	return &Validator{tr: tr, locale: locale}
}

var std = New(nil, "")

func ok() Result {
	return Result{Valid: true}
}

func (v *Validator) fail(id i18n.MessageID, args ...interface{}) Result {
	return Result{Valid: false, Message: v.tr.T(v.locale, id, args...)}
}

// GiftCardCode проверяет код подарочной карты.
func (v *Validator) GiftCardCode(code string) Result {
	code = strings.TrimSpace(code)
	if code == "" {
		return v.fail(i18n.MsgGiftCardCodeRequired)
	}
	n := utf8.RuneCountInString(code)
	if n < GiftCardCodeMinLen || n > GiftCardCodeMaxLen {
		return v.fail(i18n.MsgGiftCardCodeLength, GiftCardCodeMinLen, GiftCardCodeMaxLen)
	}
	if !giftCardCodePattern.MatchString(code) {
		return v.fail(i18n.MsgGiftCardCodeChars)
	}
	return ok()
}

// GiftCardAmount проверяет номинал: от 5 до 500 включительно.
func (v *Validator) GiftCardAmount(amount float64) Result {
	if math.IsNaN(amount) || amount < GiftCardMinAmount || amount > GiftCardMaxAmount {
		return v.fail(i18n.MsgGiftCardAmount)
	}
	return ok()
}

// Review проверяет отзыв. Правила применяются по порядку, побеждает первое нарушение.
func (v *Validator) Review(in ReviewInput) Result {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return v.fail(i18n.MsgReviewRating)
	}
	if utf8.RuneCountInString(in.Body) > MaxReviewBody {
		return v.fail(i18n.MsgReviewBodyTooLong)
	}
	if utf8.RuneCountInString(in.Title) > MaxReviewTitle {
		return v.fail(i18n.MsgReviewTitleTooLong)
	}
	return ok()
}

// Phone проверяет телефон. Поле необязательное: пустая строка допустима.
func (v *Validator) Phone(phone string) Result {
	if phone == "" {
		return ok()
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < MinPhoneDigits {
		return v.fail(i18n.MsgPhoneInvalid)
	}
	return ok()
}

// Email проверяет обязательный адрес электронной почты.
func (v *Validator) Email(email string) Result {
	email = strings.TrimSpace(email)
	if email == "" {
		return v.fail(i18n.MsgEmailRequired)
	}
	if !emailPattern.MatchString(email) {
		return v.fail(i18n.MsgEmailInvalid)
	}
	return ok()
}

// GiftCardCode проверяет код с сообщениями на локали по умолчанию.
func GiftCardCode(code string) Result { return std.GiftCardCode(code) }

// GiftCardAmount проверяет номинал с сообщениями на локали по умолчанию.
func GiftCardAmount(amount float64) Result { return std.GiftCardAmount(amount) }

// Review проверяет отзыв с сообщениями на локали по умолчанию.
func Review(in ReviewInput) Result { return std.Review(in) }

// Phone проверяет телефон с сообщениями на локали по умолчанию.
func Phone(phone string) Result { return std.Phone(phone) }

// Email проверяет email с сообщениями на локали по умолчанию.
func Email(email string) Result { return std.Email(email) }
