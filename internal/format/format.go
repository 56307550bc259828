// Package format содержит форматтеры для отображения цен, дат и текстов.
package format

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultCurrency   = "USD"
	DefaultLocale     = "en"
	DefaultDateLayout = "Jan 2, 2006"
	ellipsis          = "..."
)

// Currency форматирует сумму в валюте code для локали locale.
// Пустые code и locale означают USD и en.
func Currency(amount float64, code, locale string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.USD
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Make(DefaultLocale)
	}

	out := message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))

	// буквенные символы ("CHF 10.00") оставляем через пробел, знаки ("$") слитно
	sym, num, found := strings.Cut(out, " ")
	if !found || strings.IndexFunc(sym, unicode.IsLetter) >= 0 {
		return out
	}
	return sym + num
}

// Date форматирует время по layout, по умолчанию "Jan 2, 2006".
func Date(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// Slugify приводит строку к виду url-слага: латиница в нижнем регистре,
// цифры и одиночные дефисы. Повторное применение результат не меняет.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Truncate обрезает строку до n символов и добавляет многоточие.
// Строка длиной не больше n возвращается без изменений.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + ellipsis
}
