// Package i18n содержит типизированную таблицу сообщений витрины.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale — код локали (BCP 47), например "en" или "es-MX".
type Locale string

// DefaultLocale используется, когда запрошенная локаль неизвестна.
const DefaultLocale Locale = "en"

// Translator ищет сообщения в каталоге с откатом на локаль по умолчанию.
type Translator struct {
	catalog       Catalog
	defaultLocale Locale
	locales       []Locale
	matcher       language.Matcher
}

// New создаёт переводчик. Локаль по умолчанию всегда ставится первой
// в списке поддерживаемых, поэтому неподходящие запросы сводятся к ней.
func New(defaultLocale Locale, catalog Catalog) *Translator {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}

	locales := []Locale{defaultLocale}
	for loc := range catalog {
		if loc != defaultLocale {
			locales = append(locales, loc)
		}
	}

	tags := make([]language.Tag, 0, len(locales))
	for _, loc := range locales {
		tags = append(tags, language.Make(string(loc)))
	}

	return &Translator{
		catalog:       catalog,
		defaultLocale: defaultLocale,
		locales:       locales,
		matcher:       language.NewMatcher(tags),
	}
}

var (
	defaultOnce       sync.Once
	defaultTranslator *Translator
)

// Default возвращает переводчик со встроенным каталогом.
func Default() *Translator {
	defaultOnce.Do(func() {
		defaultTranslator = New(DefaultLocale, DefaultCatalog())
	})
	return defaultTranslator
}

// DefaultLocale возвращает локаль по умолчанию переводчика.
func (t *Translator) DefaultLocale() Locale {
	return t.defaultLocale
}

// Resolve сводит произвольную строку локали (в том числе Accept-Language)
// к одной из локалей каталога.
func (t *Translator) Resolve(locale string) Locale {
	if locale == "" {
		return t.defaultLocale
	}
	if _, ok := t.catalog[Locale(locale)]; ok {
		return Locale(locale)
	}

	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return t.defaultLocale
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLocale
	}
	return t.locales[idx]
}

// T возвращает перевод сообщения id. Порядок поиска: точная локаль,
// подобранная по языку локаль, локаль по умолчанию, сам идентификатор.
func (t *Translator) T(locale string, id MessageID, args ...interface{}) string {
	loc := Locale(locale)
	tmpl, ok := t.lookup(loc, id)
	if !ok {
		loc = t.Resolve(locale)
		tmpl, ok = t.lookup(loc, id)
	}
	if !ok {
		loc = t.defaultLocale
		tmpl, ok = t.lookup(loc, id)
	}
	if !ok {
		return string(id)
	}
	if len(args) == 0 {
		return tmpl
	}

	return message.NewPrinter(language.Make(string(loc))).Sprintf(tmpl, args...)
}

func (t *Translator) lookup(loc Locale, id MessageID) (string, bool) {
	msgs, ok := t.catalog[loc]
	if !ok {
		return "", false
	}
	tmpl, ok := msgs[id]
	return tmpl, ok
}
