// Package shipping содержит каталог способов доставки и расчёт окна доставки
// в рабочих днях.
package shipping

import (
	"fmt"
	"sort"
	"time"

	"storefront/internal/config"
	"storefront/internal/i18n"
	"storefront/internal/models"
)

// DefaultFreeThreshold — сумма заказа, с которой стандартная доставка бесплатна.
const DefaultFreeThreshold = 50.0

// DefaultOptions возвращает встроенный каталог.
func DefaultOptions() []models.ShippingOption {
	return []models.ShippingOption{
		{Type: models.ShippingStandard, Label: "Standard Shipping", Price: 5.99, MinDays: 5, MaxDays: 7},
		{Type: models.ShippingExpress, Label: "Express Shipping", Price: 14.99, MinDays: 2, MaxDays: 3},
		{Type: models.ShippingOvernight, Label: "Overnight Shipping", Price: 29.99, MinDays: 1, MaxDays: 1, Cutoff: "14:00"},
		{Type: models.ShippingPickup, Label: "In-Store Pickup", Price: 0, MinDays: 1, MaxDays: 2, Cutoff: "17:00"},
	}
}

// Catalog — неизменяемый каталог доставки. Безопасен для конкурентного чтения.
type Catalog struct {
	options       []models.ShippingOption
	freeThreshold float64
	location      *time.Location
	cutoffs       map[models.ShippingType]clock
}

type clock struct {
	hour, min int
}

// NewCatalog проверяет позиции и создаёт каталог. Пустой список позиций
// означает встроенный каталог, nil location означает UTC.
func NewCatalog(options []models.ShippingOption, freeThreshold float64, location *time.Location) (*Catalog, error) {
	if len(options) == 0 {
		options = DefaultOptions()
	}
	if freeThreshold <= 0 {
		freeThreshold = DefaultFreeThreshold
	}
	if location == nil {
		location = time.UTC
	}

	c := &Catalog{
		options:       make([]models.ShippingOption, 0, len(options)),
		freeThreshold: freeThreshold,
		location:      location,
		cutoffs:       make(map[models.ShippingType]clock),
	}
	seen := make(map[models.ShippingType]bool)
	for _, opt := range options {
		if opt.Type == "" {
			return nil, fmt.Errorf("shipping option type is required")
		}
		if seen[opt.Type] {
			return nil, fmt.Errorf("duplicate shipping option %q", opt.Type)
		}
		seen[opt.Type] = true
		if opt.Price < 0 {
			return nil, fmt.Errorf("shipping option %q has negative price", opt.Type)
		}
		if opt.MinDays < 0 || opt.MaxDays < opt.MinDays {
			return nil, fmt.Errorf("shipping option %q has invalid day range [%d, %d]", opt.Type, opt.MinDays, opt.MaxDays)
		}
		if opt.Cutoff != "" {
			t, err := time.Parse("15:04", opt.Cutoff)
			if err != nil {
				return nil, fmt.Errorf("shipping option %q has invalid cutoff %q: %w", opt.Type, opt.Cutoff, err)
			}
			c.cutoffs[opt.Type] = clock{hour: t.Hour(), min: t.Minute()}
		}
		opt.Free = false
		opt.Estimate = nil
		c.options = append(c.options, opt)
	}
	return c, nil
}

// FromConfig собирает каталог из настроек приложения.
func FromConfig(cfg *config.ShippingConfig) (*Catalog, error) {
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping location: %w", err)
	}

	var options []models.ShippingOption
	for _, o := range cfg.Options {
		options = append(options, models.ShippingOption{
			Type:    models.ShippingType(o.Type),
			Label:   o.Label,
			Price:   o.Price,
			MinDays: o.MinDays,
			MaxDays: o.MaxDays,
			Cutoff:  o.Cutoff,
		})
	}
	return NewCatalog(options, cfg.FreeThreshold, loc)
}

// FreeThreshold возвращает порог бесплатной доставки.
func (c *Catalog) FreeThreshold() float64 {
	return c.freeThreshold
}

// Location возвращает часовой пояс склада.
func (c *Catalog) Location() *time.Location {
	return c.location
}

// Options возвращает копии позиций каталога с ценой для данного подытога,
// отсортированные по цене. Отрицательный подытог считается нулевым.
func (c *Catalog) Options(subtotal float64) []models.ShippingOption {
	if subtotal < 0 {
		subtotal = 0
	}

	out := make([]models.ShippingOption, len(c.options))
	copy(out, c.options)
	for i := range out {
		if out[i].Type == models.ShippingStandard && subtotal >= c.freeThreshold {
			out[i].Price = 0
		}
		out[i].Free = out[i].Price == 0
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price < out[j].Price
	})
	return out
}

// Option возвращает позицию нужного типа с ценой для данного подытога.
func (c *Catalog) Option(subtotal float64, t models.ShippingType) (models.ShippingOption, bool) {
	for _, opt := range c.Options(subtotal) {
		if opt.Type == t {
			return opt, true
		}
	}
	return models.ShippingOption{}, false
}

// Localize подставляет переведённые названия стандартных способов доставки.
func Localize(tr *i18n.Translator, locale string, options []models.ShippingOption) {
	if tr == nil {
		return
	}
	for i := range options {
		if id, ok := labelIDs[options[i].Type]; ok {
			options[i].Label = tr.T(locale, id)
		}
	}
}

var labelIDs = map[models.ShippingType]i18n.MessageID{
	models.ShippingStandard:  i18n.MsgShippingStandard,
	models.ShippingExpress:   i18n.MsgShippingExpress,
	models.ShippingOvernight: i18n.MsgShippingOvernight,
	models.ShippingPickup:    i18n.MsgShippingPickup,
}
