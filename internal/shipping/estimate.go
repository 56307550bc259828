package shipping

import (
	"time"

	"storefront/internal/models"
)

const displayLayout = "Mon, Jan 2"

// Estimate рассчитывает окно доставки для позиции. Отсчёт начинается
// с сегодняшнего дня, а после времени отсечки или в выходной с ближайшего
// рабочего дня. Границы окна смещаются на MinDays и MaxDays рабочих дней.
func (c *Catalog) Estimate(opt models.ShippingOption, now time.Time) models.DeliveryEstimate {
	now = now.In(c.location)
	start := startOfDay(now)

	if isWeekend(start) || c.pastCutoff(opt, now) {
		start = nextBusinessDay(start)
	}

	minDate := addBusinessDays(start, opt.MinDays)
	maxDate := addBusinessDays(start, opt.MaxDays)

	return models.DeliveryEstimate{
		MinDate: minDate,
		MaxDate: maxDate,
		Display: Display(minDate, maxDate),
	}
}

// WithEstimates заполняет Estimate у каждой позиции.
func (c *Catalog) WithEstimates(options []models.ShippingOption, now time.Time) []models.ShippingOption {
	for i := range options {
		est := c.Estimate(options[i], now)
		options[i].Estimate = &est
	}
	return options
}

// Display форматирует окно доставки: "Mon, Jan 6" или "Mon, Jan 6 – Wed, Jan 8".
func Display(minDate, maxDate time.Time) string {
	if sameDay(minDate, maxDate) {
		return minDate.Format(displayLayout)
	}
	return minDate.Format(displayLayout) + " – " + maxDate.Format(displayLayout)
}

func (c *Catalog) pastCutoff(opt models.ShippingOption, now time.Time) bool {
	cut, ok := c.cutoffs[opt.Type]
	if !ok {
		if opt.Cutoff == "" {
			return false
		}
		t, err := time.Parse("15:04", opt.Cutoff)
		if err != nil {
			return false
		}
		cut = clock{hour: t.Hour(), min: t.Minute()}
	}
	return now.Hour() > cut.hour || (now.Hour() == cut.hour && now.Minute() >= cut.min)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func nextBusinessDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	for isWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func addBusinessDays(t time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		t = nextBusinessDay(t)
	}
	return t
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
