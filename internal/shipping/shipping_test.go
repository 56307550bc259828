package shipping

import (
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/i18n"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 6 января 2025 года — понедельник.
func monday(hour, min int) time.Time {
	return time.Date(2025, time.January, 6, hour, min, 0, 0, time.UTC)
}

func newDefaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(nil, 0, nil)
	require.NoError(t, err)
	return c
}

func TestOptions_SubtotalZero(t *testing.T) {
	c := newDefaultCatalog(t)
	opts := c.Options(0)
	require.Len(t, opts, 4)

	assert.Equal(t, models.ShippingPickup, opts[0].Type)
	assert.True(t, opts[0].Free)

	std, ok := c.Option(0, models.ShippingStandard)
	require.True(t, ok)
	assert.Equal(t, 5.99, std.Price)
	assert.False(t, std.Free)

	for i := 1; i < len(opts); i++ {
		assert.LessOrEqual(t, opts[i-1].Price, opts[i].Price)
	}
}

func TestOptions_FreeStandardAboveThreshold(t *testing.T) {
	c := newDefaultCatalog(t)

	below, _ := c.Option(49.99, models.ShippingStandard)
	assert.Equal(t, 5.99, below.Price)

	at, _ := c.Option(50, models.ShippingStandard)
	assert.Equal(t, 0.0, at.Price)
	assert.True(t, at.Free)

	opts := c.Options(120)
	assert.Equal(t, models.ShippingStandard, opts[0].Type)
	assert.Equal(t, models.ShippingPickup, opts[1].Type)
	express, _ := c.Option(120, models.ShippingExpress)
	assert.Equal(t, 14.99, express.Price)
}

func TestOptions_NegativeSubtotalAndCopies(t *testing.T) {
	c := newDefaultCatalog(t)
	assert.Equal(t, c.Options(0), c.Options(-10))

	opts := c.Options(0)
	opts[0].Price = 999
	assert.NotEqual(t, 999.0, c.Options(0)[0].Price)
}

func TestNewCatalog_Errors(t *testing.T) {
	_, err := NewCatalog([]models.ShippingOption{{Type: "standard", MinDays: 3, MaxDays: 1}}, 50, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]models.ShippingOption{{Type: "overnight", MinDays: 1, MaxDays: 1, Cutoff: "25:99"}}, 50, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]models.ShippingOption{{Type: "a", MaxDays: 1}, {Type: "a", MaxDays: 2}}, 50, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]models.ShippingOption{{Type: "a", Price: -1}}, 50, nil)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.ShippingConfig{
		FreeThreshold: 75,
		Location:      "UTC",
		Options: []config.ShippingOptionConfig{
			{Type: "standard", Label: "Std", Price: 4.5, MinDays: 3, MaxDays: 5},
			{Type: "courier", Label: "Courier", Price: 9, MinDays: 1, MaxDays: 2, Cutoff: "12:30"},
		},
	}
	c, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 75.0, c.FreeThreshold())

	std, ok := c.Option(75, models.ShippingStandard)
	require.True(t, ok)
	assert.True(t, std.Free)

	_, err = FromConfig(&config.ShippingConfig{Location: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestEstimate(t *testing.T) {
	c := newDefaultCatalog(t)
	standard, _ := c.Option(0, models.ShippingStandard)
	express, _ := c.Option(0, models.ShippingExpress)
	overnight, _ := c.Option(0, models.ShippingOvernight)

	tests := []struct {
		name    string
		opt     models.ShippingOption
		now     time.Time
		display string
	}{
		{"standard from monday", standard, monday(10, 0), "Mon, Jan 13 – Wed, Jan 15"},
		{"overnight before cutoff", overnight, monday(13, 59), "Tue, Jan 7"},
		{"overnight at cutoff", overnight, monday(14, 0), "Wed, Jan 8"},
		{"overnight friday after cutoff", overnight, monday(15, 0).AddDate(0, 0, 4), "Tue, Jan 14"},
		{"express on saturday", express, monday(9, 0).AddDate(0, 0, 5), "Wed, Jan 15 – Thu, Jan 16"},
		{"express on sunday", express, monday(9, 0).AddDate(0, 0, 6), "Wed, Jan 15 – Thu, Jan 16"},
		{"express skips weekend", express, monday(9, 0).AddDate(0, 0, 3), "Mon, Jan 13 – Tue, Jan 14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := c.Estimate(tt.opt, tt.now)
			assert.Equal(t, tt.display, est.Display)
			assert.False(t, est.MaxDate.Before(est.MinDate))
			assert.False(t, isWeekend(est.MinDate))
			assert.False(t, isWeekend(est.MaxDate))
		})
	}
}

func TestEstimate_UsesCatalogLocation(t *testing.T) {
	// UTC-5: 18:30 UTC это 13:30 по местному времени, до отсечки 14:00
	loc := time.FixedZone("EST", -5*60*60)
	c, err := NewCatalog(nil, 50, loc)
	require.NoError(t, err)
	overnight, _ := c.Option(0, models.ShippingOvernight)

	est := c.Estimate(overnight, time.Date(2025, time.January, 6, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, "Tue, Jan 7", est.Display)

	est = c.Estimate(overnight, time.Date(2025, time.January, 6, 19, 30, 0, 0, time.UTC))
	assert.Equal(t, "Wed, Jan 8", est.Display)
}

func TestEstimate_InvalidCutoffIgnored(t *testing.T) {
	c := newDefaultCatalog(t)
	opt := models.ShippingOption{Type: "custom", MinDays: 1, MaxDays: 1, Cutoff: "late"}
	est := c.Estimate(opt, monday(23, 0))
	assert.Equal(t, "Tue, Jan 7", est.Display)
}

func TestWithEstimates(t *testing.T) {
	c := newDefaultCatalog(t)
	opts := c.WithEstimates(c.Options(10), monday(8, 0))
	for _, o := range opts {
		require.NotNil(t, o.Estimate)
		assert.NotEmpty(t, o.Estimate.Display)
	}
}

func TestLocalize(t *testing.T) {
	c := newDefaultCatalog(t)
	opts := c.Options(0)
	Localize(i18n.Default(), "es", opts)
	for _, o := range opts {
		if o.Type == models.ShippingPickup {
			assert.Equal(t, "Recogida en tienda", o.Label)
		}
	}
}
