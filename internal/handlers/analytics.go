package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/models"
)

const (
	defaultTopLimitFallback = 10
	maxTopLimit             = 100
	defaultAnalyticsTimeout = 5 * time.Second
	analyticsDateLayout     = "2006-01-02"
	analyticsFormatCSV      = "csv"
	analyticsFormatJSON     = "json"
)

// AnalyticsHandler обрабатывает эндпоинты аналитики.
type AnalyticsHandler struct {
	service AnalyticsProvider
	log     *logger.Logger
	cfg     *config.AnalyticsConfig
}

// NewAnalyticsHandler создает новый обработчик аналитики.
func NewAnalyticsHandler(service AnalyticsProvider, log *logger.Logger, cfg *config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log,
		cfg:     cfg,
	}
}

// Orders возвращает заказы по статусам и дням.
func (h *AnalyticsHandler) Orders(w http.ResponseWriter, r *http.Request) {
	filter, format, err := parseAnalyticsFilter(r, h.cfg)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout(h.cfg))
	defer cancel()

	stats, err := h.service.Orders(ctx, filter)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load order analytics")
		return
	}

	if format == analyticsFormatCSV {
		if err := writeOrdersCSV(w, stats); err != nil {
			h.log.WithError(err).Warn("Failed to stream orders CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// Overview возвращает ключевые показатели магазина.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	filter, format, err := parseAnalyticsFilter(r, h.cfg)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout(h.cfg))
	defer cancel()

	stats, err := h.service.Overview(ctx, filter)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load overview analytics")
		return
	}

	if format == analyticsFormatCSV {
		if err := writeOverviewCSV(w, stats); err != nil {
			h.log.WithError(err).Warn("Failed to stream overview CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// Products возвращает топ товаров за период.
func (h *AnalyticsHandler) Products(w http.ResponseWriter, r *http.Request) {
	filter, format, err := parseAnalyticsFilter(r, h.cfg)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyticsTimeout(h.cfg))
	defer cancel()

	stats, err := h.service.Products(ctx, filter)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to load product analytics")
		return
	}

	if format == analyticsFormatCSV {
		if err := writeProductsCSV(w, stats); err != nil {
			h.log.WithError(err).Warn("Failed to stream products CSV")
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

// parseAnalyticsFilter разбирает from/to (YYYY-MM-DD), limit, productIds и format.
// Незаданные границы остаются нулевыми, их заполняет сервис.
func parseAnalyticsFilter(r *http.Request, cfg *config.AnalyticsConfig) (*models.AnalyticsFilter, string, error) {
	query := r.URL.Query()
	filter := &models.AnalyticsFilter{}

	if fromParam := query.Get("from"); fromParam != "" {
		parsed, err := time.Parse(analyticsDateLayout, fromParam)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'from' date, expected YYYY-MM-DD")
		}
		filter.From = startOfDay(parsed)
	}

	if toParam := query.Get("to"); toParam != "" {
		parsed, err := time.Parse(analyticsDateLayout, toParam)
		if err != nil {
			return nil, "", fmt.Errorf("invalid 'to' date, expected YYYY-MM-DD")
		}
		filter.To = endOfDay(parsed)
	}

	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, "", fmt.Errorf("'from' date must be before 'to' date")
	}

	topDefault := defaultTopLimitFallback
	if cfg != nil && cfg.DefaultTopLimit > 0 {
		topDefault = cfg.DefaultTopLimit
	}
	filter.TopItemsLimit = parseIntWithDefault(query.Get("limit"), topDefault)
	if filter.TopItemsLimit > maxTopLimit {
		filter.TopItemsLimit = maxTopLimit
	}

	if raw := query.Get("productIds"); raw != "" {
		seen := make(map[string]bool)
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			filter.ProductIDs = append(filter.ProductIDs, id)
		}
		sort.Strings(filter.ProductIDs)
	}

	format := strings.ToLower(query.Get("format"))
	if format != "" && format != analyticsFormatJSON && format != analyticsFormatCSV {
		return nil, "", fmt.Errorf("format must be json or csv")
	}

	return filter, format, nil
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
}

func writeOrdersCSV(w http.ResponseWriter, stats *models.OrdersStats) error {
	writeCSVHeaders(w, "orders.csv")

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"section", "key", "orders", "revenue"})

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		_ = writer.Write([]string{"status", status, strconv.Itoa(stats.ByStatus[status]), ""})
	}
	for _, day := range stats.Daily {
		_ = writer.Write([]string{"day", day.Date, strconv.Itoa(day.Orders), formatMoney(day.Revenue)})
	}
	_ = writer.Write([]string{"total", rangeLabel(stats.From, stats.To), strconv.Itoa(stats.Total), ""})

	writer.Flush()
	return writer.Error()
}

func writeOverviewCSV(w http.ResponseWriter, stats *models.OverviewStats) error {
	writeCSVHeaders(w, "overview.csv")

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"period", "revenue", "orders_count", "average_order_value", "customers", "discount_total", "gift_card_total", "store_credit_total"})
	_ = writer.Write([]string{
		rangeLabel(stats.From, stats.To),
		formatMoney(stats.Revenue),
		strconv.Itoa(stats.OrdersCount),
		formatMoney(stats.AverageOrderValue),
		strconv.Itoa(stats.Customers),
		formatMoney(stats.DiscountTotal),
		formatMoney(stats.GiftCardTotal),
		formatMoney(stats.StoreCreditTotal),
	})

	writer.Flush()
	return writer.Error()
}

func writeProductsCSV(w http.ResponseWriter, stats *models.ProductsStats) error {
	writeCSVHeaders(w, "products.csv")

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"product_id", "name", "quantity", "revenue", "rating", "reviews"})
	for _, p := range stats.Products {
		_ = writer.Write([]string{
			p.ProductID,
			p.Name,
			strconv.Itoa(p.Quantity),
			formatMoney(p.Revenue),
			fmt.Sprintf("%.2f", p.Rating),
			strconv.Itoa(p.Reviews),
		})
	}

	writer.Flush()
	return writer.Error()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func rangeLabel(from, to time.Time) string {
	return fmt.Sprintf("%s..%s", from.Format(analyticsDateLayout), to.Format(analyticsDateLayout))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Millisecond*999), time.UTC)
}

func analyticsTimeout(cfg *config.AnalyticsConfig) time.Duration {
	if cfg != nil && cfg.RequestTimeoutSeconds > 0 {
		return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return defaultAnalyticsTimeout
}
