package models

import "time"

// AnalyticsFilter задает временной интервал выборки.
type AnalyticsFilter struct {
	From          time.Time
	To            time.Time
	TopItemsLimit int
	// ProductIDs ограничивает отчёт по товарам; пустой список означает все товары.
	ProductIDs []string
}

// OrdersStats агрегирует заказы по статусам и дням.
type OrdersStats struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Total       int              `json:"total"`
	ByStatus    map[string]int   `json:"by_status"`
	Daily       []DailyOrderStat `json:"daily"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// DailyOrderStat хранит количество и выручку за день.
type DailyOrderStat struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// OverviewStats описывает ключевые показатели магазина за период.
type OverviewStats struct {
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	Revenue           float64   `json:"revenue"`
	OrdersCount       int       `json:"orders_count"`
	AverageOrderValue float64   `json:"average_order_value"`
	Customers         int       `json:"customers"`
	DiscountTotal     float64   `json:"discount_total"`
	GiftCardTotal     float64   `json:"gift_card_total"`
	StoreCreditTotal  float64   `json:"store_credit_total"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// ProductStat описывает продажи одного товара.
type ProductStat struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Rating    float64 `json:"rating"`
	Reviews   int     `json:"reviews"`
}

// ProductsStats содержит топ товаров за период.
type ProductsStats struct {
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Products    []ProductStat `json:"products"`
	GeneratedAt time.Time     `json:"generated_at"`
}
