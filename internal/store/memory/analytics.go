package memory

import (
	"context"
	"sort"

	"storefront/internal/models"
)

func (s *Store) ordersInRange(filter models.AnalyticsFilter) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range s.data.orders {
		if o.CreatedAt.Before(filter.From) || o.CreatedAt.After(filter.To) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) OrdersStats(_ context.Context, filter models.AnalyticsFilter) (*models.OrdersStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.OrdersStats{From: filter.From, To: filter.To, ByStatus: make(map[string]int), Daily: make([]models.DailyOrderStat, 0)}
	index := make(map[string]int)
	for _, o := range s.ordersInRange(filter) {
		stats.Total++
		stats.ByStatus[string(o.Status)]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		day := o.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(stats.Daily)
			index[day] = i
			stats.Daily = append(stats.Daily, models.DailyOrderStat{Date: day})
		}
		stats.Daily[i].Orders++
		stats.Daily[i].Revenue += o.Total
	}
	return stats, nil
}

func (s *Store) OverviewStats(_ context.Context, filter models.AnalyticsFilter) (*models.OverviewStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.OverviewStats{From: filter.From, To: filter.To}
	customers := make(map[string]bool)
	for _, o := range s.ordersInRange(filter) {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		stats.OrdersCount++
		stats.Revenue += o.Total
		stats.DiscountTotal += o.DiscountAmount
		stats.GiftCardTotal += o.GiftCardAmount
		stats.StoreCreditTotal += o.StoreCreditAmount
		customers[o.UserID] = true
	}
	stats.Customers = len(customers)
	if stats.OrdersCount > 0 {
		stats.AverageOrderValue = stats.Revenue / float64(stats.OrdersCount)
	}
	return stats, nil
}

func (s *Store) ProductsStats(_ context.Context, filter models.AnalyticsFilter) (*models.ProductsStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := make(map[string]bool, len(filter.ProductIDs))
	for _, id := range filter.ProductIDs {
		allowed[id] = true
	}

	byProduct := make(map[string]*models.ProductStat)
	for _, o := range s.ordersInRange(filter) {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if len(allowed) > 0 && !allowed[item.ProductID] {
				continue
			}
			p, ok := byProduct[item.ProductID]
			if !ok {
				p = &models.ProductStat{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = p
			}
			p.Quantity += item.Quantity
			p.Revenue += item.Price * float64(item.Quantity)
		}
	}

	for _, r := range s.data.reviews {
		if p, ok := byProduct[r.ProductID]; ok {
			p.Rating = (p.Rating*float64(p.Reviews) + float64(r.Rating)) / float64(p.Reviews+1)
			p.Reviews++
		}
	}

	products := make([]models.ProductStat, 0, len(byProduct))
	for _, p := range byProduct {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Quantity != products[j].Quantity {
			return products[i].Quantity > products[j].Quantity
		}
		if products[i].Revenue != products[j].Revenue {
			return products[i].Revenue > products[j].Revenue
		}
		return products[i].ProductID < products[j].ProductID
	})
	if filter.TopItemsLimit > 0 && len(products) > filter.TopItemsLimit {
		products = products[:filter.TopItemsLimit]
	}

	return &models.ProductsStats{From: filter.From, To: filter.To, Products: products}, nil
}
