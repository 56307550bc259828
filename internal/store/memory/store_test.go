package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetStock("sku-1", 3)

	err := s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.ReserveStock(ctx, "sku-1", 2))
		return tx.ReserveStock(ctx, "sku-1", 2)
	})
	require.True(t, apperror.Is(err, apperror.KindConflict))

	stock, err := s.GetStock(ctx, "sku-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stock)
}

func TestInTx_NestedRunsInline(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetStock("sku-1", 1)

	err := s.InTx(ctx, func(tx store.Store) error {
		return tx.InTx(ctx, func(inner store.Store) error {
			return inner.ReserveStock(ctx, "sku-1", 1)
		})
	})
	require.NoError(t, err)
	stock, _ := s.GetStock(ctx, "sku-1")
	assert.Equal(t, 0, stock)
}

func TestInTx_RollbackKeepsWritesMadeOutsideTx(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetStock("sku-1", 2)

	inTx := make(chan struct{})
	outsideDone := make(chan struct{})
	errFailed := errors.New("payment declined")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-inTx
		assert.NoError(t, s.CreateGiftCard(ctx, &models.GiftCard{ID: uuid.New(), Code: "GIFT-OUTSIDE-1", Balance: 25}))
		assert.NoError(t, s.CreatePromo(ctx, &models.PromoCode{Code: "OUTSIDE", Active: true}))
		close(outsideDone)
	}()

	err := s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.ReserveStock(ctx, "sku-1", 1))
		close(inTx)
		<-outsideDone
		return errFailed
	})
	wg.Wait()
	require.ErrorIs(t, err, errFailed)

	card, err := s.GetGiftCard(ctx, "GIFT-OUTSIDE-1")
	require.NoError(t, err)
	assert.Equal(t, 25.0, card.Balance)
	_, err = s.GetPromo(ctx, "OUTSIDE")
	require.NoError(t, err)

	stock, err := s.GetStock(ctx, "sku-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestInTx_RollbackRestoresEveryTxWrite(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SetStock("sku-1", 5)
	coupon := &models.UserCoupon{ID: uuid.New(), UserID: "u1", Code: "WELCOME", Type: models.CouponTypeFixed, Value: 5, MaxUses: 1}
	require.NoError(t, s.CreateCoupon(ctx, coupon))
	require.NoError(t, s.CreatePromo(ctx, &models.PromoCode{Code: "TEN", DiscountPercent: 10, Active: true}))
	require.NoError(t, s.CreateGiftCard(ctx, &models.GiftCard{ID: uuid.New(), Code: "GIFT-0001", Balance: 50}))
	_, err := s.AddCredit(ctx, &models.StoreCreditEntry{ID: uuid.New(), UserID: "u1", Amount: 30, Source: models.CreditSourceRefund})
	require.NoError(t, err)
	orderID := uuid.New()

	err = s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.ReserveStock(ctx, "sku-1", 3))
		require.NoError(t, tx.IncrementCouponUsage(ctx, coupon.ID))
		require.NoError(t, tx.IncrementPromoUsage(ctx, "TEN"))
		require.NoError(t, tx.ClaimGiftCard(ctx, "GIFT-0001", "u1"))
		_, err := tx.DebitGiftCard(ctx, "GIFT-0001", 20, time.Now())
		require.NoError(t, err)
		_, err = tx.SpendCredit(ctx, &models.StoreCreditEntry{ID: uuid.New(), UserID: "u1", Amount: -10, Source: models.CreditSourceOrder})
		require.NoError(t, err)
		require.NoError(t, tx.CreateOrder(ctx, &models.Order{ID: orderID, UserID: "u1", Status: models.OrderStatusPending}))
		require.NoError(t, tx.UpdateOrderPayment(ctx, orderID, "pi_1", models.OrderStatusPending))
		require.NoError(t, tx.CreateReview(ctx, &models.Review{ID: uuid.New(), ProductID: "sku-1", UserID: "u1", Rating: 5}))
		return apperror.Conflict("payment intent failed", nil)
	})
	require.True(t, apperror.Is(err, apperror.KindConflict))

	stock, _ := s.GetStock(ctx, "sku-1")
	assert.Equal(t, 5, stock)
	c, _ := s.GetCoupon(ctx, coupon.ID)
	assert.Equal(t, 0, c.UsedCount)
	promo, _ := s.GetPromo(ctx, "TEN")
	assert.Equal(t, 0, promo.UsedCount)
	card, _ := s.GetGiftCard(ctx, "GIFT-0001")
	assert.Equal(t, 50.0, card.Balance)
	assert.Nil(t, card.OwnerUserID)
	balance, _ := s.GetCreditBalance(ctx, "u1")
	assert.Equal(t, 30.0, balance)
	entries, _ := s.ListCreditEntries(ctx, "u1", 10)
	assert.Len(t, entries, 1)
	_, err = s.GetOrder(ctx, orderID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	reviews, _ := s.ListReviews(ctx, "sku-1", 10)
	assert.Empty(t, reviews)
}

func TestCouponUsageIsCapped(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := &models.UserCoupon{ID: uuid.New(), UserID: "u1", Code: "ONCE", Type: models.CouponTypeFixed, Value: 5, MaxUses: 1}
	require.NoError(t, s.CreateCoupon(ctx, c))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementCouponUsage(ctx, c.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestGiftCardDebit(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.CreateGiftCard(ctx, &models.GiftCard{ID: uuid.New(), Code: "GIFT-0001", InitialBalance: 50, Balance: 50}))

	balance, err := s.DebitGiftCard(ctx, "GIFT-0001", 20, now)
	require.NoError(t, err)
	assert.Equal(t, 30.0, balance)

	_, err = s.DebitGiftCard(ctx, "GIFT-0001", 31, now)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	require.NoError(t, s.ClaimGiftCard(ctx, "GIFT-0001", "u1"))
	require.NoError(t, s.ClaimGiftCard(ctx, "GIFT-0001", "u1"))
	assert.True(t, apperror.Is(s.ClaimGiftCard(ctx, "GIFT-0001", "u2"), apperror.KindConflict))
}

func TestStoreCreditLedger(t *testing.T) {
	s := New()
	ctx := context.Background()

	balance, err := s.AddCredit(ctx, &models.StoreCreditEntry{ID: uuid.New(), UserID: "u1", Amount: 30, Source: models.CreditSourceReturn})
	require.NoError(t, err)
	assert.Equal(t, 30.0, balance)

	_, err = s.SpendCredit(ctx, &models.StoreCreditEntry{ID: uuid.New(), UserID: "u1", Amount: -40, Source: models.CreditSourceOrder})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	balance, err = s.SpendCredit(ctx, &models.StoreCreditEntry{ID: uuid.New(), UserID: "u1", Amount: -10, Source: models.CreditSourceOrder})
	require.NoError(t, err)
	assert.Equal(t, 20.0, balance)

	entries, err := s.ListCreditEntries(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, -10.0, entries[0].Amount)
}

func TestListBanners(t *testing.T) {
	s := New()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	s.AddBanner(models.Banner{ID: uuid.New(), Title: "b", Position: models.BannerBottom, Active: true})
	s.AddBanner(models.Banner{ID: uuid.New(), Title: "t2", Position: models.BannerTop, SortOrder: 2, Active: true})
	s.AddBanner(models.Banner{ID: uuid.New(), Title: "t1", Position: models.BannerTop, SortOrder: 1, Active: true, StartsAt: &past})
	s.AddBanner(models.Banner{ID: uuid.New(), Title: "later", Position: models.BannerTop, Active: true, StartsAt: &future})
	s.AddBanner(models.Banner{ID: uuid.New(), Title: "off", Position: models.BannerTop})

	top, err := s.ListBanners(context.Background(), models.BannerTop, now)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "t1", top[0].Title)

	all, err := s.ListBanners(context.Background(), "", now)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAnalytics(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

	orders := []models.Order{
		{ID: uuid.New(), UserID: "u1", Total: 40, DiscountAmount: 5, Status: models.OrderStatusPaid, CreatedAt: day,
			Items: []models.OrderItem{{ProductID: "mug", Name: "Mug", Quantity: 2, Price: 10}}},
		{ID: uuid.New(), UserID: "u2", Total: 60, Status: models.OrderStatusPaid, CreatedAt: day.Add(time.Hour),
			Items: []models.OrderItem{{ProductID: "tee", Name: "Tee", Quantity: 1, Price: 60}, {ProductID: "mug", Name: "Mug", Quantity: 1, Price: 10}}},
		{ID: uuid.New(), UserID: "u1", Total: 99, Status: models.OrderStatusCancelled, CreatedAt: day},
	}
	for i := range orders {
		require.NoError(t, s.CreateOrder(ctx, &orders[i]))
	}
	require.NoError(t, s.CreateReview(ctx, &models.Review{ID: uuid.New(), ProductID: "mug", UserID: "u1", Rating: 4}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{ID: uuid.New(), ProductID: "mug", UserID: "u2", Rating: 5}))
	assert.True(t, apperror.Is(s.CreateReview(ctx, &models.Review{ProductID: "mug", UserID: "u2", Rating: 1}), apperror.KindConflict))

	filter := models.AnalyticsFilter{From: day.Add(-time.Hour), To: day.Add(24 * time.Hour), TopItemsLimit: 5}

	ordersStats, err := s.OrdersStats(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, ordersStats.Total)
	assert.Equal(t, 1, ordersStats.ByStatus["cancelled"])
	require.Len(t, ordersStats.Daily, 1)
	assert.Equal(t, 100.0, ordersStats.Daily[0].Revenue)

	overview, err := s.OverviewStats(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.OrdersCount)
	assert.Equal(t, 2, overview.Customers)
	assert.Equal(t, 50.0, overview.AverageOrderValue)
	assert.Equal(t, 5.0, overview.DiscountTotal)

	products, err := s.ProductsStats(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products.Products, 2)
	assert.Equal(t, "mug", products.Products[0].ProductID)
	assert.Equal(t, 3, products.Products[0].Quantity)
	assert.InDelta(t, 4.5, products.Products[0].Rating, 0.001)

	filter.ProductIDs = []string{"tee"}
	products, err = s.ProductsStats(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products.Products, 1)
	assert.Equal(t, "tee", products.Products[0].ProductID)
}

func TestGetPrices(t *testing.T) {
	s := New()
	s.SetPrice("mug", 19.5)

	prices, err := s.GetPrices(context.Background(), []string{"mug", "tee"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"mug": 19.5}, prices)
}

func TestShippingTypeCounts(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, o := range []models.Order{
		{ID: uuid.New(), UserID: "u1", ShippingType: models.ShippingExpress, Status: models.OrderStatusPaid},
		{ID: uuid.New(), UserID: "u1", ShippingType: models.ShippingExpress, Status: models.OrderStatusPending},
		{ID: uuid.New(), UserID: "u1", ShippingType: models.ShippingPickup, Status: models.OrderStatusCancelled},
		{ID: uuid.New(), UserID: "u2", ShippingType: models.ShippingStandard, Status: models.OrderStatusPaid},
	} {
		o := o
		require.NoError(t, s.CreateOrder(ctx, &o))
	}

	counts, err := s.ShippingTypeCounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[models.ShippingType]int{models.ShippingExpress: 2}, counts)

	counts, err = s.ShippingTypeCounts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPromoCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &models.PromoCode{Code: "TEN", DiscountPercent: 10, MaxUses: 1, Active: true, CreatedAt: time.Now()}
	require.NoError(t, s.CreatePromo(ctx, p))
	assert.True(t, apperror.Is(s.CreatePromo(ctx, p), apperror.KindConflict))

	require.NoError(t, s.IncrementPromoUsage(ctx, "TEN"))
	assert.True(t, apperror.Is(s.IncrementPromoUsage(ctx, "TEN"), apperror.KindConflict))

	upd := *p
	upd.MaxUses = 5
	require.NoError(t, s.UpdatePromo(ctx, &upd))
	got, err := s.GetPromo(ctx, "TEN")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)

	list, err := s.ListPromos(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeletePromo(ctx, "TEN"))
	_, err = s.GetPromo(ctx, "TEN")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
