// Package memory — реализация store.Store в памяти процесса для локального
// запуска и тестов сервисов. Условные обновления ведут себя так же, как в
// PostgreSQL: при нарушении условия возвращается apperror.Conflict.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/google/uuid"
)

type state struct {
	promos    map[string]models.PromoCode
	coupons   map[uuid.UUID]models.UserCoupon
	giftCards map[string]models.GiftCard
	credits   map[string]float64
	entries   []models.StoreCreditEntry
	orders    map[uuid.UUID]models.Order
	stock     map[string]int
	prices    map[string]float64
	banners   []models.Banner
	reviews   []models.Review
}

func newState() state {
	return state{
		promos:    make(map[string]models.PromoCode),
		coupons:   make(map[uuid.UUID]models.UserCoupon),
		giftCards: make(map[string]models.GiftCard),
		credits:   make(map[string]float64),
		orders:    make(map[uuid.UUID]models.Order),
		stock:     make(map[string]int),
		prices:    make(map[string]float64),
	}
}

// journal накапливает обратные операции транзакции. Откат применяет их
// в обратном порядке и затрагивает только ключи, изменённые транзакцией.
type journal struct {
	undo []func(d *state)
}

func (j *journal) record(fn func(d *state)) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

func (j *journal) rollback(d *state) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](d)
	}
}

func removeEntry(entries []models.StoreCreditEntry, id uuid.UUID) []models.StoreCreditEntry {
	for i := range entries {
		if entries[i].ID == id {
			return append(entries[:i:i], entries[i+1:]...)
		}
	}
	return entries
}

func removeReview(reviews []models.Review, id uuid.UUID) []models.Review {
	for i := range reviews {
		if reviews[i].ID == id {
			return append(reviews[:i:i], reviews[i+1:]...)
		}
	}
	return reviews
}

// Store хранит данные в памяти. Транзакции сериализуются.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
}

var _ store.Store = (*Store)(nil)

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{data: newState()}
}

// SetStock задаёт складской остаток товара.
func (s *Store) SetStock(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[productID] = qty
}

// SetPrice задаёт каталожную цену товара.
func (s *Store) SetPrice(productID string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.prices[productID] = price
}

// AddBanner добавляет баннер.
func (s *Store) AddBanner(b models.Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.banners = append(s.data.banners, b)
}

// Ping всегда успешен.
func (s *Store) Ping(context.Context) error { return nil }

// InTx выполняет fn, откатывая изменения при ошибке. Транзакции
// сериализуются, записи вне транзакции при откате не теряются.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txStore{Store: s, j: &journal{}}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		tx.j.rollback(&s.data)
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore — хранилище внутри транзакции; вложенные InTx выполняются в ней же.
// Изменяющие методы пишут обратные операции в журнал.
type txStore struct {
	*Store
	j *journal
}

func (t *txStore) InTx(_ context.Context, fn func(tx store.Store) error) error {
	return fn(t)
}

func (t *txStore) CreatePromo(_ context.Context, p *models.PromoCode) error {
	return t.createPromo(t.j, p)
}

func (t *txStore) UpdatePromo(_ context.Context, p *models.PromoCode) error {
	return t.updatePromo(t.j, p)
}

func (t *txStore) DeletePromo(_ context.Context, code string) error {
	return t.deletePromo(t.j, code)
}

func (t *txStore) IncrementPromoUsage(_ context.Context, code string) error {
	return t.incrementPromoUsage(t.j, code)
}

func (t *txStore) CreateCoupon(_ context.Context, c *models.UserCoupon) error {
	return t.createCoupon(t.j, c)
}

func (t *txStore) IncrementCouponUsage(_ context.Context, id uuid.UUID) error {
	return t.incrementCouponUsage(t.j, id)
}

func (t *txStore) CreateGiftCard(_ context.Context, g *models.GiftCard) error {
	return t.createGiftCard(t.j, g)
}

func (t *txStore) DebitGiftCard(_ context.Context, code string, amount float64, now time.Time) (float64, error) {
	return t.debitGiftCard(t.j, code, amount, now)
}

func (t *txStore) ClaimGiftCard(_ context.Context, code, userID string) error {
	return t.claimGiftCard(t.j, code, userID)
}

func (t *txStore) AddCredit(_ context.Context, entry *models.StoreCreditEntry) (float64, error) {
	return t.addCredit(t.j, entry)
}

func (t *txStore) SpendCredit(_ context.Context, entry *models.StoreCreditEntry) (float64, error) {
	return t.spendCredit(t.j, entry)
}

func (t *txStore) CreateOrder(_ context.Context, o *models.Order) error {
	return t.createOrder(t.j, o)
}

func (t *txStore) UpdateOrderPayment(_ context.Context, id uuid.UUID, paymentIntentID string, status models.OrderStatus) error {
	return t.updateOrderPayment(t.j, id, paymentIntentID, status)
}

func (t *txStore) ReserveStock(_ context.Context, productID string, qty int) error {
	return t.reserveStock(t.j, productID, qty)
}

func (t *txStore) CreateReview(_ context.Context, r *models.Review) error {
	return t.createReview(t.j, r)
}

// Promo

func (s *Store) CreatePromo(_ context.Context, p *models.PromoCode) error {
	return s.createPromo(nil, p)
}

func (s *Store) createPromo(j *journal, p *models.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.promos[p.Code]; ok {
		return apperror.Conflict("promo code already exists", nil)
	}
	cp := *p
	cp.UsedCount = 0
	s.data.promos[p.Code] = cp
	j.record(func(d *state) { delete(d.promos, cp.Code) })
	return nil
}

func (s *Store) GetPromo(_ context.Context, code string) (*models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.promos[code]
	if !ok {
		return nil, apperror.NotFound("promo code not found", nil)
	}
	return &p, nil
}

func (s *Store) ListPromos(_ context.Context, limit, offset int) ([]*models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*models.PromoCode, 0, len(s.data.promos))
	for _, p := range s.data.promos {
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Code < all[j].Code
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), nil
}

func (s *Store) UpdatePromo(_ context.Context, p *models.PromoCode) error {
	return s.updatePromo(nil, p)
}

func (s *Store) updatePromo(j *journal, p *models.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data.promos[p.Code]
	if !ok {
		return apperror.NotFound("promo code not found", nil)
	}
	upd := *p
	upd.UsedCount = cur.UsedCount
	upd.CreatedAt = cur.CreatedAt
	s.data.promos[p.Code] = upd
	j.record(func(d *state) { d.promos[cur.Code] = cur })
	return nil
}

func (s *Store) DeletePromo(_ context.Context, code string) error {
	return s.deletePromo(nil, code)
}

func (s *Store) deletePromo(j *journal, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data.promos[code]
	if !ok {
		return apperror.NotFound("promo code not found", nil)
	}
	delete(s.data.promos, code)
	j.record(func(d *state) { d.promos[code] = cur })
	return nil
}

func (s *Store) IncrementPromoUsage(_ context.Context, code string) error {
	return s.incrementPromoUsage(nil, code)
}

func (s *Store) incrementPromoUsage(j *journal, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.promos[code]
	if !ok || !p.Active || (p.MaxUses > 0 && p.UsedCount >= p.MaxUses) {
		return apperror.Conflict("promo code usage limit reached", nil)
	}
	p.UsedCount++
	p.UpdatedAt = time.Now()
	s.data.promos[code] = p
	j.record(func(d *state) {
		if cur, ok := d.promos[code]; ok && cur.UsedCount > 0 {
			cur.UsedCount--
			d.promos[code] = cur
		}
	})
	return nil
}

// Coupon

func (s *Store) CreateCoupon(_ context.Context, c *models.UserCoupon) error {
	return s.createCoupon(nil, c)
}

func (s *Store) createCoupon(j *journal, c *models.UserCoupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.coupons {
		if existing.UserID == c.UserID && existing.Code == c.Code {
			return apperror.Conflict("coupon already assigned to user", nil)
		}
	}
	s.data.coupons[c.ID] = *c
	id := c.ID
	j.record(func(d *state) { delete(d.coupons, id) })
	return nil
}

func (s *Store) GetCoupon(_ context.Context, id uuid.UUID) (*models.UserCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.coupons[id]
	if !ok {
		return nil, apperror.NotFound("coupon not found", nil)
	}
	return &c, nil
}

func (s *Store) ListCouponsForUser(_ context.Context, userID string) ([]*models.UserCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.UserCoupon, 0)
	for _, c := range s.data.coupons {
		if c.UserID == userID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) IncrementCouponUsage(_ context.Context, id uuid.UUID) error {
	return s.incrementCouponUsage(nil, id)
}

func (s *Store) incrementCouponUsage(j *journal, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.coupons[id]
	if !ok || c.UsedCount >= c.MaxUses {
		return apperror.Conflict("coupon usage limit reached", nil)
	}
	c.UsedCount++
	s.data.coupons[id] = c
	j.record(func(d *state) {
		if cur, ok := d.coupons[id]; ok && cur.UsedCount > 0 {
			cur.UsedCount--
			d.coupons[id] = cur
		}
	})
	return nil
}

// Gift cards

func (s *Store) CreateGiftCard(_ context.Context, g *models.GiftCard) error {
	return s.createGiftCard(nil, g)
}

func (s *Store) createGiftCard(j *journal, g *models.GiftCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.giftCards[g.Code]; ok {
		return apperror.Conflict("gift card code already exists", nil)
	}
	s.data.giftCards[g.Code] = *g
	code := g.Code
	j.record(func(d *state) { delete(d.giftCards, code) })
	return nil
}

func (s *Store) GetGiftCard(_ context.Context, code string) (*models.GiftCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.data.giftCards[code]
	if !ok {
		return nil, apperror.NotFound("gift card not found", nil)
	}
	return &g, nil
}

func (s *Store) DebitGiftCard(_ context.Context, code string, amount float64, now time.Time) (float64, error) {
	return s.debitGiftCard(nil, code, amount, now)
}

func (s *Store) debitGiftCard(j *journal, code string, amount float64, now time.Time) (float64, error) {
	if amount <= 0 {
		return 0, apperror.Validation("debit amount must be positive", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.data.giftCards[code]
	if !ok || g.Balance < amount || (g.ExpiresAt != nil && !g.ExpiresAt.After(now)) {
		return 0, apperror.Conflict("insufficient gift card balance or card expired", nil)
	}
	g.Balance -= amount
	g.UpdatedAt = now
	s.data.giftCards[code] = g
	j.record(func(d *state) {
		if cur, ok := d.giftCards[code]; ok {
			cur.Balance += amount
			d.giftCards[code] = cur
		}
	})
	return g.Balance, nil
}

func (s *Store) ClaimGiftCard(_ context.Context, code, userID string) error {
	return s.claimGiftCard(nil, code, userID)
}

func (s *Store) claimGiftCard(j *journal, code, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.data.giftCards[code]
	if !ok || (g.OwnerUserID != nil && *g.OwnerUserID != userID) {
		return apperror.Conflict("gift card belongs to another user", nil)
	}
	prev := g.OwnerUserID
	owner := userID
	g.OwnerUserID = &owner
	s.data.giftCards[code] = g
	j.record(func(d *state) {
		if cur, ok := d.giftCards[code]; ok {
			cur.OwnerUserID = prev
			d.giftCards[code] = cur
		}
	})
	return nil
}

// Store credit

func (s *Store) AddCredit(_ context.Context, entry *models.StoreCreditEntry) (float64, error) {
	return s.addCredit(nil, entry)
}

func (s *Store) addCredit(j *journal, entry *models.StoreCreditEntry) (float64, error) {
	if entry.Amount <= 0 {
		return 0, apperror.Validation("credit amount must be positive", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries = append(s.data.entries, *entry)
	s.data.credits[entry.UserID] += entry.Amount
	e := *entry
	j.record(func(d *state) {
		d.credits[e.UserID] -= e.Amount
		d.entries = removeEntry(d.entries, e.ID)
	})
	return s.data.credits[entry.UserID], nil
}

func (s *Store) GetCreditBalance(_ context.Context, userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.credits[userID], nil
}

func (s *Store) ListCreditEntries(_ context.Context, userID string, limit int) ([]models.StoreCreditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StoreCreditEntry, 0)
	for i := len(s.data.entries) - 1; i >= 0; i-- {
		if s.data.entries[i].UserID == userID {
			out = append(out, s.data.entries[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SpendCredit(_ context.Context, entry *models.StoreCreditEntry) (float64, error) {
	return s.spendCredit(nil, entry)
}

func (s *Store) spendCredit(j *journal, entry *models.StoreCreditEntry) (float64, error) {
	spend := -entry.Amount
	if spend <= 0 {
		return 0, apperror.Validation("spend amount must be positive", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.credits[entry.UserID] < spend {
		return 0, apperror.Conflict("insufficient store credit", nil)
	}
	s.data.credits[entry.UserID] -= spend
	s.data.entries = append(s.data.entries, *entry)
	e := *entry
	j.record(func(d *state) {
		d.credits[e.UserID] += spend
		d.entries = removeEntry(d.entries, e.ID)
	})
	return s.data.credits[entry.UserID], nil
}

// Orders

func (s *Store) CreateOrder(_ context.Context, o *models.Order) error {
	return s.createOrder(nil, o)
}

func (s *Store) createOrder(j *journal, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.orders[o.ID]; ok {
		return apperror.Conflict("order already exists", nil)
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	s.data.orders[o.ID] = cp
	j.record(func(d *state) { delete(d.orders, cp.ID) })
	return nil
}

func (s *Store) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return nil, apperror.NotFound("order not found", nil)
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s *Store) ShippingTypeCounts(_ context.Context, userID string) (map[models.ShippingType]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.ShippingType]int)
	for _, o := range s.data.orders {
		if o.UserID == userID && o.Status != models.OrderStatusCancelled {
			counts[o.ShippingType]++
		}
	}
	return counts, nil
}

func (s *Store) UpdateOrderPayment(_ context.Context, id uuid.UUID, paymentIntentID string, status models.OrderStatus) error {
	return s.updateOrderPayment(nil, id, paymentIntentID, status)
}

func (s *Store) updateOrderPayment(j *journal, id uuid.UUID, paymentIntentID string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return apperror.NotFound("order not found", nil)
	}
	prev := o
	j.record(func(d *state) {
		if cur, ok := d.orders[id]; ok {
			cur.PaymentIntentID = prev.PaymentIntentID
			cur.Status = prev.Status
			cur.UpdatedAt = prev.UpdatedAt
			d.orders[id] = cur
		}
	})
	o.PaymentIntentID = &paymentIntentID
	o.Status = status
	o.UpdatedAt = time.Now()
	s.data.orders[id] = o
	return nil
}

// Inventory

func (s *Store) GetStock(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.data.stock[productID]
	if !ok {
		return 0, apperror.NotFound("product not found", nil)
	}
	return qty, nil
}

func (s *Store) GetPrices(_ context.Context, productIDs []string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prices := make(map[string]float64, len(productIDs))
	for _, id := range productIDs {
		if p, ok := s.data.prices[id]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}

func (s *Store) ReserveStock(_ context.Context, productID string, qty int) error {
	return s.reserveStock(nil, productID, qty)
}

func (s *Store) reserveStock(j *journal, productID string, qty int) error {
	if qty <= 0 {
		return apperror.Validation("quantity must be positive", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.stock[productID] < qty {
		return apperror.Conflict(fmt.Sprintf("insufficient stock for product %s", productID), nil)
	}
	s.data.stock[productID] -= qty
	j.record(func(d *state) { d.stock[productID] += qty })
	return nil
}

// Banners

func (s *Store) ListBanners(_ context.Context, position models.BannerPosition, now time.Time) ([]models.Banner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Banner, 0)
	for _, b := range s.data.banners {
		if !b.Active || (position != "" && b.Position != position) {
			continue
		}
		if b.StartsAt != nil && b.StartsAt.After(now) {
			continue
		}
		if b.EndsAt != nil && !b.EndsAt.After(now) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

// Reviews

func (s *Store) CreateReview(_ context.Context, r *models.Review) error {
	return s.createReview(nil, r)
}

func (s *Store) createReview(j *journal, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return apperror.Conflict("review already exists", nil)
		}
	}
	s.data.reviews = append(s.data.reviews, *r)
	id := r.ID
	j.record(func(d *state) { d.reviews = removeReview(d.reviews, id) })
	return nil
}

func (s *Store) ListReviews(_ context.Context, productID string, limit int) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Review, 0)
	for i := len(s.data.reviews) - 1; i >= 0; i-- {
		if s.data.reviews[i].ProductID == productID {
			out = append(out, s.data.reviews[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
