package postgres

import (
	"context"
	"fmt"
)

// schema создаёт таблицы, если их ещё нет.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS promo_codes (
		code TEXT PRIMARY KEY,
		discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (discount_percent BETWEEN 0 AND 100),
		discount_fixed NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (discount_fixed >= 0),
		min_order NUMERIC(12,2) NOT NULL DEFAULT 0,
		valid_from TIMESTAMPTZ,
		valid_until TIMESTAMPTZ,
		max_uses INTEGER NOT NULL DEFAULT 0,
		used_count INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (valid_from IS NULL OR valid_until IS NULL OR valid_from <= valid_until)
	)`,
	`CREATE TABLE IF NOT EXISTS user_coupons (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		code TEXT NOT NULL,
		type TEXT NOT NULL,
		value NUMERIC(12,2) NOT NULL DEFAULT 0,
		min_order NUMERIC(12,2) NOT NULL DEFAULT 0,
		max_uses INTEGER NOT NULL DEFAULT 1,
		used_count INTEGER NOT NULL DEFAULT 0 CHECK (used_count <= max_uses),
		shipping_habit TEXT,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS gift_cards (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		initial_balance NUMERIC(12,2) NOT NULL,
		balance NUMERIC(12,2) NOT NULL CHECK (balance >= 0 AND balance <= initial_balance),
		currency TEXT NOT NULL DEFAULT 'usd',
		owner_user_id TEXT,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS store_credit_entries (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		source TEXT NOT NULL,
		note TEXT,
		order_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS store_credit_balances (
		user_id TEXT PRIMARY KEY,
		balance NUMERIC(12,2) NOT NULL CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id TEXT PRIMARY KEY,
		stock INTEGER NOT NULL CHECK (stock >= 0),
		price NUMERIC(12,2) CHECK (price >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		shipping_type TEXT NOT NULL,
		shipping_cost NUMERIC(12,2) NOT NULL,
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		discount_code TEXT,
		gift_card_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		store_credit_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		total NUMERIC(12,2) NOT NULL CHECK (total >= 0),
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		payment_intent_id TEXT,
		estimated_delivery TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS banners (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		image_url TEXT NOT NULL,
		link_url TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		starts_at TIMESTAMPTZ,
		ends_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id UUID PRIMARY KEY,
		product_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (product_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_store_credit_entries_user ON store_credit_entries (user_id, created_at DESC)`,
}

// Migrate создаёт схему базы данных.
func (s *Store) Migrate(ctx context.Context) error {
	return s.atomic(ctx, func(tx *Store) error {
		for i, stmt := range schema {
			if _, err := tx.q().ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
			}
		}
		return nil
	})
}
