package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGiftCardService(t *testing.T) *GiftCardService {
	t.Helper()
	svc := NewGiftCardService(memory.New(), nil, newTestLogger(), "usd")
	svc.now = fixedClock
	return svc
}

func TestGiftCardService_Validate(t *testing.T) {
	svc := newTestGiftCardService(t)

	res := svc.Validate("en", &models.ValidateGiftCardRequest{Code: "GIFT-2025-ABCD", Amount: 50})
	assert.True(t, res.Valid)

	res = svc.Validate("en", &models.ValidateGiftCardRequest{Code: "short", Amount: 1000})
	assert.False(t, res.Valid)
	assert.False(t, res.Code.Valid)
	assert.Equal(t, "Gift card amount must be between $5 and $500", res.Amount.Message)
}

func TestGiftCardService_Issue(t *testing.T) {
	svc := newTestGiftCardService(t)
	ctx := context.Background()

	card, err := svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "gift-0001-x", Amount: 25})
	require.NoError(t, err)
	assert.Equal(t, "GIFT-0001-X", card.Code)
	assert.Equal(t, 25.0, card.Balance)
	assert.Equal(t, "USD", card.Currency)

	_, err = svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT-0001-X", Amount: 25})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT-0002-X", Amount: 4.99})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT 0003", Amount: 10})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestGiftCardService_Redeem(t *testing.T) {
	svc := newTestGiftCardService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT-REDEEM-1", Amount: 50})
	require.NoError(t, err)

	card, err := svc.Redeem(ctx, "en", "gift-redeem-1", &models.RedeemGiftCardRequest{UserID: "u1", Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, 30.0, card.Balance)
	require.NotNil(t, card.OwnerUserID)
	assert.Equal(t, "u1", *card.OwnerUserID)

	_, err = svc.Redeem(ctx, "en", "GIFT-REDEEM-1", &models.RedeemGiftCardRequest{UserID: "u2", Amount: 5})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Redeem(ctx, "en", "GIFT-REDEEM-1", &models.RedeemGiftCardRequest{UserID: "u1", Amount: 31})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Redeem(ctx, "en", "GIFT-REDEEM-1", &models.RedeemGiftCardRequest{UserID: "u1", Amount: 0})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	card, err = svc.Check(ctx, "GIFT-REDEEM-1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, card.Balance)
}

func TestGiftCardService_ConcurrentRedeemNeverOverdraws(t *testing.T) {
	svc := newTestGiftCardService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT-RACE-0001", Amount: 100})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	start := make(chan struct{})
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Redeem(ctx, "en", "GIFT-RACE-0001", &models.RedeemGiftCardRequest{UserID: "u1", Amount: 30})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case apperror.Is(err, apperror.KindConflict):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(3), succeeded)
	assert.Equal(t, int32(17), conflicts)

	card, err := svc.Check(ctx, "GIFT-RACE-0001")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, card.Balance, 0.001)
	require.NotNil(t, card.OwnerUserID)
	assert.Equal(t, "u1", *card.OwnerUserID)
}

func TestGiftCardService_RedeemExpired(t *testing.T) {
	svc := newTestGiftCardService(t)
	ctx := context.Background()
	expires := testNow.Add(-time.Hour)

	_, err := svc.Issue(ctx, "en", &models.IssueGiftCardRequest{Code: "GIFT-OLD-0001", Amount: 50, ExpiresAt: &expires})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, "en", "GIFT-OLD-0001", &models.RedeemGiftCardRequest{Amount: 10})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestGiftCardService_CheckMissing(t *testing.T) {
	svc := newTestGiftCardService(t)
	_, err := svc.Check(context.Background(), "GIFT-NONE-0001")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Check(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}
