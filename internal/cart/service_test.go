package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/store"
)

type recordedHaptics struct {
	mu       sync.Mutex
	patterns [][]time.Duration
}

func (h *recordedHaptics) Vibrate(_ context.Context, pattern ...time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.patterns = append(h.patterns, pattern)
}

type failingMirror struct{}

func (failingMirror) Name() string                                       { return "broken" }
func (failingMirror) UpsertProduct(context.Context, domain.Product) error { return errors.New("down") }
func (failingMirror) DeleteProduct(context.Context, int64) error          { return errors.New("down") }
func (failingMirror) InsertOrder(context.Context, domain.Order) error     { return errors.New("down") }
func (failingMirror) InsertExpense(context.Context, domain.Expense) error { return errors.New("down") }
func (failingMirror) DeleteExpense(context.Context, int64) error          { return errors.New("down") }

var checkoutTime = time.Date(2024, 10, 15, 9, 5, 0, 0, time.UTC)

func newTestService(t *testing.T, decoder scanner.Decoder, mirrors ...store.Mirror) (*Service, *store.Store, *recordedHaptics) {
	t.Helper()
	s := store.New(store.Config{
		Mirrors:  mirrors,
		Now:      func() time.Time { return checkoutTime },
		Location: time.UTC,
	})
	s.Seed([]domain.Product{
		{ID: 101, Name: "Cola", SKU: "690123456789", Price: 3.00, Cost: 1.80, Stock: 10, AlertThreshold: 5, Category: domain.CategoryDrinks},
		{ID: 102, Name: "Water", SKU: "690123456790", Price: 2.00, Cost: 0.80, Stock: 1, AlertThreshold: 5, Category: domain.CategoryDrinks},
	}, nil)

	h := &recordedHaptics{}
	return NewService(s, scanner.NewDevice(decoder), h), s, h
}

func TestCommitRecordsOrderAndDecrementsStock(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")

	_, err := svc.AddProduct(ctx, view.ID, 101, 4)
	require.NoError(t, err)

	order, err := svc.Commit(ctx, view.ID, domain.PaymentCash)
	require.NoError(t, err)

	assert.Equal(t, 12.00, order.Amount)
	require.NotNil(t, order.Profit)
	assert.InDelta(t, 4.80, *order.Profit, 1e-9)
	assert.Equal(t, 4, order.ItemCount)
	assert.Equal(t, domain.OrderPaid, order.Status)
	assert.Equal(t, "09:05", order.Time)
	assert.Equal(t, checkoutTime.UnixMilli(), order.Timestamp)
	assert.Len(t, order.ID, 7)
	assert.Equal(t, byte('#'), order.ID[0])

	p, _ := s.Product(101)
	assert.Equal(t, 6, p.Stock)

	after, err := svc.Get(view.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Lines)
}

func TestCommitCustomLineLeavesStockAlone(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")

	view, err := svc.AddCustom(ctx, view.ID, "Gift bag", 5.00)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, view.ID, view.Lines[0].Key, 1)
	require.NoError(t, err)

	order, err := svc.Commit(ctx, view.ID, domain.PaymentWeChat)
	require.NoError(t, err)

	assert.Equal(t, 10.00, order.Amount)
	assert.InDelta(t, 10.00, *order.Profit, 1e-9)
	assert.Equal(t, int64(0), order.Items[0].ProductID)

	for _, p := range s.Products() {
		if p.ID == 101 {
			assert.Equal(t, 10, p.Stock)
		}
	}
}

func TestCommitRejectsEmptyCartAndBadMethod(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")

	_, err := svc.Commit(ctx, view.ID, domain.PaymentCash)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Commit(ctx, view.ID, domain.PaymentMethod("card"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	_, err = svc.Commit(ctx, uuid.New(), domain.PaymentCash)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestCommitRevalidatesStockAcrossCarts(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()
	first := svc.Open(ctx, "cashier")
	second := svc.Open(ctx, "admin")

	_, err := svc.AddProduct(ctx, first.ID, 102, 1)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, second.ID, 102, 1)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, first.ID, domain.PaymentCash)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, second.ID, domain.PaymentCash)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	kept, err := svc.Get(second.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Lines, 1, "a rejected cart keeps its lines")
	assert.Len(t, s.Orders(), 1)
}

func TestCommitWithMirrorFailureStillClearsCart(t *testing.T) {
	svc, s, _ := newTestService(t, nil, failingMirror{})
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")
	_, err := svc.AddProduct(ctx, view.ID, 101, 1)
	require.NoError(t, err)

	order, err := svc.Commit(ctx, view.ID, domain.PaymentAlipay)
	require.ErrorIs(t, err, store.ErrMirror)
	assert.NotEmpty(t, order.ID)
	assert.Len(t, s.Orders(), 1)

	after, err := svc.Get(view.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Lines)
}

func TestSetQuantityUsesCurrentStock(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")
	_, err := svc.AddProduct(ctx, view.ID, 101, 2)
	require.NoError(t, err)

	require.NoError(t, s.AddOrder(ctx, domain.Order{ID: "#import", Items: []domain.OrderLineItem{{ProductID: 101, Quantity: 8}}}))

	_, err = svc.SetQuantity(ctx, view.ID, LineKey(101), 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestScanMatchesProductAndVibrates(t *testing.T) {
	svc, _, haptics := newTestService(t, scanner.NewScriptedDecoder("690123456789", "", "000000"))
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")

	result, cartView, err := svc.Scan(ctx, view.ID, []byte("frame-1"))
	require.NoError(t, err)
	assert.True(t, result.Matched)
	require.NotNil(t, result.Line)
	assert.Equal(t, int64(101), result.Line.ProductID)
	assert.Len(t, cartView.Lines, 1)

	result, _, err = svc.Scan(ctx, view.ID, []byte("frame-2"))
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, result.Code)

	result, _, err = svc.Scan(ctx, view.ID, []byte("frame-3"))
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, "000000", result.Code)

	assert.Equal(t, [][]time.Duration{scanner.SuccessPattern, scanner.FailurePattern}, haptics.patterns)
}

func TestDiscard(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	view := svc.Open(ctx, "cashier")

	require.NoError(t, svc.Discard(ctx, view.ID))
	assert.ErrorIs(t, svc.Discard(ctx, view.ID), ErrCartNotFound)
	_, err := svc.Get(view.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}
