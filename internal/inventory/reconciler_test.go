package inventory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/store"
)

var now = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestReconciler(t *testing.T, decoder scanner.Decoder) (*Reconciler, *store.Store) {
	t.Helper()
	s := store.New(store.Config{Now: func() time.Time { return now }, Location: time.UTC})
	s.Seed([]domain.Product{
		{ID: 101, Name: "Cola", SKU: "690123456789", Price: 3.00, Cost: 1.80, Stock: 10, AlertThreshold: 24, Category: domain.CategoryDrinks},
		{ID: 102, Name: "Lighter", SKU: "200102800001", Price: 1.00, Cost: 0.20, Stock: 200, AlertThreshold: 10, Category: domain.CategoryDaily},
		{ID: 103, Name: "Milk", SKU: "690000000001", Price: 4.00, Cost: 2.50, Stock: 12, AlertThreshold: 5, Category: domain.CategoryFresh, ProductionDate: "2024-10-01", ShelfLifeDays: 21},
		{ID: 104, Name: "Bun", SKU: "HOME-001", Price: 2.50, Cost: 0.80, Stock: 20, AlertThreshold: 5, Category: domain.CategoryHomemade, ProductionDate: "2024-10-10", ShelfLifeDays: 3},
	}, nil)
	return NewReconciler(s, scanner.NewDevice(decoder), nil), s
}

func TestRestockIncreasesStockAndRecordsExpense(t *testing.T) {
	r, s := newTestReconciler(t, nil)

	receipt, err := r.Restock(context.Background(), 101, 20, 36.00)
	require.NoError(t, err)

	assert.True(t, receipt.Found)
	assert.Equal(t, 30, receipt.Product.Stock)
	assert.Equal(t, domain.ExpenseRestock, receipt.Expense.Category)
	assert.Equal(t, 36.00, receipt.Expense.Amount)
	assert.Equal(t, "2024-10-15", receipt.Expense.Date)

	p, _ := s.Product(101)
	assert.Equal(t, 30, p.Stock)
}

func TestRestockKeepsEnteredTotal(t *testing.T) {
	r, s := newTestReconciler(t, nil)

	preview, err := r.Preview(101, 20)
	require.NoError(t, err)
	assert.Equal(t, 36.00, preview.SuggestedTotal)
	assert.Equal(t, 30, preview.StockAfter)

	_, err = r.Restock(context.Background(), 101, 20, 30.00)
	require.NoError(t, err)
	assert.Equal(t, 30.00, s.Expenses()[0].Amount)
}

func TestRestockValidation(t *testing.T) {
	r, s := newTestReconciler(t, nil)
	ctx := context.Background()

	_, err := r.Restock(ctx, 101, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = r.Restock(ctx, 101, 5, -1)
	assert.ErrorIs(t, err, ErrInvalidCost)

	_, err = r.Restock(ctx, 101, 5, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidCost)

	assert.Empty(t, s.Expenses())
}

func TestRestockRejectsOversizedQuantity(t *testing.T) {
	r, s := newTestReconciler(t, nil)
	ctx := context.Background()

	for _, qty := range []int{math.MaxInt, domain.MaxQuantity + 1} {
		_, err := r.Restock(ctx, 101, qty, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

		_, err = r.Preview(101, qty)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	p, _ := s.Product(101)
	assert.Equal(t, 10, p.Stock)
	assert.Empty(t, s.Expenses())

	receipt, err := r.Restock(ctx, 101, domain.MaxQuantity, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity+10, receipt.Product.Stock)
}

func TestRestockUnknownProduct(t *testing.T) {
	r, s := newTestReconciler(t, nil)

	receipt, err := r.Restock(context.Background(), 999, 5, 10)
	require.NoError(t, err)
	assert.False(t, receipt.Found)
	assert.Len(t, s.Expenses(), 1)

	_, err = r.Preview(999, 5)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLowStock(t *testing.T) {
	r, _ := newTestReconciler(t, nil)

	low := r.LowStock()
	require.Len(t, low, 1)
	assert.Equal(t, int64(101), low[0].ID)
}

func TestScanAtReceivingDesk(t *testing.T) {
	r, _ := newTestReconciler(t, scanner.NewScriptedDecoder("HOME-001", "NEW-CODE", ""))
	ctx := context.Background()

	res, err := r.Scan(ctx, nil)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, int64(104), res.Product.ID)

	res, err = r.Scan(ctx, nil)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, "NEW-CODE", res.Code)

	res, err = r.Scan(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ScanResult{}, res)
}
