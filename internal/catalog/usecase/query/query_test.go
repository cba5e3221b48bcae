package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	now := time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)
	s := store.New(store.Config{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	})
	s.Seed(store.DemoProducts(), store.DemoExpenses())
	return s
}

func TestListProducts(t *testing.T) {
	h := NewListProductsHandler(newStore(t))

	tests := []struct {
		name  string
		query ListProductsQuery
		ids   []int64
		total int
	}{
		{name: "all", query: ListProductsQuery{}, total: 7},
		{name: "name search", query: ListProductsQuery{Search: "COLA"}, ids: []int64{101}, total: 1},
		{name: "sku search", query: ListProductsQuery{Search: "6901234567"}, ids: []int64{101, 102}, total: 2},
		{name: "category", query: ListProductsQuery{Category: "drinks"}, ids: []int64{101, 102}, total: 2},
		{name: "category all", query: ListProductsQuery{Category: "all", Limit: 1}, ids: []int64{10}, total: 7},
		{name: "low stock", query: ListProductsQuery{LowStock: true}, ids: []int64{102, 201}, total: 2},
		{name: "paged", query: ListProductsQuery{Limit: 2, Offset: 1}, ids: []int64{12, 101}, total: 7},
		{name: "offset past end", query: ListProductsQuery{Offset: 50}, ids: []int64{}, total: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := h.Handle(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.total, page.Total)
			if tt.ids == nil {
				return
			}
			ids := make([]int64, 0, len(page.Items))
			for _, p := range page.Items {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}

	_, err := h.Handle(ListProductsQuery{Category: "weapons"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestGetAndLookupProduct(t *testing.T) {
	s := newStore(t)

	p, err := NewGetProductHandler(s).Handle(GetProductQuery{ID: 201})
	require.NoError(t, err)
	assert.Equal(t, "Potato Chips Original", p.Name)

	_, err = NewGetProductHandler(s).Handle(GetProductQuery{ID: 5})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	p, err = NewLookupProductHandler(s).Handle(LookupProductQuery{Code: " 200102800001\n"})
	require.NoError(t, err)
	assert.Equal(t, int64(401), p.ID)

	_, err = NewLookupProductHandler(s).Handle(LookupProductQuery{Code: "000"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetStats(t *testing.T) {
	stats, err := NewGetStatsHandler(newStore(t)).Handle(GetStatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 7, stats.TotalProducts)
	assert.Equal(t, 437, stats.TotalStock)
	assert.Equal(t, 2, stats.LowStockCount)
	assert.Equal(t, 2, stats.Categories["drinks"])
	assert.Equal(t, []string{"daily", "drinks", "fresh", "homemade", "snacks", "tobacco"}, stats.CategoryOrder)
	// 50*4 + 20*0.8 + 142*1.8 + 8*0.8 + 12*4.5 + 5*38 + 200*0.2
	assert.InDelta(t, 762.0, stats.StockCostValue, 1e-9)
}

func TestOrders(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	day := time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC).UnixMilli()
	orders := []domain.Order{
		{ID: "#000001", Timestamp: day, Amount: 3, PaymentMethod: domain.PaymentCash, Status: domain.OrderPaid},
		{ID: "#000002", Timestamp: day + 1000, Amount: 6, PaymentMethod: domain.PaymentWeChat, Status: domain.OrderPaid},
		{ID: "#000003", Timestamp: s.Now().UnixMilli(), Amount: 9, PaymentMethod: domain.PaymentCash, Status: domain.OrderPaid},
	}
	for _, o := range orders {
		require.NoError(t, s.AddOrder(ctx, o))
	}

	page, err := NewListOrdersHandler(s).Handle(ListOrdersQuery{Date: "2024-10-14"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "#000002", page.Items[0].ID)

	page, err = NewListOrdersHandler(s).Handle(ListOrdersQuery{PaymentMethod: "cash", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "#000003", page.Items[0].ID)

	_, err = NewListOrdersHandler(s).Handle(ListOrdersQuery{Date: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	o, err := NewGetOrderHandler(s).Handle(GetOrderQuery{ID: "000002"})
	require.NoError(t, err)
	assert.Equal(t, 6.0, o.Amount)

	_, err = NewGetOrderHandler(s).Handle(GetOrderQuery{ID: "#999999"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListExpenses(t *testing.T) {
	h := NewListExpensesHandler(newStore(t))

	all, err := h.Handle(ListExpensesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	utilities, err := h.Handle(ListExpensesQuery{Category: "utilities"})
	require.NoError(t, err)
	require.Len(t, utilities, 1)
	assert.Equal(t, int64(1), utilities[0].ID)

	ranged, err := h.Handle(ListExpensesQuery{From: "2023-10-02", To: "2023-10-31"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, int64(2), ranged[0].ID)

	_, err = h.Handle(ListExpensesQuery{From: "10/02"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
