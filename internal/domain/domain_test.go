package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductValidate(t *testing.T) {
	valid := Product{Name: "Cola 330ml", Price: 3, Cost: 1.8, Stock: 10, AlertThreshold: 5, Category: CategoryDrinks}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *Product)
		want   error
	}{
		{"missing name", func(p *Product) { p.Name = " " }, ErrInvalidProduct},
		{"negative price", func(p *Product) { p.Price = -1 }, ErrInvalidProduct},
		{"negative cost", func(p *Product) { p.Cost = -0.5 }, ErrInvalidProduct},
		{"negative stock", func(p *Product) { p.Stock = -1 }, ErrInvalidProduct},
		{"unknown category", func(p *Product) { p.Category = "weapons" }, ErrInvalidCategory},
		{"bad production date", func(p *Product) { p.ProductionDate = "10/01/2024" }, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tt.want)
		})
	}
}

func TestParseCategoryNormalizes(t *testing.T) {
	c, err := ParseCategory(" Fresh ")
	require.NoError(t, err)
	assert.Equal(t, CategoryFresh, c)
}

func TestLineTotals(t *testing.T) {
	items := []OrderLineItem{
		{ProductID: 1, Quantity: 4, Price: 3.00, Cost: 1.80},
		{Quantity: 2, Price: 5.00, Cost: 0},
	}

	amount, profit := LineTotals(items)
	assert.Equal(t, "22", amount.String())
	assert.Equal(t, "14.8", profit.String())
}

func TestOrderProfitFallsBackToStoredValue(t *testing.T) {
	stored := 9.5
	o := Order{ID: "#123", Profit: &stored}
	assert.Equal(t, "9.5", o.ProfitDecimal().String())

	o.Items = []OrderLineItem{{Quantity: 1, Price: 2, Cost: 1}}
	assert.Equal(t, "1", o.ProfitDecimal().String())
}

func TestOrderDisplayID(t *testing.T) {
	assert.Equal(t, "654321", Order{ID: "#987654321"}.DisplayID())
	assert.Equal(t, "8821", Order{ID: "#8821"}.DisplayID())
}

func TestExpenseValidate(t *testing.T) {
	e := Expense{Name: "Water", Amount: 45, Date: "2024-10-15", Category: ExpenseOther}
	require.NoError(t, e.Validate())

	e.Date = "2024-13-01"
	assert.ErrorIs(t, e.Validate(), ErrInvalidDate)

	e.Date = "2024-10-15"
	e.Category = "travel"
	assert.ErrorIs(t, e.Validate(), ErrInvalidExpense)
}

func TestRestockExpenseName(t *testing.T) {
	assert.Equal(t, "restock: Cola x20", RestockExpenseName("Cola", 20))
	assert.Equal(t, "restock: Unknown x3", RestockExpenseName("", 3))
}

func TestNewOrder(t *testing.T) {
	items := []OrderLineItem{
		{ProductID: 101, Name: "Cola", Price: 3.00, Cost: 1.80, Quantity: 2},
		{Name: "Bag", Price: 0.50, Quantity: 1},
	}
	shanghai := time.FixedZone("CST", 8*3600)

	o := NewOrder(1728983100123, shanghai, items, PaymentCash)
	assert.Equal(t, "#100123", o.ID)
	assert.Equal(t, int64(1728983100123), o.Timestamp)
	assert.Equal(t, "17:05", o.Time)
	assert.Equal(t, 6.50, o.Amount)
	assert.Equal(t, 3, o.ItemCount)
	assert.Equal(t, OrderPaid, o.Status)
	assert.Equal(t, PaymentCash, o.PaymentMethod)
	require.NotNil(t, o.Profit)
	assert.InDelta(t, 2.90, *o.Profit, 1e-9)

	items[0].Quantity = 50
	assert.Equal(t, 2, o.Items[0].Quantity)

	assert.Equal(t, "09:05", NewOrder(1728983100123, time.UTC, items, PaymentCash).Time)
}

func TestAddStockBounds(t *testing.T) {
	stock, err := AddStock(10, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, stock)

	for _, qty := range []int{0, -1, MaxQuantity + 1, math.MaxInt} {
		_, err := AddStock(10, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", qty)
	}

	stock, err = AddStock(math.MaxInt-1, 2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, math.MaxInt-1, stock)
}
