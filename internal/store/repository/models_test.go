package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
)

func TestProductRowMapsBarcodeAndImage(t *testing.T) {
	p := domain.Product{
		ID:             7,
		Name:           "Cola",
		SKU:            "690123456789",
		Price:          3,
		Cost:           1.8,
		Stock:          12,
		AlertThreshold: 5,
		Category:       domain.CategoryDrinks,
		Tags:           []string{"soda"},
		Image:          "https://example.com/cola.png",
	}

	row := toProductRow(p)
	assert.Equal(t, "690123456789", row.Barcode)
	assert.Equal(t, "https://example.com/cola.png", row.ImageURL)
	assert.Equal(t, p, row.toDomain())
}

func TestOrderRowKeepsDetailsAndProfit(t *testing.T) {
	profit := 4.2
	o := domain.Order{
		ID:            "#123456",
		Timestamp:     1728995400000,
		Time:          "14:30",
		Amount:        12,
		ItemCount:     4,
		Status:        domain.OrderPaid,
		PaymentMethod: domain.PaymentCash,
		Profit:        &profit,
		Items:         []domain.OrderLineItem{{ProductID: 101, Name: "Cola", Quantity: 4, Price: 3, Cost: 1.8, SKU: "690123456789"}},
	}

	row, err := toOrderRow(o)
	require.NoError(t, err)
	assert.Equal(t, 12.0, row.TotalAmount)
	assert.Equal(t, int64(1728995400000), row.CreatedAt.UnixMilli())

	back, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, o, back)
}

func TestOrderRowWithoutDetails(t *testing.T) {
	back, err := orderRow{ID: "#legacy", TotalAmount: 9}.toDomain()
	require.NoError(t, err)
	assert.Empty(t, back.Items)
	assert.Equal(t, 9.0, back.Amount)
}
