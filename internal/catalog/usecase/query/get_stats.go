package query

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tair/pos-core/internal/domain"
)

// GetStatsQuery represents the query to get catalog statistics
type GetStatsQuery struct{}

// CatalogStats represents catalog statistics
type CatalogStats struct {
	TotalProducts  int            `json:"total_products"`
	TotalStock     int            `json:"total_stock"`
	StockCostValue float64        `json:"stock_cost_value"`
	RetailValue    float64        `json:"retail_value"`
	LowStockCount  int            `json:"low_stock_count"`
	Categories     map[string]int `json:"categories"`
	CategoryOrder  []string       `json:"category_order"`
}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	store domain.ProductStore
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(store domain.ProductStore) *GetStatsHandler {
	return &GetStatsHandler{store: store}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(query GetStatsQuery) (*CatalogStats, error) {
	products := h.store.Products()

	stats := &CatalogStats{
		TotalProducts: len(products),
		Categories:    make(map[string]int),
	}
	costValue, retailValue := decimal.Zero, decimal.Zero
	for _, p := range products {
		stock := decimal.NewFromInt(int64(p.Stock))
		stats.TotalStock += p.Stock
		costValue = costValue.Add(decimal.NewFromFloat(p.Cost).Mul(stock))
		retailValue = retailValue.Add(decimal.NewFromFloat(p.Price).Mul(stock))
		if p.IsLowStock() {
			stats.LowStockCount++
		}
		stats.Categories[string(p.Category)]++
	}
	stats.StockCostValue = costValue.InexactFloat64()
	stats.RetailValue = retailValue.InexactFloat64()

	for c := range stats.Categories {
		stats.CategoryOrder = append(stats.CategoryOrder, c)
	}
	sort.Strings(stats.CategoryOrder)
	return stats, nil
}
