package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/scanner"
	"github.com/tair/pos-core/internal/store"
	"github.com/tair/pos-core/pkg/logger"
)

var ErrInvalidCost = errors.New("invalid restock cost")

// Store is the part of the record store a restock needs
type Store interface {
	domain.InventoryStore
	ProductBySKU(sku string) (domain.Product, bool)
}

// Preview is the suggested cost of receiving quantity units at the
// product's current unit cost. It is never stored.
type Preview struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	UnitCost       float64 `json:"unit_cost"`
	SuggestedTotal float64 `json:"suggested_total"`
	StockBefore    int     `json:"stock_before"`
	StockAfter     int     `json:"stock_after"`
}

// Reconciler turns received goods into a stock increase plus a restock
// expense
type Reconciler struct {
	store   Store
	scanner *scanner.Device
	haptics scanner.Haptics
}

func NewReconciler(s Store, device *scanner.Device, haptics scanner.Haptics) *Reconciler {
	if device == nil {
		device = scanner.NewDevice(nil)
	}
	if haptics == nil {
		haptics = scanner.LogHaptics{}
	}
	return &Reconciler{store: s, scanner: device, haptics: haptics}
}

// Preview computes quantity times the current unit cost
func (r *Reconciler) Preview(productID int64, quantity int) (Preview, error) {
	if err := domain.CheckQuantity(quantity); err != nil {
		return Preview{}, err
	}
	p, ok := r.store.Product(productID)
	if !ok {
		return Preview{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
	}
	after, err := domain.AddStock(p.Stock, quantity)
	if err != nil {
		return Preview{}, err
	}

	total := decimal.NewFromFloat(p.Cost).Mul(decimal.NewFromInt(int64(quantity)))
	return Preview{
		ProductID:      p.ID,
		Name:           p.Name,
		Quantity:       quantity,
		UnitCost:       p.Cost,
		SuggestedTotal: total.Round(2).InexactFloat64(),
		StockBefore:    p.Stock,
		StockAfter:     after,
	}, nil
}

// Restock records quantity received units at the total cost as entered.
// The expense keeps the entered total even when it differs from the
// preview.
func (r *Reconciler) Restock(ctx context.Context, productID int64, quantity int, totalCost float64) (domain.RestockReceipt, error) {
	if err := domain.CheckQuantity(quantity); err != nil {
		return domain.RestockReceipt{}, err
	}
	if math.IsNaN(totalCost) || math.IsInf(totalCost, 0) || totalCost < 0 {
		return domain.RestockReceipt{}, fmt.Errorf("%w: %v", ErrInvalidCost, totalCost)
	}

	receipt, err := r.store.Restock(ctx, productID, quantity, totalCost)
	if err != nil && !errors.Is(err, store.ErrMirror) {
		return domain.RestockReceipt{}, fmt.Errorf("failed to restock product %d: %w", productID, err)
	}

	restocksTotal.Inc()
	restockedUnits.Add(float64(quantity))
	logger.Info(ctx).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Float64("total_cost", totalCost).
		Bool("found", receipt.Found).
		Int("stock", receipt.Product.Stock).
		Msg("Stock received")
	return receipt, err
}

// ScanResult is the outcome of scanning a code at the receiving desk. An
// unknown code means the operator should create the product first.
type ScanResult struct {
	Code    string          `json:"code,omitempty"`
	Found   bool            `json:"found"`
	Product *domain.Product `json:"product,omitempty"`
}

// Scan decodes one frame and looks the code up in the catalog
func (r *Reconciler) Scan(ctx context.Context, frame []byte) (ScanResult, error) {
	session, err := r.scanner.Open(ctx)
	if err != nil {
		return ScanResult{}, err
	}
	defer session.Close()

	code, err := session.Decode(ctx, frame)
	if errors.Is(err, scanner.ErrNoMatch) {
		return ScanResult{}, nil
	}
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to decode frame: %w", err)
	}

	p, ok := r.store.ProductBySKU(code)
	if !ok {
		r.haptics.Vibrate(ctx, scanner.FailurePattern...)
		return ScanResult{Code: code}, nil
	}
	r.haptics.Vibrate(ctx, scanner.SuccessPattern...)
	return ScanResult{Code: code, Found: true, Product: &p}, nil
}

// LowStock lists products below their alert threshold in catalog order
func (r *Reconciler) LowStock() []domain.Product {
	out := []domain.Product{}
	for _, p := range r.store.Products() {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}
