package command

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// ImportLine is one line of a manually entered order. Catalog lines take
// name, cost and SKU from the product and may override its price; lines
// without a product need a name and a positive price.
type ImportLine struct {
	ProductID int64
	Name      string
	Quantity  int
	Price     *float64
}

// ImportOrderCommand records an order captured outside a cart
type ImportOrderCommand struct {
	Lines         []ImportLine
	PaymentMethod string
}

// ImportOrderHandler records manual orders. Stock is decremented with
// clamping at zero; an oversold import is never rejected.
type ImportOrderHandler struct {
	products domain.ProductStore
	orders   domain.OrderStore
}

func NewImportOrderHandler(products domain.ProductStore, orders domain.OrderStore) *ImportOrderHandler {
	return &ImportOrderHandler{products: products, orders: orders}
}

func (h *ImportOrderHandler) Handle(ctx context.Context, cmd ImportOrderCommand) (*domain.Order, error) {
	method := domain.PaymentCash
	if strings.TrimSpace(cmd.PaymentMethod) != "" {
		m, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
		if err != nil {
			return nil, err
		}
		method = m
	}

	items := make([]domain.OrderLineItem, 0, len(cmd.Lines))
	for i, line := range cmd.Lines {
		if err := domain.CheckQuantity(line.Quantity); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if line.Price != nil && !validPrice(*line.Price) {
			return nil, fmt.Errorf("%w: line %d has an invalid price", domain.ErrInvalidProduct, i+1)
		}

		item := domain.OrderLineItem{Quantity: line.Quantity}
		if line.ProductID != 0 {
			p, ok := h.products.Product(line.ProductID)
			if !ok {
				return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, line.ProductID)
			}
			item.ProductID = p.ID
			item.Name = p.Name
			item.Price = p.Price
			item.Cost = p.Cost
			item.SKU = p.SKU
			if line.Price != nil {
				item.Price = *line.Price
			}
		} else {
			if line.Price == nil || *line.Price <= 0 || strings.TrimSpace(line.Name) == "" {
				return nil, fmt.Errorf("%w: line %d needs a name and a positive price", domain.ErrInvalidProduct, i+1)
			}
			item.Name = strings.TrimSpace(line.Name)
			item.Price = *line.Price
			item.SKU = "CUSTOM"
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	order := domain.NewOrder(h.orders.NextID(), h.orders.Now().Location(), items, method)

	if err := h.orders.AddOrder(ctx, order); err != nil {
		return &order, fmt.Errorf("failed to import order: %w", err)
	}
	return &order, nil
}

func validPrice(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
