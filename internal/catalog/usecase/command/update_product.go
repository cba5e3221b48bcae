package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// UpdateProductCommand represents the command to update a product. Nil
// and empty fields keep their current value.
type UpdateProductCommand struct {
	ID             int64
	Name           string
	SKU            string
	Price          *float64
	Cost           *float64
	Stock          *int
	AlertThreshold *int
	Category       string
	Tags           []string
	Image          string
	ProductionDate *string
	ShelfLifeDays  *int
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	store domain.ProductStore
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(store domain.ProductStore) *UpdateProductHandler {
	return &UpdateProductHandler{store: store}
}

// Handle executes the update product command. An unknown product is a
// no-op and returns a nil product.
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	product, ok := h.store.Product(cmd.ID)
	if !ok {
		return nil, nil
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		product.Name = name
	}
	if sku := strings.TrimSpace(cmd.SKU); sku != "" && sku != product.SKU {
		if existing, taken := h.store.ProductBySKU(sku); taken && existing.ID != cmd.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
		}
		product.SKU = sku
	}
	if cmd.Price != nil {
		product.Price = *cmd.Price
	}
	if cmd.Cost != nil {
		product.Cost = *cmd.Cost
	}
	if cmd.Stock != nil {
		product.Stock = *cmd.Stock
	}
	if cmd.AlertThreshold != nil {
		product.AlertThreshold = *cmd.AlertThreshold
	}
	if cmd.Category != "" {
		c, err := domain.ParseCategory(cmd.Category)
		if err != nil {
			return nil, err
		}
		product.Category = c
	}
	if cmd.Tags != nil {
		product.Tags = normalizeTags(cmd.Tags)
	}
	if image := strings.TrimSpace(cmd.Image); image != "" {
		product.Image = image
	}
	if cmd.ProductionDate != nil {
		product.ProductionDate = strings.TrimSpace(*cmd.ProductionDate)
	}
	if cmd.ShelfLifeDays != nil {
		product.ShelfLifeDays = *cmd.ShelfLifeDays
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := h.store.UpdateProduct(ctx, product); err != nil {
		return &product, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}
