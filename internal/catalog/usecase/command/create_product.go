package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	Name           string
	SKU            string
	Price          float64
	Cost           float64
	Stock          int
	AlertThreshold *int
	Category       string
	Tags           []string
	Image          string
	ProductionDate string
	ShelfLifeDays  int
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	store domain.ProductStore
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(store domain.ProductStore) *CreateProductHandler {
	return &CreateProductHandler{store: store}
}

// Handle executes the create product command. The returned product is
// set whenever it was added locally, even if a mirror write failed.
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	category := domain.CategoryOther
	if strings.TrimSpace(cmd.Category) != "" {
		c, err := domain.ParseCategory(cmd.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	sku := strings.TrimSpace(cmd.SKU)
	if sku != "" {
		if _, exists := h.store.ProductBySKU(sku); exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
		}
	}

	id := h.store.NextID()
	if sku == "" {
		sku = fmt.Sprintf("SKU-%d", id)
	}
	threshold := domain.DefaultAlertThreshold
	if cmd.AlertThreshold != nil {
		threshold = *cmd.AlertThreshold
	}
	image := strings.TrimSpace(cmd.Image)
	if image == "" {
		image = domain.PlaceholderImage
	}

	product := domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(cmd.Name),
		SKU:            sku,
		Price:          cmd.Price,
		Cost:           cmd.Cost,
		Stock:          cmd.Stock,
		AlertThreshold: threshold,
		Category:       category,
		Tags:           normalizeTags(cmd.Tags),
		Image:          image,
		ProductionDate: strings.TrimSpace(cmd.ProductionDate),
		ShelfLifeDays:  cmd.ShelfLifeDays,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := h.store.AddProduct(ctx, product); err != nil {
		return &product, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
