package query

import (
	"fmt"
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID int64
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	store domain.ProductStore
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(store domain.ProductStore) *GetProductHandler {
	return &GetProductHandler{store: store}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(query GetProductQuery) (*domain.Product, error) {
	p, ok := h.store.Product(query.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, query.ID)
	}
	return &p, nil
}

// LookupProductQuery finds a product by scanned barcode or SKU
type LookupProductQuery struct {
	Code string
}

type LookupProductHandler struct {
	store domain.ProductStore
}

func NewLookupProductHandler(store domain.ProductStore) *LookupProductHandler {
	return &LookupProductHandler{store: store}
}

func (h *LookupProductHandler) Handle(query LookupProductQuery) (*domain.Product, error) {
	code := strings.TrimSpace(query.Code)
	p, ok := h.store.ProductBySKU(code)
	if !ok {
		return nil, fmt.Errorf("%w: code %q", domain.ErrProductNotFound, code)
	}
	return &p, nil
}
