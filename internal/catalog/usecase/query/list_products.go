package query

import (
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Search   string
	Category string
	LowStock bool
	Limit    int
	Offset   int
}

// ProductPage is one page of products with the count before paging
type ProductPage struct {
	Items []domain.Product `json:"items"`
	Total int              `json:"total"`
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	store domain.ProductStore
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(store domain.ProductStore) *ListProductsHandler {
	return &ListProductsHandler{store: store}
}

// Handle executes the list products query. Search matches the name or
// the SKU, case-insensitively.
func (h *ListProductsHandler) Handle(query ListProductsQuery) (*ProductPage, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	var category domain.Category
	if c := strings.TrimSpace(query.Category); c != "" && c != "all" {
		parsed, err := domain.ParseCategory(c)
		if err != nil {
			return nil, err
		}
		category = parsed
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))

	matched := []domain.Product{}
	for _, p := range h.store.Products() {
		if category != "" && p.Category != category {
			continue
		}
		if query.LowStock && !p.IsLowStock() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		matched = append(matched, p)
	}

	page := &ProductPage{Total: len(matched), Items: []domain.Product{}}
	if query.Offset < len(matched) {
		end := min(query.Offset+query.Limit, len(matched))
		page.Items = matched[query.Offset:end]
	}
	return page, nil
}
