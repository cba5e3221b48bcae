package http

import (
	"net/http"
	"strconv"

	"github.com/tair/pos-core/internal/catalog/usecase/command"
	"github.com/tair/pos-core/internal/catalog/usecase/query"
	"github.com/tair/pos-core/pkg/logger"
)

type productRequest struct {
	Name           string   `json:"name"`
	SKU            string   `json:"sku"`
	Price          *float64 `json:"price"`
	Cost           *float64 `json:"cost"`
	Stock          *int     `json:"stock"`
	AlertThreshold *int     `json:"alert_threshold"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	Image          string   `json:"image"`
	ProductionDate *string  `json:"production_date"`
	ShelfLifeDays  *int     `json:"shelf_life_days"`
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// ListProducts handles GET /api/products
// @Summary List products
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name or SKU fragment"
// @Param category query string false "Category"
// @Param low_stock query bool false "Only products below their alert threshold"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} Response
// @Router /api/products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, okLimit := queryInt(r, "limit", 50)
	offset, okOffset := queryInt(r, "offset", 0)
	if !okLimit || !okOffset {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}
	lowStock, _ := strconv.ParseBool(q.Get("low_stock"))

	page, err := h.queries.ListProducts.Handle(query.ListProductsQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		LowStock: lowStock,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", page)
}

// GetStats handles GET /api/products/stats
// @Summary Catalog statistics
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Router /api/products/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.Stats.Handle(query.GetStatsQuery{})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}

// LookupProduct handles GET /api/products/lookup?code=
// @Summary Find a product by barcode or SKU
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param code query string true "Barcode or SKU"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/lookup [get]
func (h *Handler) LookupProduct(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	p, err := h.queries.LookupProduct.Handle(query.LookupProductQuery{Code: code})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", p)
}

// GetProduct handles GET /api/products/{id}
// @Summary Get a product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/{id} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	p, err := h.queries.GetProduct.Handle(query.GetProductQuery{ID: id})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", p)
}

// CreateProduct handles POST /api/products
// @Summary Create a product
// @Description Empty SKU becomes SKU-<id>, missing alert threshold becomes 5
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body productRequest true "Product"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /api/products [post]
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.commands.CreateProduct.Handle(r.Context(), command.CreateProductCommand{
		Name:           req.Name,
		SKU:            req.SKU,
		Price:          deref(req.Price),
		Cost:           deref(req.Cost),
		Stock:          deref(req.Stock),
		AlertThreshold: req.AlertThreshold,
		Category:       req.Category,
		Tags:           req.Tags,
		Image:          req.Image,
		ProductionDate: deref(req.ProductionDate),
		ShelfLifeDays:  deref(req.ShelfLifeDays),
	})
	if err != nil && p == nil {
		logger.Warn(r.Context()).Err(err).Msg("Product rejected")
	}
	respondResult(w, http.StatusCreated, "Product created", p, err)
}

// UpdateProduct handles PUT /api/products/{id}
// @Summary Update a product
// @Description Omitted fields keep their value. Updating an unknown product does nothing.
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body productRequest true "Changed fields"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/products/{id} [put]
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.commands.UpdateProduct.Handle(r.Context(), command.UpdateProductCommand{
		ID:             id,
		Name:           req.Name,
		SKU:            req.SKU,
		Price:          req.Price,
		Cost:           req.Cost,
		Stock:          req.Stock,
		AlertThreshold: req.AlertThreshold,
		Category:       req.Category,
		Tags:           req.Tags,
		Image:          req.Image,
		ProductionDate: req.ProductionDate,
		ShelfLifeDays:  req.ShelfLifeDays,
	})
	if err == nil && p == nil {
		respondData(w, http.StatusOK, "No such product, nothing updated", nil)
		return
	}
	respondResult(w, http.StatusOK, "Product updated", p, err)
}

// DeleteProduct handles DELETE /api/products/{id}
// @Summary Delete a product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Response
// @Router /api/products/{id} [delete]
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	err := h.commands.DeleteProduct.Handle(r.Context(), command.DeleteProductCommand{ID: id})
	respondResult(w, http.StatusOK, "Product deleted", nil, err)
}
