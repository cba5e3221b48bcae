package http

import (
	"net/http"
)

// GetExpiry handles GET /api/products/{id}/expiry
// @Summary Expiry information of a product
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/products/{id}/expiry [get]
func (h *Handler) GetExpiry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	info, dated, err := h.inventory.ExpiryFor(id)
	if err != nil {
		respondFailure(w, err)
		return
	}
	if !dated {
		respondData(w, http.StatusOK, "Product has no production date or shelf life", nil)
		return
	}
	respondData(w, http.StatusOK, "", info)
}

// PreviewRestock handles GET /api/products/{id}/restock/preview?quantity=
// @Summary Suggested cost of a restock
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Param quantity query int true "Units received"
// @Success 200 {object} Response
// @Router /api/products/{id}/restock/preview [get]
func (h *Handler) PreviewRestock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	qty, ok := queryInt(r, "quantity", 0)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid quantity")
		return
	}
	preview, err := h.inventory.Preview(id, qty)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", preview)
}

// Restock handles POST /api/products/{id}/restock
// @Summary Receive stock
// @Description Increases stock and records a restock expense for the entered total
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body object{quantity=int,total_cost=number} true "Received goods"
// @Success 201 {object} Response
// @Router /api/products/{id}/restock [post]
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req struct {
		Quantity  int     `json:"quantity"`
		TotalCost float64 `json:"total_cost"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.inventory.Restock(r.Context(), id, req.Quantity, req.TotalCost)
	message := "Stock received"
	if !receipt.Found {
		message = "Expense recorded, product no longer exists"
	}
	respondResult(w, http.StatusCreated, message, receipt, err)
}

// LowStock handles GET /api/inventory/low-stock
// @Summary Products below their alert threshold
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Router /api/inventory/low-stock [get]
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "", h.inventory.LowStock())
}

// Expiring handles GET /api/inventory/expiring?within=
// @Summary Products expiring within a number of days
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param within query int false "Days" default(30)
// @Success 200 {object} Response
// @Router /api/inventory/expiring [get]
func (h *Handler) Expiring(w http.ResponseWriter, r *http.Request) {
	within, ok := queryInt(r, "within", 30)
	if !ok || within < 0 {
		respondError(w, http.StatusBadRequest, "Invalid within parameter")
		return
	}
	respondData(w, http.StatusOK, "", h.inventory.Expiring(within))
}

// ScanReceiving handles POST /api/inventory/scan
// @Summary Identify a product at the receiving desk
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{frame=string} true "Base64 camera frame"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /api/inventory/scan [post]
func (h *Handler) ScanReceiving(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Frame []byte `json:"frame"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, err := h.inventory.Scan(r.Context(), req.Frame)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", result)
}
