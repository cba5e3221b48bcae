package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tair/pos-core/internal/domain"
)

func cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid cart ID")
		return uuid.Nil, false
	}
	return id, true
}

// OpenCart handles POST /api/carts
// @Summary Open an empty cart for the signed in operator
// @Tags Carts
// @Security BearerAuth
// @Produce json
// @Success 201 {object} Response
// @Router /api/carts [post]
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusCreated, "Cart opened", h.carts.Open(r.Context(), operator(r)))
}

// GetCart handles GET /api/carts/{id}
// @Summary Get a cart with its totals
// @Tags Carts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/carts/{id} [get]
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	view, err := h.carts.Get(id)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}

// DiscardCart handles DELETE /api/carts/{id}
// @Summary Discard a cart
// @Tags Carts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cart ID"
// @Success 200 {object} Response
// @Router /api/carts/{id} [delete]
func (h *Handler) DiscardCart(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	if err := h.carts.Discard(r.Context(), id); err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "Cart discarded", nil)
}

// AddCartLine handles POST /api/carts/{id}/lines
// @Summary Add a catalog product to a cart
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param request body object{product_id=int,quantity=int} true "Line"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /api/carts/{id}/lines [post]
func (h *Handler) AddCartLine(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.carts.AddProduct(r.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}

// ChangeCartLine handles PATCH /api/carts/{id}/lines/{key}
// @Summary Change a line quantity by a delta; a line reaching zero is removed
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param key path string true "Line key"
// @Param request body object{delta=int} true "Quantity change"
// @Success 200 {object} Response
// @Router /api/carts/{id}/lines/{key} [patch]
func (h *Handler) ChangeCartLine(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.carts.SetQuantity(r.Context(), id, mux.Vars(r)["key"], req.Delta)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}

// OverrideCartPrice handles PUT /api/carts/{id}/lines/{key}/price
// @Summary Override the unit price of one line
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param key path string true "Line key"
// @Param request body object{price=number} true "Unit price"
// @Success 200 {object} Response
// @Router /api/carts/{id}/lines/{key}/price [put]
func (h *Handler) OverrideCartPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		Price *float64 `json:"price"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Price == nil {
		respondError(w, http.StatusBadRequest, "price is required")
		return
	}

	view, err := h.carts.OverridePrice(r.Context(), id, mux.Vars(r)["key"], *req.Price)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}

// AddCustomLine handles POST /api/carts/{id}/custom
// @Summary Add an item that is not in the catalog
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param request body object{name=string,price=number} true "Custom item"
// @Success 200 {object} Response
// @Router /api/carts/{id}/custom [post]
func (h *Handler) AddCustomLine(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.carts.AddCustom(r.Context(), id, req.Name, req.Price)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", view)
}

// ScanIntoCart handles POST /api/carts/{id}/scan
// @Summary Add a product by scanned code or camera frame
// @Description Send either code (already decoded) or frame (base64 image bytes)
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param request body object{code=string,frame=string} true "Scan"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /api/carts/{id}/scan [post]
func (h *Handler) ScanIntoCart(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		Code  string `json:"code"`
		Frame []byte `json:"frame"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	var data struct {
		Scan interface{} `json:"scan"`
		Cart interface{} `json:"cart"`
	}
	if req.Code != "" {
		result, view, addErr := h.carts.AddCode(r.Context(), id, req.Code)
		data.Scan, data.Cart, err = result, view, addErr
	} else {
		result, view, scanErr := h.carts.Scan(r.Context(), id, req.Frame)
		data.Scan, data.Cart, err = result, view, scanErr
	}
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", data)
}

// Checkout handles POST /api/carts/{id}/checkout
// @Summary Commit a cart as a paid order
// @Description Stock is checked again at commit time
// @Tags Carts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cart ID"
// @Param request body object{payment_method=string} true "wechat, alipay or cash"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /api/carts/{id}/checkout [post]
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := cartID(w, r)
	if !ok {
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.carts.Commit(r.Context(), id, domain.PaymentMethod(req.PaymentMethod))
	respondResult(w, http.StatusCreated, "Order placed", order, err)
}
