package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/pos-core/internal/catalog/usecase/command"
	"github.com/tair/pos-core/internal/catalog/usecase/query"
)

// ListOrders handles GET /api/orders
// @Summary List orders newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param date query string false "YYYY-MM-DD"
// @Param payment_method query string false "wechat, alipay or cash"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} Response
// @Router /api/orders [get]
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, okLimit := queryInt(r, "limit", 50)
	offset, okOffset := queryInt(r, "offset", 0)
	if !okLimit || !okOffset {
		respondError(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}
	page, err := h.queries.ListOrders.Handle(query.ListOrdersQuery{
		Date:          r.URL.Query().Get("date"),
		PaymentMethod: r.URL.Query().Get("payment_method"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", page)
}

// GetOrder handles GET /api/orders/{id}
// @Summary Get an order by its display identifier without the leading #
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/orders/{id} [get]
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queries.GetOrder.Handle(query.GetOrderQuery{ID: mux.Vars(r)["id"]})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", o)
}

// ImportOrder handles POST /api/orders/import
// @Summary Record an order captured outside a cart
// @Description Stock is decremented and clamped at zero
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{payment_method=string,lines=[]object{product_id=int,name=string,quantity=int,price=number}} true "Order"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/orders/import [post]
func (h *Handler) ImportOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"payment_method"`
		Lines         []struct {
			ProductID int64    `json:"product_id"`
			Name      string   `json:"name"`
			Quantity  int      `json:"quantity"`
			Price     *float64 `json:"price"`
		} `json:"lines"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.ImportOrderCommand{PaymentMethod: req.PaymentMethod}
	for _, l := range req.Lines {
		cmd.Lines = append(cmd.Lines, command.ImportLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}

	order, err := h.commands.ImportOrder.Handle(r.Context(), cmd)
	respondResult(w, http.StatusCreated, "Order imported", order, err)
}

// ListExpenses handles GET /api/expenses
// @Summary List expenses
// @Tags Expenses
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category"
// @Param from query string false "First day, YYYY-MM-DD"
// @Param to query string false "Last day, YYYY-MM-DD"
// @Success 200 {object} Response
// @Router /api/expenses [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses, err := h.queries.ListExpenses.Handle(query.ListExpensesQuery{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondData(w, http.StatusOK, "", expenses)
}

// AddExpense handles POST /api/expenses
// @Summary Record an expense
// @Tags Expenses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,amount=number,date=string,category=string} true "Expense"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/expenses [post]
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Date     string  `json:"date"`
		Category string  `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	e, err := h.commands.AddExpense.Handle(r.Context(), command.AddExpenseCommand{
		Name:     req.Name,
		Amount:   req.Amount,
		Date:     req.Date,
		Category: req.Category,
	})
	respondResult(w, http.StatusCreated, "Expense recorded", e, err)
}

// DeleteExpense handles DELETE /api/expenses/{id}
// @Summary Delete an expense
// @Tags Expenses
// @Security BearerAuth
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} Response
// @Router /api/expenses/{id} [delete]
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid expense ID")
		return
	}
	err := h.commands.DeleteExpense.Handle(r.Context(), command.DeleteExpenseCommand{ID: id})
	respondResult(w, http.StatusOK, "Expense deleted", nil, err)
}
