package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// ListOrdersQuery lists orders newest first. Date restricts the result to
// one calendar day in the store timezone.
type ListOrdersQuery struct {
	Date          string
	PaymentMethod string
	Limit         int
	Offset        int
}

type OrderPage struct {
	Items []domain.Order `json:"items"`
	Total int            `json:"total"`
}

type ListOrdersHandler struct {
	store domain.OrderStore
}

func NewListOrdersHandler(store domain.OrderStore) *ListOrdersHandler {
	return &ListOrdersHandler{store: store}
}

func (h *ListOrdersHandler) Handle(query ListOrdersQuery) (*OrderPage, error) {
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	if query.Date != "" {
		if _, err := domain.ParseDay(query.Date); err != nil {
			return nil, err
		}
	}
	var method domain.PaymentMethod
	if strings.TrimSpace(query.PaymentMethod) != "" {
		m, err := domain.ParsePaymentMethod(query.PaymentMethod)
		if err != nil {
			return nil, err
		}
		method = m
	}

	loc := h.store.Now().Location()
	matched := []domain.Order{}
	for _, o := range h.store.Orders() {
		if query.Date != "" && domain.DayKey(time.UnixMilli(o.Timestamp).In(loc)) != query.Date {
			continue
		}
		if method != "" && o.PaymentMethod != method {
			continue
		}
		matched = append(matched, o)
	}

	page := &OrderPage{Total: len(matched), Items: []domain.Order{}}
	if query.Offset < len(matched) {
		page.Items = matched[query.Offset:min(query.Offset+query.Limit, len(matched))]
	}
	return page, nil
}

type GetOrderQuery struct {
	ID string
}

type GetOrderHandler struct {
	store domain.OrderStore
}

func NewGetOrderHandler(store domain.OrderStore) *GetOrderHandler {
	return &GetOrderHandler{store: store}
}

// Handle accepts the identifier with or without its leading '#'
func (h *GetOrderHandler) Handle(query GetOrderQuery) (*domain.Order, error) {
	id := strings.TrimSpace(query.ID)
	if !strings.HasPrefix(id, "#") {
		id = "#" + id
	}
	o, ok := h.store.Order(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return &o, nil
}
