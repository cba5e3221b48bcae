package query

import (
	"github.com/tair/pos-core/internal/domain"
)

// ListExpensesQuery filters expenses by category and an inclusive date
// range; empty fields do not filter
type ListExpensesQuery struct {
	Category string
	From     string
	To       string
}

type ListExpensesHandler struct {
	store domain.ExpenseStore
}

func NewListExpensesHandler(store domain.ExpenseStore) *ListExpensesHandler {
	return &ListExpensesHandler{store: store}
}

func (h *ListExpensesHandler) Handle(query ListExpensesQuery) ([]domain.Expense, error) {
	var category domain.ExpenseCategory
	if query.Category != "" {
		c, err := domain.ParseExpenseCategory(query.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}
	for _, d := range []string{query.From, query.To} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDay(d); err != nil {
			return nil, err
		}
	}

	out := []domain.Expense{}
	for _, e := range h.store.Expenses() {
		if category != "" && e.Category != category {
			continue
		}
		if query.From != "" && e.Date < query.From {
			continue
		}
		if query.To != "" && e.Date > query.To {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
