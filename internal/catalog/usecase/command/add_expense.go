package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/pos-core/internal/domain"
)

// AddExpenseCommand represents the command to record an expense. An empty
// date means today.
type AddExpenseCommand struct {
	Name     string
	Amount   float64
	Date     string
	Category string
}

// AddExpenseHandler handles expense creation command
type AddExpenseHandler struct {
	store domain.ExpenseStore
}

func NewAddExpenseHandler(store domain.ExpenseStore) *AddExpenseHandler {
	return &AddExpenseHandler{store: store}
}

func (h *AddExpenseHandler) Handle(ctx context.Context, cmd AddExpenseCommand) (*domain.Expense, error) {
	category, err := domain.ParseExpenseCategory(cmd.Category)
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(cmd.Date)
	if date == "" {
		date = h.store.Today()
	}

	expense := domain.Expense{
		ID:       h.store.NextID(),
		Name:     strings.TrimSpace(cmd.Name),
		Amount:   cmd.Amount,
		Date:     date,
		Category: category,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := h.store.AddExpense(ctx, expense); err != nil {
		return &expense, fmt.Errorf("failed to add expense: %w", err)
	}
	return &expense, nil
}
