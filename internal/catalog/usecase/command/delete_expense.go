package command

import (
	"context"
	"fmt"

	"github.com/tair/pos-core/internal/domain"
)

type DeleteExpenseCommand struct {
	ID int64
}

type DeleteExpenseHandler struct {
	store domain.ExpenseStore
}

func NewDeleteExpenseHandler(store domain.ExpenseStore) *DeleteExpenseHandler {
	return &DeleteExpenseHandler{store: store}
}

func (h *DeleteExpenseHandler) Handle(ctx context.Context, cmd DeleteExpenseCommand) error {
	if err := h.store.DeleteExpense(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
