package command

import (
	"context"
	"fmt"

	"github.com/tair/pos-core/internal/domain"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ID int64
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	store domain.ProductStore
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(store domain.ProductStore) *DeleteProductHandler {
	return &DeleteProductHandler{store: store}
}

// Handle executes the delete product command. Orders that sold the product
// keep their line snapshots.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	if err := h.store.DeleteProduct(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
