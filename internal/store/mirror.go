package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/pos-core/internal/domain"
)

// ErrMirror marks a remote mirror write that did not complete. The local
// change it belongs to has already been applied and stays applied.
var ErrMirror = errors.New("remote mirror write failed")

// Mirror is a remote copy of the record store collections
type Mirror interface {
	Name() string
	UpsertProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	InsertOrder(ctx context.Context, order domain.Order) error
	InsertExpense(ctx context.Context, expense domain.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

// SnapshotMirror can replace its whole content in one step
type SnapshotMirror interface {
	Mirror
	ReplaceAll(ctx context.Context, snapshot Snapshot) error
}

// Source loads collections from a remote table-store
type Source interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	LoadOrders(ctx context.Context) ([]domain.Order, error)
	LoadExpenses(ctx context.Context) ([]domain.Expense, error)
}

// Snapshot is a point in time copy of every collection
type Snapshot struct {
	Products []domain.Product `json:"products"`
	Orders   []domain.Order   `json:"orders"`
	Expenses []domain.Expense `json:"expenses"`
}

type opKind string

const (
	opUpsertProduct opKind = "upsert_product"
	opDeleteProduct opKind = "delete_product"
	opInsertOrder   opKind = "insert_order"
	opInsertExpense opKind = "insert_expense"
	opDeleteExpense opKind = "delete_expense"
)

// operation is one pending mirror write
type operation struct {
	kind     opKind
	product  domain.Product
	order    domain.Order
	expense  domain.Expense
	id       int64
	attempts int
}

func upsertProductOp(p domain.Product) operation {
	return operation{kind: opUpsertProduct, product: p.Clone()}
}

func (op operation) apply(ctx context.Context, m Mirror) error {
	switch op.kind {
	case opUpsertProduct:
		return m.UpsertProduct(ctx, op.product)
	case opDeleteProduct:
		return m.DeleteProduct(ctx, op.id)
	case opInsertOrder:
		return m.InsertOrder(ctx, op.order)
	case opInsertExpense:
		return m.InsertExpense(ctx, op.expense)
	case opDeleteExpense:
		return m.DeleteExpense(ctx, op.id)
	}
	return fmt.Errorf("unknown mirror operation %q", op.kind)
}
