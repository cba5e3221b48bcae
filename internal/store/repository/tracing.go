package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/store"
)

var tracer = otel.Tracer("store-repository")

// GormMirrorWithTracing wraps GormMirror with tracing
type GormMirrorWithTracing struct {
	*GormMirror
}

func NewGormMirrorWithTracing(db *gorm.DB) *GormMirrorWithTracing {
	return &GormMirrorWithTracing{
		GormMirror: NewGormMirror(db),
	}
}

func (r *GormMirrorWithTracing) UpsertProduct(ctx context.Context, product domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.UpsertProduct",
		trace.WithAttributes(
			attribute.Int64("product.id", product.ID),
			attribute.String("product.sku", product.SKU),
			attribute.Int("product.stock", product.Stock),
		),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.UpsertProduct(ctx, product))
}

func (r *GormMirrorWithTracing) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "repository.DeleteProduct",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.DeleteProduct(ctx, id))
}

func (r *GormMirrorWithTracing) InsertOrder(ctx context.Context, order domain.Order) error {
	ctx, span := tracer.Start(ctx, "repository.InsertOrder",
		trace.WithAttributes(
			attribute.String("order.id", order.ID),
			attribute.Float64("order.amount", order.Amount),
			attribute.Int("order.items", len(order.Items)),
		),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.InsertOrder(ctx, order))
}

func (r *GormMirrorWithTracing) InsertExpense(ctx context.Context, expense domain.Expense) error {
	ctx, span := tracer.Start(ctx, "repository.InsertExpense",
		trace.WithAttributes(
			attribute.Int64("expense.id", expense.ID),
			attribute.String("expense.category", string(expense.Category)),
			attribute.Float64("expense.amount", expense.Amount),
		),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.InsertExpense(ctx, expense))
}

func (r *GormMirrorWithTracing) DeleteExpense(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "repository.DeleteExpense",
		trace.WithAttributes(attribute.Int64("expense.id", id)),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.DeleteExpense(ctx, id))
}

func (r *GormMirrorWithTracing) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "repository.LoadProducts")
	defer span.End()

	products, err := r.GormMirror.LoadProducts(ctx)
	if err != nil {
		return nil, endSpan(span, err)
	}
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

func (r *GormMirrorWithTracing) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := tracer.Start(ctx, "repository.LoadOrders")
	defer span.End()

	orders, err := r.GormMirror.LoadOrders(ctx)
	if err != nil {
		return nil, endSpan(span, err)
	}
	span.SetAttributes(attribute.Int("result.count", len(orders)))
	return orders, nil
}

func (r *GormMirrorWithTracing) LoadExpenses(ctx context.Context) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "repository.LoadExpenses")
	defer span.End()

	expenses, err := r.GormMirror.LoadExpenses(ctx)
	if err != nil {
		return nil, endSpan(span, err)
	}
	span.SetAttributes(attribute.Int("result.count", len(expenses)))
	return expenses, nil
}

func (r *GormMirrorWithTracing) ReplaceAll(ctx context.Context, snap store.Snapshot) error {
	ctx, span := tracer.Start(ctx, "repository.ReplaceAll",
		trace.WithAttributes(
			attribute.Int("snapshot.products", len(snap.Products)),
			attribute.Int("snapshot.orders", len(snap.Orders)),
			attribute.Int("snapshot.expenses", len(snap.Expenses)),
		),
	)
	defer span.End()

	return endSpan(span, r.GormMirror.ReplaceAll(ctx, snap))
}

// endSpan records err on span and passes it through
func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
