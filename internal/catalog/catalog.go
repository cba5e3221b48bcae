package catalog

import (
	"github.com/google/wire"

	"github.com/tair/pos-core/internal/catalog/usecase/command"
	"github.com/tair/pos-core/internal/catalog/usecase/query"
	"github.com/tair/pos-core/internal/domain"
)

// CommandHandlers holds every catalog command handler
type CommandHandlers struct {
	CreateProduct *command.CreateProductHandler
	UpdateProduct *command.UpdateProductHandler
	DeleteProduct *command.DeleteProductHandler
	AddExpense    *command.AddExpenseHandler
	DeleteExpense *command.DeleteExpenseHandler
	ImportOrder   *command.ImportOrderHandler
}

// QueryHandlers holds every catalog query handler
type QueryHandlers struct {
	ListProducts  *query.ListProductsHandler
	GetProduct    *query.GetProductHandler
	LookupProduct *query.LookupProductHandler
	Stats         *query.GetStatsHandler
	ListOrders    *query.ListOrdersHandler
	GetOrder      *query.GetOrderHandler
	ListExpenses  *query.ListExpensesHandler
}

// Store is everything the catalog handlers read and write
type Store interface {
	domain.ProductStore
	domain.OrderStore
	domain.ExpenseStore
}

// NewCommandHandlers builds every command handler on one store
func NewCommandHandlers(s Store) *CommandHandlers {
	return &CommandHandlers{
		CreateProduct: command.NewCreateProductHandler(s),
		UpdateProduct: command.NewUpdateProductHandler(s),
		DeleteProduct: command.NewDeleteProductHandler(s),
		AddExpense:    command.NewAddExpenseHandler(s),
		DeleteExpense: command.NewDeleteExpenseHandler(s),
		ImportOrder:   command.NewImportOrderHandler(s, s),
	}
}

// NewQueryHandlers builds every query handler on one store
func NewQueryHandlers(s Store) *QueryHandlers {
	return &QueryHandlers{
		ListProducts:  query.NewListProductsHandler(s),
		GetProduct:    query.NewGetProductHandler(s),
		LookupProduct: query.NewLookupProductHandler(s),
		Stats:         query.NewGetStatsHandler(s),
		ListOrders:    query.NewListOrdersHandler(s),
		GetOrder:      query.NewGetOrderHandler(s),
		ListExpenses:  query.NewListExpensesHandler(s),
	}
}

var ProviderSet = wire.NewSet(
	NewCommandHandlers,
	NewQueryHandlers,
)
