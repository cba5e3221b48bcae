package domain

import (
	"context"
	"time"
)

// Clock hands out store time and collision free identifiers
type Clock interface {
	Now() time.Time
	Today() string
	NextID() int64
}

// ProductStore defines the catalog side of the record store
type ProductStore interface {
	Clock
	Products() []Product
	Product(id int64) (Product, bool)
	ProductBySKU(sku string) (Product, bool)
	AddProduct(ctx context.Context, product Product) error
	UpdateProduct(ctx context.Context, product Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderStore defines the order side of the record store
type OrderStore interface {
	Clock
	Orders() []Order
	Order(id string) (Order, bool)
	AddOrder(ctx context.Context, order Order) error
	PlaceOrder(ctx context.Context, order Order) error
}

// ExpenseStore defines the expense side of the record store
type ExpenseStore interface {
	Clock
	Expenses() []Expense
	AddExpense(ctx context.Context, expense Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

// RestockReceipt describes the effect of a restock on the record store
type RestockReceipt struct {
	Expense Expense `json:"expense"`
	Product Product `json:"product"`
	Found   bool    `json:"found"`
}

// InventoryStore defines the restock side of the record store
type InventoryStore interface {
	Clock
	Products() []Product
	Product(id int64) (Product, bool)
	Restock(ctx context.Context, productID int64, quantity int, totalCost float64) (RestockReceipt, error)
}
