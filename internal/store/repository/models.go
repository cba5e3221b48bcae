package repository

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/tair/pos-core/internal/domain"
)

// productRow is the products table layout shared with the web dashboard
type productRow struct {
	ID             int64          `gorm:"primaryKey;autoIncrement:false"`
	Name           string         `gorm:"not null"`
	Barcode        string         `gorm:"index"`
	Price          float64        `gorm:"not null"`
	Cost           float64        `gorm:"not null;default:0"`
	Stock          int            `gorm:"not null;default:0"`
	AlertThreshold int            `gorm:"not null;default:5"`
	Category       string         `gorm:"index"`
	Tags           pq.StringArray `gorm:"type:text[]"`
	ImageURL       string
	ProductionDate string
	ShelfLifeDays  int
	UpdatedAt      time.Time
}

func (productRow) TableName() string {
	return "products"
}

type orderRow struct {
	ID            string `gorm:"primaryKey"`
	Timestamp     int64  `gorm:"index"`
	CreatedAt     time.Time
	Time          string
	TotalAmount   float64 `gorm:"not null"`
	ItemsCount    int
	Status        string
	PaymentMethod string
	Profit        *float64
	Details       datatypes.JSON `gorm:"type:jsonb"`
}

func (orderRow) TableName() string {
	return "orders"
}

type expenseRow struct {
	ID       int64   `gorm:"primaryKey;autoIncrement:false"`
	Name     string  `gorm:"not null"`
	Amount   float64 `gorm:"not null"`
	Date     string  `gorm:"index"`
	Category string
}

func (expenseRow) TableName() string {
	return "expenses"
}

func toProductRow(p domain.Product) productRow {
	return productRow{
		ID:             p.ID,
		Name:           p.Name,
		Barcode:        p.SKU,
		Price:          p.Price,
		Cost:           p.Cost,
		Stock:          p.Stock,
		AlertThreshold: p.AlertThreshold,
		Category:       string(p.Category),
		Tags:           pq.StringArray(p.Tags),
		ImageURL:       p.Image,
		ProductionDate: p.ProductionDate,
		ShelfLifeDays:  p.ShelfLifeDays,
	}
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		SKU:            r.Barcode,
		Price:          r.Price,
		Cost:           r.Cost,
		Stock:          r.Stock,
		AlertThreshold: r.AlertThreshold,
		Category:       domain.Category(r.Category),
		Tags:           []string(r.Tags),
		Image:          r.ImageURL,
		ProductionDate: r.ProductionDate,
		ShelfLifeDays:  r.ShelfLifeDays,
	}
}

func toOrderRow(o domain.Order) (orderRow, error) {
	details, err := json.Marshal(o.Items)
	if err != nil {
		return orderRow{}, err
	}
	return orderRow{
		ID:            o.ID,
		Timestamp:     o.Timestamp,
		CreatedAt:     time.UnixMilli(o.Timestamp).UTC(),
		Time:          o.Time,
		TotalAmount:   o.Amount,
		ItemsCount:    o.ItemCount,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Profit:        o.Profit,
		Details:       datatypes.JSON(details),
	}, nil
}

func (r orderRow) toDomain() (domain.Order, error) {
	var items []domain.OrderLineItem
	if len(r.Details) > 0 {
		if err := json.Unmarshal(r.Details, &items); err != nil {
			return domain.Order{}, err
		}
	}
	return domain.Order{
		ID:            r.ID,
		Timestamp:     r.Timestamp,
		Time:          r.Time,
		Amount:        r.TotalAmount,
		ItemCount:     r.ItemsCount,
		Status:        domain.OrderStatus(r.Status),
		Items:         items,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Profit:        r.Profit,
	}, nil
}

func toExpenseRow(e domain.Expense) expenseRow {
	return expenseRow{
		ID:       e.ID,
		Name:     e.Name,
		Amount:   e.Amount,
		Date:     e.Date,
		Category: string(e.Category),
	}
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:       r.ID,
		Name:     r.Name,
		Amount:   r.Amount,
		Date:     r.Date,
		Category: domain.ExpenseCategory(r.Category),
	}
}
