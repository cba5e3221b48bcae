package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/internal/store"
)

// GormMirror keeps the record store collections in PostgreSQL
type GormMirror struct {
	db *gorm.DB
}

func NewGormMirror(db *gorm.DB) *GormMirror {
	return &GormMirror{db: db}
}

func (r *GormMirror) Name() string {
	return "postgres"
}

func (r *GormMirror) AutoMigrate() error {
	return r.db.AutoMigrate(&productRow{}, &orderRow{}, &expenseRow{})
}

func (r *GormMirror) UpsertProduct(ctx context.Context, product domain.Product) error {
	row := toProductRow(product)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (r *GormMirror) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&productRow{}, id).Error
}

// InsertOrder ignores orders that are already stored, so retries are safe
func (r *GormMirror) InsertOrder(ctx context.Context, order domain.Order) error {
	row, err := toOrderRow(order)
	if err != nil {
		return fmt.Errorf("failed to encode order details: %w", err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *GormMirror) InsertExpense(ctx context.Context, expense domain.Expense) error {
	row := toExpenseRow(expense)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (r *GormMirror) DeleteExpense(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&expenseRow{}, id).Error
}

func (r *GormMirror) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

func (r *GormMirror) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Order("timestamp desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode order %s: %w", row.ID, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *GormMirror) LoadExpenses(ctx context.Context) ([]domain.Expense, error) {
	var rows []expenseRow
	if err := r.db.WithContext(ctx).Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	expenses := make([]domain.Expense, 0, len(rows))
	for _, row := range rows {
		expenses = append(expenses, row.toDomain())
	}
	return expenses, nil
}

// ReplaceAll rewrites every table inside one transaction
func (r *GormMirror) ReplaceAll(ctx context.Context, snap store.Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&productRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		if err := all.Delete(&orderRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear orders: %w", err)
		}
		if err := all.Delete(&expenseRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}

		if len(snap.Products) > 0 {
			rows := make([]productRow, 0, len(snap.Products))
			for _, p := range snap.Products {
				rows = append(rows, toProductRow(p))
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write products: %w", err)
			}
		}
		if len(snap.Orders) > 0 {
			rows := make([]orderRow, 0, len(snap.Orders))
			for _, o := range snap.Orders {
				row, err := toOrderRow(o)
				if err != nil {
					return fmt.Errorf("failed to encode order %s: %w", o.ID, err)
				}
				rows = append(rows, row)
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write orders: %w", err)
			}
		}
		if len(snap.Expenses) > 0 {
			rows := make([]expenseRow, 0, len(snap.Expenses))
			for _, e := range snap.Expenses {
				rows = append(rows, toExpenseRow(e))
			}
			if err := tx.CreateInBatches(rows, 200).Error; err != nil {
				return fmt.Errorf("failed to write expenses: %w", err)
			}
		}
		return nil
	})
}
