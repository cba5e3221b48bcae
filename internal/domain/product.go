package domain

import (
	"fmt"
	"math"
	"strings"
)

// Category is the closed set of catalog categories
type Category string

const (
	CategoryDrinks   Category = "drinks"
	CategorySnacks   Category = "snacks"
	CategoryTobacco  Category = "tobacco"
	CategoryDaily    Category = "daily"
	CategoryFresh    Category = "fresh"
	CategoryHomemade Category = "homemade"
	CategoryCustom   Category = "custom"
	CategoryOther    Category = "other"
)

// Categories lists every accepted category in display order
var Categories = []Category{
	CategoryDrinks, CategorySnacks, CategoryTobacco, CategoryDaily,
	CategoryFresh, CategoryHomemade, CategoryCustom, CategoryOther,
}

// ParseCategory validates a category coming from a form or a remote row
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

const (
	// DefaultAlertThreshold applies when a product is created without one
	DefaultAlertThreshold = 5
	// PlaceholderImage is used for products without an image
	PlaceholderImage = "https://placehold.co/200x200/cccccc/ffffff?text=No+Image"
)

// Product is a catalog entry owned by the record store
type Product struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	SKU            string   `json:"sku"`
	Price          float64  `json:"price"`
	Cost           float64  `json:"cost"`
	Stock          int      `json:"stock"`
	AlertThreshold int      `json:"alert_threshold"`
	Category       Category `json:"category"`
	Tags           []string `json:"tags"`
	Image          string   `json:"image"`
	ProductionDate string   `json:"production_date,omitempty"`
	ShelfLifeDays  int      `json:"shelf_life_days,omitempty"`
}

// IsLowStock reports whether stock fell below the alert threshold
func (p Product) IsLowStock() bool {
	return p.Stock < p.AlertThreshold
}

// Clone returns a copy that shares no slices with p
func (p Product) Clone() Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

// MaxQuantity bounds the units moved by one restock, order line or cart
// adjustment
const MaxQuantity = 1_000_000_000

// CheckQuantity accepts 1..MaxQuantity units
func CheckQuantity(qty int) error {
	if qty <= 0 || qty > MaxQuantity {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidQuantity, qty, MaxQuantity)
	}
	return nil
}

// AddStock returns stock increased by qty, or an error when qty is out of
// range or the sum would not fit in an int
func AddStock(stock, qty int) (int, error) {
	if err := CheckQuantity(qty); err != nil {
		return stock, err
	}
	if stock > math.MaxInt-qty {
		return stock, fmt.Errorf("%w: stock %d cannot grow by %d", ErrInvalidQuantity, stock, qty)
	}
	return stock + qty, nil
}

// Validate checks the catalog invariants
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case !validAmount(p.Price):
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProduct)
	case !validAmount(p.Cost):
		return fmt.Errorf("%w: cost must be a non-negative number", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	case p.AlertThreshold < 0:
		return fmt.Errorf("%w: alert threshold cannot be negative", ErrInvalidProduct)
	case p.ShelfLifeDays < 0:
		return fmt.Errorf("%w: shelf life cannot be negative", ErrInvalidProduct)
	}
	if _, err := ParseCategory(string(p.Category)); err != nil {
		return err
	}
	if p.ProductionDate != "" {
		if _, err := ParseDay(p.ProductionDate); err != nil {
			return err
		}
	}
	return nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
