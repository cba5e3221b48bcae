package cart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tair/pos-core/internal/domain"
)

const (
	// CustomSKU marks lines that have no catalog product behind them
	CustomSKU = "CUSTOM"
	// DefaultCustomName is used when a custom line is added without a name
	DefaultCustomName = "Custom item"
)

// Line is one draft row of a cart. Price and cost are snapshots taken when
// the line was created; Price may later be overridden for this line only.
type Line struct {
	Key       string          `json:"key"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Category  domain.Category `json:"category"`
	Price     float64         `json:"price"`
	Cost      float64         `json:"cost"`
	Quantity  int             `json:"qty"`
	Stock     int             `json:"stock"`
	Custom    bool            `json:"custom"`
}

// LineKey is the key of the line holding a catalog product
func LineKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// Cart is a draft order. It is not safe for concurrent use; Service
// serializes access to each cart.
type Cart struct {
	ID        uuid.UUID
	Operator  string
	CreatedAt time.Time
	lines     []Line
}

func newCart(operator string, now time.Time) *Cart {
	return &Cart{ID: uuid.New(), Operator: operator, CreatedAt: now}
}

// Lines returns a copy of the draft lines in insertion order
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(key string) int {
	for i, l := range c.lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}

// AddLine adds qty units of a catalog product. An existing line grows,
// capped at the product's available stock.
func (c *Cart) AddLine(p domain.Product, qty int) (Line, error) {
	if err := domain.CheckQuantity(qty); err != nil {
		return Line{}, err
	}
	if p.Stock <= 0 {
		return Line{}, fmt.Errorf("%w: %s is out of stock", ErrInsufficientStock, p.Name)
	}

	key := LineKey(p.ID)
	if i := c.index(key); i >= 0 {
		line := &c.lines[i]
		line.Stock = p.Stock
		if line.Quantity >= p.Stock {
			return *line, fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, p.Stock, p.Name)
		}
		line.Quantity = min(line.Quantity+qty, p.Stock)
		return *line, nil
	}

	line := Line{
		Key:       key,
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Category:  p.Category,
		Price:     p.Price,
		Cost:      p.Cost,
		Quantity:  min(qty, p.Stock),
		Stock:     p.Stock,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// AddCustomLine adds a line with no backing product. Its cost is zero and
// its quantity is never limited by stock.
func (c *Cart) AddCustomLine(key, name string, price float64) (Line, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Line{}, fmt.Errorf("%w: custom price must be a positive number", ErrInvalidPrice)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultCustomName
	}

	line := Line{
		Key:      key,
		Name:     name,
		SKU:      CustomSKU,
		Category: domain.CategoryCustom,
		Price:    price,
		Quantity: 1,
		Custom:   true,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// SetLineQuantity applies delta to a line. A resulting quantity of zero or
// less removes the line; catalog lines never exceed stock. The returned
// bool reports whether the line was removed.
func (c *Cart) SetLineQuantity(key string, delta, stock int) (Line, bool, error) {
	i := c.index(key)
	if i < 0 {
		return Line{}, false, fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}

	if delta < -domain.MaxQuantity || delta > domain.MaxQuantity {
		return Line{}, false, fmt.Errorf("%w: change of %d units", domain.ErrInvalidQuantity, delta)
	}

	line := c.lines[i]
	qty := line.Quantity + delta
	if qty <= 0 {
		c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
		line.Quantity = 0
		return line, true, nil
	}
	if qty > domain.MaxQuantity {
		return c.lines[i], false, fmt.Errorf("%w: %d units of %s", domain.ErrInvalidQuantity, qty, line.Name)
	}
	if !line.Custom {
		line.Stock = stock
		if qty > stock {
			c.lines[i].Stock = stock
			return c.lines[i], false, fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, stock, line.Name)
		}
	}
	line.Quantity = qty
	c.lines[i] = line
	return line, false, nil
}

// OverrideLinePrice changes the price charged for one line only
func (c *Cart) OverrideLinePrice(key string, price float64) (Line, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Line{}, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidPrice)
	}
	i := c.index(key)
	if i < 0 {
		return Line{}, fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	c.lines[i].Price = price
	return c.lines[i], nil
}

// Items snapshots the draft lines as order line items
func (c *Cart) Items() []domain.OrderLineItem {
	items := make([]domain.OrderLineItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, domain.OrderLineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Cost:      l.Cost,
			SKU:       l.SKU,
		})
	}
	return items
}

// Totals returns the amount, the profit and the number of units
func (c *Cart) Totals() (amount, profit decimal.Decimal, count int) {
	amount, profit = domain.LineTotals(c.Items())
	for _, l := range c.lines {
		count += l.Quantity
	}
	return amount, profit, count
}

// View is a read-only rendering of a cart
type View struct {
	ID        uuid.UUID `json:"id"`
	Operator  string    `json:"operator"`
	CreatedAt time.Time `json:"created_at"`
	Lines     []Line    `json:"lines"`
	Amount    float64   `json:"amount"`
	Profit    float64   `json:"profit"`
	ItemCount int       `json:"items_count"`
}

func (c *Cart) View() View {
	amount, profit, count := c.Totals()
	return View{
		ID:        c.ID,
		Operator:  c.Operator,
		CreatedAt: c.CreatedAt,
		Lines:     c.Lines(),
		Amount:    amount.Round(2).InexactFloat64(),
		Profit:    profit.Round(2).InexactFloat64(),
		ItemCount: count,
	}
}
