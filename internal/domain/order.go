package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order was settled
type PaymentMethod string

const (
	PaymentWeChat PaymentMethod = "wechat"
	PaymentAlipay PaymentMethod = "alipay"
	PaymentCash   PaymentMethod = "cash"
)

// ParsePaymentMethod validates a payment method name
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentWeChat, PaymentAlipay, PaymentCash:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

// OrderStatus is the settlement state of an order
type OrderStatus string

const (
	OrderPaid    OrderStatus = "paid"
	OrderPending OrderStatus = "pending"
)

// OrderLineItem is a snapshot of a product taken at sale time.
// ProductID is zero for custom lines with no backing product.
type OrderLineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
	SKU       string  `json:"sku"`
}

// Order is an immutable record of a completed sale
type Order struct {
	ID            string          `json:"id"`
	Timestamp     int64           `json:"timestamp"`
	Time          string          `json:"time"`
	Amount        float64         `json:"amount"`
	ItemCount     int             `json:"items_count"`
	Status        OrderStatus     `json:"status"`
	Items         []OrderLineItem `json:"details"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Profit        *float64        `json:"profit,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with o
func (o Order) Clone() Order {
	o.Items = append([]OrderLineItem(nil), o.Items...)
	if o.Profit != nil {
		p := *o.Profit
		o.Profit = &p
	}
	return o
}

// LineTotals folds line items into amount and profit using decimal arithmetic
func LineTotals(items []OrderLineItem) (amount, profit decimal.Decimal) {
	amount, profit = decimal.Zero, decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		price := decimal.NewFromFloat(item.Price)
		cost := decimal.NewFromFloat(item.Cost)
		amount = amount.Add(price.Mul(qty))
		profit = profit.Add(price.Sub(cost).Mul(qty))
	}
	return amount, profit
}

// ProfitDecimal is the order profit: computed from the line items when
// present, otherwise the stored profit of rows that arrived without details.
func (o Order) ProfitDecimal() decimal.Decimal {
	if len(o.Items) == 0 && o.Profit != nil {
		return decimal.NewFromFloat(*o.Profit)
	}
	_, profit := LineTotals(o.Items)
	return profit
}

// DisplayID returns the last six characters of the order identifier
func (o Order) DisplayID() string {
	id := strings.TrimPrefix(o.ID, "#")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return id
}

// NewOrder builds a paid order stamped at ts milliseconds. The id is "#"
// followed by the last six digits of ts and Time is HH:MM in loc.
func NewOrder(ts int64, loc *time.Location, items []OrderLineItem, method PaymentMethod) Order {
	if loc == nil {
		loc = time.Local
	}
	items = append([]OrderLineItem(nil), items...)
	amount, profit := LineTotals(items)
	p := profit.InexactFloat64()
	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	digits := strconv.FormatInt(ts, 10)
	if len(digits) > 6 {
		digits = digits[len(digits)-6:]
	}
	return Order{
		ID:            "#" + digits,
		Timestamp:     ts,
		Time:          time.UnixMilli(ts).In(loc).Format("15:04"),
		Amount:        amount.InexactFloat64(),
		ItemCount:     count,
		Status:        OrderPaid,
		Items:         items,
		PaymentMethod: method,
		Profit:        &p,
	}
}
