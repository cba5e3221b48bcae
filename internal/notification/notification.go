package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// Type is the source kind of a feed item
type Type string

const (
	TypeOrder   Type = "order"
	TypeExpense Type = "expense"
	TypeAlert   Type = "alert"
	TypeSystem  Type = "system"
)

var ErrInvalidFilter = errors.New("unknown notification filter")

// Filter selects feed items by type; FilterAll keeps everything
type Filter string

const FilterAll Filter = "all"

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case Filter(TypeOrder), Filter(TypeExpense), Filter(TypeAlert), Filter(TypeSystem):
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidFilter, s)
}

func (f Filter) Match(t Type) bool {
	return f == FilterAll || f == "" || Filter(t) == f
}

// AlertIDOffset moves low stock alert identifiers into a band above every
// millisecond timestamp, so they never collide with order or expense ids
const AlertIDOffset int64 = 1 << 52

// DefaultWindow is how many recent orders and expenses enter the feed
const DefaultWindow = 20

// Item is one derived feed entry. Exactly one of the reference fields is
// set, matching Type.
type Item struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Time        string          `json:"time"`
	Type        Type            `json:"type"`
	Read        bool            `json:"read"`
	Order       *domain.Order   `json:"order,omitempty"`
	Expense     *domain.Expense `json:"expense,omitempty"`
	Product     *domain.Product `json:"product,omitempty"`
	Notice      *Notice         `json:"notice,omitempty"`
}

// Notice is an operator facing message that did not come from the store
// collections, such as a maintenance announcement
type Notice struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func orderItem(o domain.Order) Item {
	return Item{
		ID:          o.Timestamp,
		Title:       "New order",
		Description: fmt.Sprintf("Order #%s received %.2f", o.DisplayID(), o.Amount),
		Time:        o.Time,
		Type:        TypeOrder,
		Order:       &o,
	}
}

func expenseItem(e domain.Expense, loc *time.Location) Item {
	title := "Expense recorded"
	if e.Category == domain.ExpenseRestock {
		title = "Restock received"
	}
	return Item{
		ID:          e.ID,
		Title:       title,
		Description: fmt.Sprintf("%s - paid %.2f", e.Name, e.Amount),
		Time:        time.UnixMilli(e.ID).In(loc).Format("15:04"),
		Type:        TypeExpense,
		Expense:     &e,
	}
}

func alertItem(p domain.Product) Item {
	return Item{
		ID:          AlertIDOffset + p.ID,
		Title:       "Low stock",
		Description: fmt.Sprintf("%q has only %d left (threshold %d)", p.Name, p.Stock, p.AlertThreshold),
		Time:        "now",
		Type:        TypeAlert,
		Product:     &p,
	}
}

func noticeItem(n Notice, loc *time.Location) Item {
	return Item{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Message,
		Time:        n.CreatedAt.In(loc).Format("15:04"),
		Type:        TypeSystem,
		Notice:      &n,
	}
}
