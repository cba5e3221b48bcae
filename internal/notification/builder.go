package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// Source is the read side of the record store
type Source interface {
	Now() time.Time
	Orders() []domain.Order
	Expenses() []domain.Expense
	Products() []domain.Product
}

// Feed is a filtered view of the merged notifications
type Feed struct {
	Items  []Item `json:"items"`
	Unread int    `json:"unread"`
	Total  int    `json:"total"`
}

// Builder merges orders, expenses, low stock products and system notices
// into one feed ordered by identifier, newest first
type Builder struct {
	src    Source
	inbox  *Inbox
	state  ReadState
	window int
}

func NewBuilder(src Source, inbox *Inbox, state ReadState, window int) *Builder {
	if window <= 0 {
		window = DefaultWindow
	}
	if state == nil {
		state = NewMemoryReadState()
	}
	return &Builder{src: src, inbox: inbox, state: state, window: window}
}

// items builds the unfiltered feed without read flags
func (b *Builder) items() []Item {
	loc := b.src.Now().Location()
	orders := b.src.Orders()
	expenses := b.src.Expenses()

	var items []Item
	for i, o := range orders {
		if i >= b.window {
			break
		}
		items = append(items, orderItem(o))
	}
	for i, e := range expenses {
		if i >= b.window {
			break
		}
		items = append(items, expenseItem(e, loc))
	}
	for _, p := range b.src.Products() {
		if p.IsLowStock() {
			items = append(items, alertItem(p))
		}
	}
	if b.inbox != nil {
		for _, n := range b.inbox.Notices() {
			items = append(items, noticeItem(n, loc))
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items
}

// Feed returns the items matching filter with read flags for user. Unread
// counts every item regardless of the filter.
func (b *Builder) Feed(ctx context.Context, user string, filter Filter) (Feed, error) {
	seen, err := b.state.Seen(ctx, user)
	if err != nil {
		return Feed{}, err
	}

	all := b.items()
	feed := Feed{Items: make([]Item, 0, len(all)), Total: len(all)}
	for _, item := range all {
		item.Read = seen[item.ID]
		if !item.Read {
			feed.Unread++
		}
		if filter.Match(item.Type) {
			feed.Items = append(feed.Items, item)
		}
	}
	return feed, nil
}

// MarkRead marks one item as seen by user
func (b *Builder) MarkRead(ctx context.Context, user string, id int64) error {
	if err := b.state.MarkSeen(ctx, user, id); err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every item currently visible under filter and returns
// how many there were
func (b *Builder) MarkAllRead(ctx context.Context, user string, filter Filter) (int, error) {
	var ids []int64
	for _, item := range b.items() {
		if filter.Match(item.Type) {
			ids = append(ids, item.ID)
		}
	}
	if err := b.state.MarkSeen(ctx, user, ids...); err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return len(ids), nil
}
