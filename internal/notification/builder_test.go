package notification

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/pos-core/internal/domain"
)

type fakeSource struct {
	orders   []domain.Order
	expenses []domain.Expense
	products []domain.Product
}

func (f *fakeSource) Now() time.Time             { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) }
func (f *fakeSource) Orders() []domain.Order     { return f.orders }
func (f *fakeSource) Expenses() []domain.Expense { return f.expenses }
func (f *fakeSource) Products() []domain.Product { return f.products }

type counter struct{ n atomic.Int64 }

func (c *counter) NextID() int64 { return c.n.Add(1) + 1728990000000 }

func sample() *fakeSource {
	return &fakeSource{
		orders: []domain.Order{
			{ID: "#400300", Timestamp: 1728990000300, Time: "11:00", Amount: 12},
			{ID: "#400100", Timestamp: 1728990000100, Time: "10:00", Amount: 8.5},
		},
		expenses: []domain.Expense{
			{ID: 1728990000200, Name: "restock: Cola x20", Amount: 36, Date: "2024-10-15", Category: domain.ExpenseRestock},
			{ID: 1728990000050, Name: "Rent", Amount: 500, Date: "2024-10-15", Category: domain.ExpenseRent},
		},
		products: []domain.Product{
			{ID: 101, Name: "Cola", Stock: 3, AlertThreshold: 5},
			{ID: 102, Name: "Water", Stock: 5, AlertThreshold: 5},
		},
	}
}

func TestFeedMergesAndSortsByID(t *testing.T) {
	b := NewBuilder(sample(), nil, nil, 0)

	feed, err := b.Feed(context.Background(), "cashier", FilterAll)
	require.NoError(t, err)
	require.Len(t, feed.Items, 5)

	assert.Equal(t, TypeAlert, feed.Items[0].Type)
	assert.Equal(t, AlertIDOffset+101, feed.Items[0].ID)
	assert.Equal(t, int64(1728990000300), feed.Items[1].ID)
	assert.Equal(t, "Restock received", feed.Items[2].Title)
	assert.Equal(t, int64(1728990000100), feed.Items[3].ID)
	assert.Equal(t, "Expense recorded", feed.Items[4].Title)

	assert.Equal(t, 5, feed.Unread)
	assert.Equal(t, "Order #400300 received 12.00", feed.Items[1].Description)
	require.NotNil(t, feed.Items[0].Product)
	assert.Equal(t, "Cola", feed.Items[0].Product.Name)
}

func TestFeedWindowBoundsOrdersAndExpenses(t *testing.T) {
	src := &fakeSource{}
	for i := 0; i < 30; i++ {
		src.orders = append(src.orders, domain.Order{ID: "#o", Timestamp: int64(2000 - i)})
		src.expenses = append(src.expenses, domain.Expense{ID: int64(1000 - i)})
	}
	b := NewBuilder(src, nil, nil, DefaultWindow)

	feed, err := b.Feed(context.Background(), "admin", FilterAll)
	require.NoError(t, err)
	assert.Len(t, feed.Items, 40)
}

func TestFilterDoesNotChangeUnreadCount(t *testing.T) {
	b := NewBuilder(sample(), nil, nil, 0)

	feed, err := b.Feed(context.Background(), "cashier", Filter(TypeExpense))
	require.NoError(t, err)
	assert.Len(t, feed.Items, 2)
	assert.Equal(t, 5, feed.Unread)
	assert.Equal(t, 5, feed.Total)
}

func TestMarkReadIsPerOperator(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(sample(), nil, NewMemoryReadState(), 0)

	require.NoError(t, b.MarkRead(ctx, "cashier", 1728990000300))

	feed, err := b.Feed(ctx, "cashier", FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 4, feed.Unread)
	assert.True(t, feed.Items[1].Read)

	other, err := b.Feed(ctx, "admin", FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 5, other.Unread)
}

func TestMarkAllReadRespectsFilter(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(sample(), nil, nil, 0)

	n, err := b.MarkAllRead(ctx, "cashier", Filter(TypeOrder))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	feed, err := b.Feed(ctx, "cashier", FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Unread)

	n, err = b.MarkAllRead(ctx, "cashier", FilterAll)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	feed, err = b.Feed(ctx, "cashier", FilterAll)
	require.NoError(t, err)
	assert.Zero(t, feed.Unread)
}

func TestSystemNoticesJoinTheFeed(t *testing.T) {
	ctx := context.Background()
	inbox := NewInbox(&counter{}, 2)
	b := NewBuilder(&fakeSource{}, inbox, nil, 0)

	at := time.Date(2024, 10, 15, 8, 30, 0, 0, time.UTC)
	inbox.Push(ctx, "Maintenance", "Mirror offline tonight", "ops", at)
	inbox.Push(ctx, "Price update", "Drinks +5%", "ops", at)
	last := inbox.Push(ctx, "Holiday", "Closed tomorrow", "ops", at)

	assert.Len(t, inbox.Notices(), 2)

	feed, err := b.Feed(ctx, "admin", Filter(TypeSystem))
	require.NoError(t, err)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, last.ID, feed.Items[0].ID)
	assert.Equal(t, "08:30", feed.Items[0].Time)
}

func TestAlertIDsNeverCollideWithTimestamps(t *testing.T) {
	ts := time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Greater(t, AlertIDOffset, ts)
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]Filter{"": FilterAll, "all": FilterAll, "Alert": Filter(TypeAlert), "system": Filter(TypeSystem)} {
		got, err := ParseFilter(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFilter("promo")
	assert.Error(t, err)
}

func TestReadKey(t *testing.T) {
	assert.Equal(t, "pos:notifications:read:cashier", readKey("cashier"))
}
