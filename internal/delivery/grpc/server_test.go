package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/pkg/auth"
)

type reportSource struct {
	now      time.Time
	orders   []domain.Order
	expenses []domain.Expense
}

func (r *reportSource) Now() time.Time             { return r.now }
func (r *reportSource) Orders() []domain.Order     { return r.orders }
func (r *reportSource) Expenses() []domain.Expense { return r.expenses }

func startReportServer(t *testing.T, token string) *ReportClient {
	t.Helper()
	auth.Configure("grpc-test-secret", time.Hour)

	items := []domain.OrderLineItem{{ProductID: 1, Name: "Cola", Price: 3.00, Cost: 1.80, Quantity: 4}}
	src := &reportSource{
		now: time.Date(2024, 10, 15, 18, 0, 0, 0, time.UTC),
		orders: []domain.Order{{
			ID:        "#100001",
			Timestamp: time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC).UnixMilli(),
			Amount:    12.00,
			Items:     items,
			Status:    domain.OrderPaid,
		}},
		expenses: []domain.Expense{
			{ID: 1, Name: "Ice", Amount: 2.00, Date: "2024-10-15", Category: domain.ExpenseOther},
		},
	}

	lis := bufconn.Listen(1 << 20)
	server := NewServer(NewReportServer(analytics.NewEngine(src)))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	client, err := NewReportClient("passthrough:///bufnet", token,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func operatorToken(t *testing.T) string {
	t.Helper()
	auth.Configure("grpc-test-secret", time.Hour)
	token, err := auth.GenerateToken(2, "cashier", "cashier")
	require.NoError(t, err)
	return token
}

func TestDailyStatsOverGRPC(t *testing.T) {
	client := startReportServer(t, operatorToken(t))
	ctx := context.Background()

	stat, err := client.DailyStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-10-15", stat.Date)
	assert.InDelta(t, 12.00, stat.Sales, 1e-9)
	assert.InDelta(t, 4.80, stat.Profit, 1e-9)
	assert.InDelta(t, 2.00, stat.Expenses, 1e-9)
	assert.Equal(t, 1, stat.OrderCount)

	_, err = client.DailyStats(ctx, "15/10/2024")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRangeAndCalendarOverGRPC(t *testing.T) {
	client := startReportServer(t, operatorToken(t))
	ctx := context.Background()

	days, err := client.RangeStats(ctx, "2024-10-13", "2024-10-15")
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-10-13", days[0].Date)

	_, err = client.RangeStats(ctx, "2024-10-15", "2024-10-13")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	view, err := client.Calendar(ctx, analytics.ModeMonth, "2024-10-01")
	require.NoError(t, err)
	assert.Len(t, view.Days, 31)
	assert.InDelta(t, 12.00, view.Summary.Sales, 1e-9)

	finance, err := client.FinanceSummary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, finance.OrderCount)
}

func TestReportsRequireToken(t *testing.T) {
	client := startReportServer(t, "")

	_, err := client.DailyStats(context.Background(), "")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestFinanceSummaryRejectsNonPositiveDays(t *testing.T) {
	client := startReportServer(t, operatorToken(t))

	_, err := client.FinanceSummary(context.Background(), 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestShortMethod(t *testing.T) {
	assert.Equal(t, "GetCalendar", shortMethod("/pos.v1.ReportService/GetCalendar"))
	assert.Equal(t, "GetDailyStats", shortMethod(methodDailyStats))
}
