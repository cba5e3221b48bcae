package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/pos-core/internal/analytics"
)

// ReportClient wraps a gRPC connection to the report service
type ReportClient struct {
	conn  grpc.ClientConnInterface
	close func() error
	token string
}

// NewReportClient connects to the report service at address. The connection
// is established lazily on the first call.
func NewReportClient(address, token string, opts ...grpc.DialOption) (*ReportClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to report service: %w", err)
	}
	return &ReportClient{conn: conn, close: conn.Close, token: token}, nil
}

// Close closes the gRPC connection
func (c *ReportClient) Close() error {
	if c.close != nil {
		return c.close()
	}
	return nil
}

func (c *ReportClient) invoke(ctx context.Context, method string, req map[string]interface{}, dst interface{}) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", uuid.NewString())
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}

	raw, err := out.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}

// DailyStats fetches the totals of one day. An empty date means today.
func (c *ReportClient) DailyStats(ctx context.Context, date string) (analytics.DailyStat, error) {
	var stat analytics.DailyStat
	err := c.invoke(ctx, methodDailyStats, map[string]interface{}{"date": date}, &stat)
	return stat, err
}

// RangeStats fetches one entry per day between start and end
func (c *ReportClient) RangeStats(ctx context.Context, start, end string) ([]analytics.DailyStat, error) {
	var reply struct {
		Days []analytics.DailyStat `json:"days"`
	}
	err := c.invoke(ctx, methodRangeStats, map[string]interface{}{"start": start, "end": end}, &reply)
	return reply.Days, err
}

// FinanceSummary fetches the totals of the last days
func (c *ReportClient) FinanceSummary(ctx context.Context, days int) (analytics.Finance, error) {
	var finance analytics.Finance
	err := c.invoke(ctx, methodFinanceSummary, map[string]interface{}{"days": days}, &finance)
	return finance, err
}

// Calendar fetches one calendar page
func (c *ReportClient) Calendar(ctx context.Context, mode analytics.Mode, date string) (analytics.CalendarView, error) {
	var view analytics.CalendarView
	err := c.invoke(ctx, methodCalendar, map[string]interface{}{"mode": string(mode), "date": date}, &view)
	return view, err
}
