package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/domain"
)

// ReportServer exposes the aggregation engine over gRPC
type ReportServer struct {
	UnimplementedReportServiceServer

	engine *analytics.Engine
}

// NewReportServer creates a new gRPC report server
func NewReportServer(engine *analytics.Engine) *ReportServer {
	return &ReportServer{engine: engine}
}

// GetDailyStats returns the totals of one day. An empty date means today.
func (s *ReportServer) GetDailyStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date := stringField(req, "date")
	if date == "" {
		date = s.engine.Today()
	}
	stat, err := s.engine.StatsForDay(date)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(stat)
}

// GetRangeStats returns one entry per day of an inclusive range
func (s *ReportServer) GetRangeStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, end := stringField(req, "start"), stringField(req, "end")
	days, err := s.engine.StatsForRange(start, end)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"start": start, "end": end, "days": days})
}

// GetFinanceSummary returns the totals of the last n days
func (s *ReportServer) GetFinanceSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	days := int(numberField(req, "days"))
	if days <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "days must be positive")
	}
	return toStruct(s.engine.FinanceSummary(days))
}

// GetCalendar renders one calendar page
func (s *ReportServer) GetCalendar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	mode, err := analytics.ParseMode(stringField(req, "mode"))
	if err != nil {
		return nil, toStatus(err)
	}
	view, err := s.engine.Calendar(mode, stringField(req, "date"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(view)
}

func stringField(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	return req.GetFields()[name].GetStringValue()
}

func numberField(req *structpb.Struct, name string) float64 {
	if req == nil {
		return 0
	}
	return req.GetFields()[name].GetNumberValue()
}

// toStruct converts a report value through its JSON form
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode report: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode report: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode report: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, analytics.ErrInvalidRange),
		errors.Is(err, analytics.ErrInvalidMode):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprintf("failed to build report: %v", err))
}

// NewServer creates a gRPC server serving reports with reflection enabled
func NewServer(reports *ReportServer) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			AuthInterceptor,
			ObserveInterceptor,
		),
	)
	RegisterReportServiceServer(server, reports)
	reflection.Register(server)
	return server
}
