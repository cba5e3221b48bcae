package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the report service
const ServiceName = "pos.v1.ReportService"

const (
	methodDailyStats     = "/" + ServiceName + "/GetDailyStats"
	methodRangeStats     = "/" + ServiceName + "/GetRangeStats"
	methodFinanceSummary = "/" + ServiceName + "/GetFinanceSummary"
	methodCalendar       = "/" + ServiceName + "/GetCalendar"
)

// ReportServiceServer is the server API for the report service. Requests and
// replies are JSON-shaped structs so reporting clients need no generated
// stubs.
type ReportServiceServer interface {
	GetDailyStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRangeStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFinanceSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCalendar(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedReportServiceServer answers Unimplemented for every method
type UnimplementedReportServiceServer struct{}

func (UnimplementedReportServiceServer) GetDailyStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDailyStats not implemented")
}

func (UnimplementedReportServiceServer) GetRangeStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetRangeStats not implemented")
}

func (UnimplementedReportServiceServer) GetFinanceSummary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetFinanceSummary not implemented")
}

func (UnimplementedReportServiceServer) GetCalendar(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCalendar not implemented")
}

// RegisterReportServiceServer registers srv on s
func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

func unaryHandler(
	method string,
	call func(ReportServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(ReportServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ReportServiceDesc describes the report service for grpc.Server
var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetDailyStats",
			Handler:    unaryHandler(methodDailyStats, ReportServiceServer.GetDailyStats),
		},
		{
			MethodName: "GetRangeStats",
			Handler:    unaryHandler(methodRangeStats, ReportServiceServer.GetRangeStats),
		},
		{
			MethodName: "GetFinanceSummary",
			Handler:    unaryHandler(methodFinanceSummary, ReportServiceServer.GetFinanceSummary),
		},
		{
			MethodName: "GetCalendar",
			Handler:    unaryHandler(methodCalendar, ReportServiceServer.GetCalendar),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/report.proto",
}
