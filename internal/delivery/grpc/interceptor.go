package grpc

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tair/pos-core/pkg/auth"
	"github.com/tair/pos-core/pkg/logger"
)

var (
	reportCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_grpc_report_calls_total",
			Help: "Report RPCs by method and status code",
		},
		[]string{"method", "code"},
	)

	reportLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_grpc_report_duration_seconds",
			Help:    "Report RPC latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(reportCalls, reportLatency)
}

type claimsKey struct{}

// ClaimsFromContext returns the operator authenticated by AuthInterceptor
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// shortMethod turns "/pos.v1.ReportService/GetCalendar" into "GetCalendar"
func shortMethod(fullMethod string) string {
	return path.Base(fullMethod)
}

// AuthInterceptor requires a valid operator token in the authorization
// metadata and carries the caller's x-request-id into the logging context
func AuthInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	if ids := md.Get("x-request-id"); len(ids) > 0 {
		ctx = logger.ContextWithRequestID(ctx, ids[0])
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		reportCalls.WithLabelValues(shortMethod(info.FullMethod), codes.Unauthenticated.String()).Inc()
		return nil, status.Error(codes.Unauthenticated, "authorization token not provided")
	}
	claims, err := auth.ValidateToken(strings.TrimPrefix(values[0], "Bearer "))
	if err != nil {
		logger.Warn(ctx).Str("method", info.FullMethod).Err(err).Msg("Rejected report call")
		reportCalls.WithLabelValues(shortMethod(info.FullMethod), codes.Unauthenticated.String()).Inc()
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return handler(context.WithValue(ctx, claimsKey{}, claims), req)
}

// ObserveInterceptor records latency and outcome of every authenticated call
func ObserveInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	method := shortMethod(info.FullMethod)
	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	reportCalls.WithLabelValues(method, code.String()).Inc()
	reportLatency.WithLabelValues(method).Observe(elapsed.Seconds())

	event := logger.Info(ctx)
	if err != nil {
		event = logger.Error(ctx).Err(err)
		if code == codes.InvalidArgument {
			event = logger.Warn(ctx).Err(err)
		}
	}
	if claims, ok := ClaimsFromContext(ctx); ok {
		event = event.Str("operator", claims.Username)
	}
	event.
		Str("method", method).
		Str("code", code.String()).
		Dur("duration", elapsed).
		Msg("Report call")
	return resp, err
}
