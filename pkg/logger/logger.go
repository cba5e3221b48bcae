package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide logger. It discards everything until Setup runs.
var Logger = zerolog.Nop()

// Options describes how the process logs
type Options struct {
	Service     string
	Version     string
	Environment string
	Level       string
	// Console switches to human readable output
	Console bool
	// Output defaults to stdout
	Output io.Writer
}

type requestIDKey struct{}

// Setup replaces the global logger
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	fields := zerolog.New(out).Level(level).With().Timestamp().Str("service", opts.Service)
	if opts.Version != "" {
		fields = fields.Str("version", opts.Version)
	}
	if opts.Environment != "" {
		fields = fields.Str("env", opts.Environment)
	}
	Logger = fields.Logger()
	log.Logger = Logger
}

// ContextWithRequestID tags every line logged through ctx with the request id
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the id stored by ContextWithRequestID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the global logger enriched with the request id and the
// active span
func FromContext(ctx context.Context) *zerolog.Logger {
	fields := Logger.With()
	if id := RequestID(ctx); id != "" {
		fields = fields.Str("request_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = fields.
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String())
	}
	l := fields.Logger()
	return &l
}

func Info(ctx context.Context) *zerolog.Event  { return FromContext(ctx).Info() }
func Error(ctx context.Context) *zerolog.Event { return FromContext(ctx).Error() }
func Debug(ctx context.Context) *zerolog.Event { return FromContext(ctx).Debug() }
func Warn(ctx context.Context) *zerolog.Event  { return FromContext(ctx).Warn() }
