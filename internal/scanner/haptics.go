package scanner

import (
	"context"
	"time"

	"github.com/tair/pos-core/pkg/logger"
)

// Vibration patterns alternate on and pause durations
var (
	SuccessPattern = []time.Duration{200 * time.Millisecond}
	FailurePattern = []time.Duration{100 * time.Millisecond, 50 * time.Millisecond, 100 * time.Millisecond}
)

// Haptics gives best-effort physical feedback on the operator device
type Haptics interface {
	Vibrate(ctx context.Context, pattern ...time.Duration)
}

// LogHaptics records vibration requests in the log for headless terminals
type LogHaptics struct{}

func (LogHaptics) Vibrate(ctx context.Context, pattern ...time.Duration) {
	ms := make([]int64, len(pattern))
	for i, d := range pattern {
		ms[i] = d.Milliseconds()
	}
	logger.Debug(ctx).Ints64("pattern_ms", ms).Msg("Vibrate")
}
