package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tair/pos-core/pkg/logger"
)

// MirrorStatus reports the replication state of one mirror
type MirrorStatus struct {
	Name        string       `json:"name"`
	State       CircuitState `json:"state"`
	Pending     int          `json:"pending"`
	LastError   string       `json:"last_error,omitempty"`
	LastSuccess time.Time    `json:"last_success,omitempty"`
}

// replica serializes writes to one mirror. Writes that fail stay in a FIFO
// outbox and are retried before any newer write reaches the mirror.
type replica struct {
	mirror      Mirror
	breaker     *CircuitBreaker
	maxOutbox   int
	maxAttempts int

	mu          sync.Mutex
	outbox      []operation
	lastErr     error
	lastSuccess time.Time
}

func newReplica(m Mirror, cfg Config) *replica {
	return &replica{
		mirror:      m,
		breaker:     NewCircuitBreaker(m.Name(), cfg.BreakerFailures, cfg.BreakerTimeout),
		maxOutbox:   cfg.MaxOutbox,
		maxAttempts: cfg.MaxAttempts,
	}
}

// submit queues ops behind anything already pending and drains the outbox
func (r *replica) submit(ctx context.Context, ops []operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.outbox = append(r.outbox, ops...)
	r.trim(ctx)
	return r.drain(ctx)
}

// flush retries whatever is pending
func (r *replica) flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.outbox)
	err := r.drain(ctx)
	return before - len(r.outbox), err
}

// drain must be called with r.mu held
func (r *replica) drain(ctx context.Context) error {
	defer mirrorPending.WithLabelValues(r.mirror.Name()).Set(float64(len(r.outbox)))

	for len(r.outbox) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		op := r.outbox[0]
		err := r.breaker.Call(func() error {
			return op.apply(ctx, r.mirror)
		})
		if err == nil {
			r.outbox = r.outbox[1:]
			r.lastErr = nil
			r.lastSuccess = time.Now()
			continue
		}

		r.lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			return fmt.Errorf("%w (%s): %w", ErrMirror, r.mirror.Name(), err)
		}

		mirrorFailures.WithLabelValues(r.mirror.Name(), string(op.kind)).Inc()
		op.attempts++
		r.outbox[0] = op

		if r.maxAttempts > 0 && op.attempts >= r.maxAttempts {
			r.outbox = r.outbox[1:]
			mirrorDropped.WithLabelValues(r.mirror.Name()).Inc()
			logger.Error(ctx).
				Err(err).
				Str("mirror", r.mirror.Name()).
				Str("operation", string(op.kind)).
				Int("attempts", op.attempts).
				Msg("Dropping mirror write after repeated failures, resync required")
		}

		logger.Warn(ctx).
			Err(err).
			Str("mirror", r.mirror.Name()).
			Str("operation", string(op.kind)).
			Int("pending", len(r.outbox)).
			Msg("Mirror write failed, queued for retry")
		return fmt.Errorf("%w (%s): %w", ErrMirror, r.mirror.Name(), err)
	}
	return nil
}

// trim drops the oldest pending writes once the outbox is full
func (r *replica) trim(ctx context.Context) {
	if r.maxOutbox <= 0 || len(r.outbox) <= r.maxOutbox {
		return
	}
	dropped := len(r.outbox) - r.maxOutbox
	r.outbox = append([]operation(nil), r.outbox[dropped:]...)
	mirrorDropped.WithLabelValues(r.mirror.Name()).Add(float64(dropped))
	logger.Warn(ctx).
		Str("mirror", r.mirror.Name()).
		Int("dropped", dropped).
		Msg("Mirror outbox full, oldest writes dropped")
}

// replace pushes a full snapshot and discards the outbox on success. The
// snapshot is taken under the replica lock so no write submitted to this
// mirror can fall between the snapshot and the outbox reset.
func (r *replica) replace(ctx context.Context, snapshot func() Snapshot) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := snapshot()
	var err error
	if sm, ok := r.mirror.(SnapshotMirror); ok {
		err = sm.ReplaceAll(ctx, snap)
	} else {
		err = replay(ctx, r.mirror, snap)
	}
	if err != nil {
		r.lastErr = err
		mirrorFailures.WithLabelValues(r.mirror.Name(), "resync").Inc()
		return snap, fmt.Errorf("%w (%s): resync: %w", ErrMirror, r.mirror.Name(), err)
	}

	r.outbox = nil
	r.lastErr = nil
	r.lastSuccess = time.Now()
	r.breaker.Reset()
	mirrorPending.WithLabelValues(r.mirror.Name()).Set(0)
	return snap, nil
}

func replay(ctx context.Context, m Mirror, snap Snapshot) error {
	for _, p := range snap.Products {
		if err := m.UpsertProduct(ctx, p); err != nil {
			return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
		}
	}
	for _, o := range snap.Orders {
		if err := m.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("failed to insert order %s: %w", o.ID, err)
		}
	}
	for _, e := range snap.Expenses {
		if err := m.InsertExpense(ctx, e); err != nil {
			return fmt.Errorf("failed to insert expense %d: %w", e.ID, err)
		}
	}
	return nil
}

func (r *replica) status() MirrorStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := MirrorStatus{
		Name:        r.mirror.Name(),
		State:       r.breaker.State(),
		Pending:     len(r.outbox),
		LastSuccess: r.lastSuccess,
	}
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
	}
	return st
}
