package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tair/pos-core/pkg/logger"
)

var (
	ErrNoMatch = errors.New("no code found in frame")
	ErrBusy    = errors.New("scanner is in use")
)

// Decoder extracts barcode or QR text from one captured frame. A frame
// without a readable code yields ErrNoMatch, never a hard failure.
type Decoder interface {
	Decode(ctx context.Context, frame []byte) (string, error)
}

// TextFrameDecoder treats the frame as text already decoded by the client
// device, which is how browser and handheld scanners submit codes.
type TextFrameDecoder struct{}

func (TextFrameDecoder) Decode(_ context.Context, frame []byte) (string, error) {
	code := strings.TrimSpace(string(frame))
	if code == "" {
		return "", ErrNoMatch
	}
	return code, nil
}

// ScriptedDecoder replays a fixed list of results, one per frame. An empty
// entry is reported as ErrNoMatch.
type ScriptedDecoder struct {
	mu      sync.Mutex
	results []string
}

func NewScriptedDecoder(results ...string) *ScriptedDecoder {
	return &ScriptedDecoder{results: results}
}

func (d *ScriptedDecoder) Decode(ctx context.Context, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.results) == 0 {
		return "", ErrNoMatch
	}
	next := d.results[0]
	d.results = d.results[1:]
	if next == "" {
		return "", ErrNoMatch
	}
	return next, nil
}

// Device owns the capture device. At most one session is open at a time.
type Device struct {
	decoder Decoder
	sem     *semaphore.Weighted
}

func NewDevice(decoder Decoder) *Device {
	if decoder == nil {
		decoder = TextFrameDecoder{}
	}
	return &Device{
		decoder: decoder,
		sem:     semaphore.NewWeighted(1),
	}
}

// Open starts a capture session or fails with ErrBusy. The caller must
// Close the session on every path.
func (d *Device) Open(ctx context.Context) (*Session, error) {
	if !d.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	logger.Debug(ctx).Msg("Scanner session opened")
	return &Session{device: d}, nil
}

// Session is an exclusive hold on the scanner
type Session struct {
	device *Device
	once   sync.Once
}

func (s *Session) Decode(ctx context.Context, frame []byte) (string, error) {
	return s.device.decoder.Decode(ctx, frame)
}

// Close releases the device. Calling it more than once is harmless.
func (s *Session) Close() {
	s.once.Do(func() {
		s.device.sem.Release(1)
	})
}
