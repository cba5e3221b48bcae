package notification

import (
	"context"
	"sync"
	"time"

	"github.com/tair/pos-core/pkg/logger"
)

// IDSource hands out identifiers that do not collide with store ids
type IDSource interface {
	NextID() int64
}

// Inbox holds the most recent system notices, newest first
type Inbox struct {
	ids   IDSource
	limit int

	mu      sync.RWMutex
	notices []Notice
}

func NewInbox(ids IDSource, limit int) *Inbox {
	if limit <= 0 {
		limit = DefaultWindow
	}
	return &Inbox{ids: ids, limit: limit}
}

// Push stores a notice under a fresh identifier
func (in *Inbox) Push(ctx context.Context, title, message, source string, at time.Time) Notice {
	n := Notice{
		ID:        in.ids.NextID(),
		Title:     title,
		Message:   message,
		Source:    source,
		CreatedAt: at,
	}

	in.mu.Lock()
	in.notices = append([]Notice{n}, in.notices...)
	if len(in.notices) > in.limit {
		in.notices = in.notices[:in.limit]
	}
	in.mu.Unlock()

	logger.Info(ctx).
		Int64("notice_id", n.ID).
		Str("source", source).
		Str("title", title).
		Msg("System notice received")
	return n
}

func (in *Inbox) Notices() []Notice {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]Notice(nil), in.notices...)
}
