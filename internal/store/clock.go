package store

import (
	"sync"
	"time"

	"github.com/tair/pos-core/internal/domain"
)

// idClock issues strictly increasing millisecond identifiers. Products,
// expenses and order timestamps all come from it, so identifiers drawn
// for different entity kinds never collide inside one store.
type idClock struct {
	mu   sync.Mutex
	now  func() time.Time
	loc  *time.Location
	last int64
}

func newIDClock(now func() time.Time, loc *time.Location) *idClock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &idClock{now: now, loc: loc}
}

func (c *idClock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *idClock) Today() string {
	return domain.DayKey(c.Now())
}

func (c *idClock) NextID() int64 {
	ms := c.now().UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}

// observe keeps identifiers loaded from a mirror ahead of the generator
func (c *idClock) observe(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id > c.last {
		c.last = id
	}
}
