package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReadState remembers which feed items each operator has seen
type ReadState interface {
	Seen(ctx context.Context, user string) (map[int64]bool, error)
	MarkSeen(ctx context.Context, user string, ids ...int64) error
}

// MemoryReadState keeps read markers in process memory
type MemoryReadState struct {
	mu   sync.RWMutex
	seen map[string]map[int64]bool
}

func NewMemoryReadState() *MemoryReadState {
	return &MemoryReadState{seen: make(map[string]map[int64]bool)}
}

func (m *MemoryReadState) Seen(_ context.Context, user string) (map[int64]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]bool, len(m.seen[user]))
	for id := range m.seen[user] {
		out[id] = true
	}
	return out, nil
}

func (m *MemoryReadState) MarkSeen(_ context.Context, user string, ids ...int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.seen[user]
	if !ok {
		set = make(map[int64]bool)
		m.seen[user] = set
	}
	for _, id := range ids {
		set[id] = true
	}
	return nil
}

// RedisReadState shares read markers between terminals through a Redis set
// per operator
type RedisReadState struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisReadState(client *redis.Client, ttl time.Duration) *RedisReadState {
	return &RedisReadState{redis: client, ttl: ttl}
}

func readKey(user string) string {
	return fmt.Sprintf("pos:notifications:read:%s", user)
}

func (r *RedisReadState) Seen(ctx context.Context, user string) (map[int64]bool, error) {
	members, err := r.redis.SMembers(ctx, readKey(user)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load read markers: %w", err)
	}

	out := make(map[int64]bool, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out[id] = true
	}
	return out, nil
}

func (r *RedisReadState) MarkSeen(ctx context.Context, user string, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatInt(id, 10)
	}

	key := readKey(user)
	pipe := r.redis.Pipeline()
	pipe.SAdd(ctx, key, members...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store read markers: %w", err)
	}
	return nil
}
