package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotFound = errors.New("draft not found")

// Store keeps drafts per owner until they are submitted, discarded or expire.
type Store interface {
	Get(ctx context.Context, owner, id string) (Draft, error)
	Save(ctx context.Context, owner string, d Draft) error
	Delete(ctx context.Context, owner, id string) error
}

func key(owner, id string) string {
	return "draft:" + owner + ":" + id
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, owner, id string) (Draft, error) {
	raw, err := s.client.Get(ctx, key(owner, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// Save refreshes the TTL on every write.
func (s *RedisStore) Save(ctx context.Context, owner string, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, key(owner, d.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, owner, id string) error {
	return s.client.Del(ctx, key(owner, id)).Err()
}

type memoryItem struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is used when Redis is not configured and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryItem), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, owner, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(owner, id)
	item, ok := s.items[k]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if s.ttl > 0 && !s.now().Before(item.expires) {
		delete(s.items, k)
		return Draft{}, ErrNotFound
	}
	var d Draft
	if err := json.Unmarshal(item.raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func (s *MemoryStore) Save(_ context.Context, owner string, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	s.mu.Lock()
	s.items[key(owner, d.ID)] = memoryItem{raw: raw, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	delete(s.items, key(owner, id))
	s.mu.Unlock()
	return nil
}
