package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DraftStore is the key-value backing for persisted listing drafts.
type DraftStore struct {
	client *goredis.Client
}

func NewDraftStore(client *goredis.Client) *DraftStore {
	return &DraftStore{client: client}
}

func (s *DraftStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, fmt.Errorf("draft key is empty")
	}

	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get draft: %w", err)
	}
	return value, true, nil
}

// Set writes value; ttl <= 0 keeps the key until deleted.
func (s *DraftStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("draft key is empty")
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set draft: %w", err)
	}
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
