package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each draft in a hash under "<prefix><session>:<page>".
// A positive TTL bounds the life of drafts nobody touches any more.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed draft store. Prefix may be empty.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "draft:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *RedisStore) key(k Key) string {
	return s.prefix + k.Session + ":" + k.Page
}

func (s *RedisStore) Get(ctx context.Context, key Key) (*Draft, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", key, err)
	}
	body, ok := fields["body"]
	if !ok {
		return nil, ErrNotFound
	}

	doc, err := decodeDocument(key.Page, body)
	if err != nil {
		return nil, err
	}
	return &Draft{
		Key:       key,
		Document:  doc,
		CreatedAt: parseTime(fields["created_at"]),
		UpdatedAt: parseTime(fields["updated_at"]),
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, doc content.Document) error {
	return s.PutAll(ctx, Entry{Key: key, Document: doc})
}

// PutAll writes every entry inside one MULTI/EXEC block.
func (s *RedisStore) PutAll(ctx context.Context, entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	bodies := make([]string, len(entries))
	for i, entry := range entries {
		body, err := encodeDocument(entry.Document)
		if err != nil {
			return err
		}
		bodies[i] = body
	}
	stamp := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, entry := range entries {
			k := s.key(entry.Key)
			pipe.HSetNX(ctx, k, "created_at", stamp)
			pipe.HSet(ctx, k, "body", bodies[i], "updated_at", stamp)
			if s.ttl > 0 {
				pipe.Expire(ctx, k, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store drafts: %w", err)
	}
	return nil
}

func (s *RedisStore) Discard(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("discard draft %s: %w", key, err)
	}
	return nil
}

// Sweep scans the prefix and deletes drafts older than before. With a TTL
// configured Redis expires most of them on its own.
func (s *RedisStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	removed := 0
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan drafts: %w", err)
		}
		for _, k := range keys {
			updated, err := s.client.HGet(ctx, k, "updated_at").Result()
			if err != nil && err != redis.Nil {
				return removed, fmt.Errorf("inspect draft %s: %w", k, err)
			}
			if parseTime(updated).Before(before) {
				if err := s.client.Del(ctx, k).Err(); err != nil {
					return removed, fmt.Errorf("sweep draft %s: %w", k, err)
				}
				removed++
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
