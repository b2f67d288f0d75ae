package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/zeroecho/pkg/cache"
)

// Store holds batches, the per-session article index, and the per-batch
// ledger of articles the duplicate phase has rejected.
type Store interface {
	Save(ctx context.Context, b *Batch) error
	Find(ctx context.Context, id uuid.UUID) (*Batch, error)

	// AddSession extends the session index with ids.
	AddSession(ctx context.Context, session string, ids []string) error
	// Session returns every ID recorded for the session.
	Session(ctx context.Context, session string) ([]string, error)

	// Rejected returns the article IDs the duplicate phase of a batch has
	// already rejected.
	Rejected(ctx context.Context, id uuid.UUID) ([]string, error)
	// MarkRejected adds articleIDs to the batch's duplicate ledger.
	MarkRejected(ctx context.Context, id uuid.UUID, articleIDs ...string) error
}

type redisStore struct {
	cache cache.System
	ttl   time.Duration
}

// NewRedisStore creates a Store backed by Redis. Every key expires after ttl.
func NewRedisStore(c cache.System, ttl time.Duration) Store {
	return &redisStore{cache: c, ttl: ttl}
}

func (s *redisStore) batchKey(id uuid.UUID) string {
	return s.cache.Key("batch", id.String())
}

func (s *redisStore) sessionKey(session string) string {
	return s.cache.Key("session", session)
}

func (s *redisStore) ledgerKey(id uuid.UUID) string {
	return s.cache.Key("ledger", id.String())
}

func (s *redisStore) Save(ctx context.Context, b *Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	if err := s.cache.Client().Set(ctx, s.batchKey(b.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store batch %s: %w", b.ID, err)
	}
	return nil
}

func (s *redisStore) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	data, err := s.cache.Client().Get(ctx, s.batchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("load batch %s: %w", id, err)
	}

	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", id, err)
	}
	return &b, nil
}

func (s *redisStore) AddSession(ctx context.Context, session string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	key := s.sessionKey(session)
	pipe := s.cache.Client().TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("extend session %s: %w", session, err)
	}
	return nil
}

func (s *redisStore) Session(ctx context.Context, session string) ([]string, error) {
	ids, err := s.cache.Client().SMembers(ctx, s.sessionKey(session)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", session, err)
	}
	return ids, nil
}

func (s *redisStore) Rejected(ctx context.Context, id uuid.UUID) ([]string, error) {
	ids, err := s.cache.Client().SMembers(ctx, s.ledgerKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", id, err)
	}
	return ids, nil
}

func (s *redisStore) MarkRejected(ctx context.Context, id uuid.UUID, articleIDs ...string) error {
	if len(articleIDs) == 0 {
		return nil
	}

	members := make([]any, len(articleIDs))
	for i, a := range articleIDs {
		members[i] = a
	}

	key := s.ledgerKey(id)
	pipe := s.cache.Client().TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("extend ledger %s: %w", id, err)
	}
	return nil
}
