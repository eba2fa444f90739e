package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/valuechain/pkg/errors"
)

// RedisConfig configures [NewRedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every document id to form the key.
	Prefix string
	// TTL expires documents after the given duration; zero keeps them.
	TTL time.Duration
}

// DefaultRedisPrefix is used when RedisConfig.Prefix is empty.
const DefaultRedisPrefix = "valuechain:"

// RedisStore keeps each snapshot as a JSON string under prefix+id.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to redis at %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of the client and closes it in Close.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.key(id)).Bytes()
		if err != nil {
			return redisErr(err)
		}
		data = b
		return nil
	})
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis get %s", id)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse document %q", id)
	}
	snap.ID = id
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateDocumentID(snap.ID); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal document")
	}
	err = RetryWithBackoff(ctx, func() error {
		return redisErr(s.client.Set(ctx, s.key(snap.ID), data, s.ttl).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis set %s", snap.ID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	err := RetryWithBackoff(ctx, func() error {
		return redisErr(s.client.Del(ctx, s.key(id)).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis del %s", id)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis scan")
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

// redisErr marks transient failures as retryable. A missing key is an
// answer, not a failure.
func redisErr(err error) error {
	if err == nil || stderrors.Is(err, redis.Nil) || stderrors.Is(err, context.Canceled) {
		return err
	}
	return Retryable(err)
}

var _ Store = (*RedisStore)(nil)
