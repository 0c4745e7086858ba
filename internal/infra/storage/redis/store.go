package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"pgfinder/internal/infra/storage/kv"
)

type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store keeps every kv key as a plain Redis string. Batches run in MULTI/EXEC.
type Store struct {
	client *goredis.Client
	prefix string
}

func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func NewStore(client *goredis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return raw, nil
}

func (s *Store) Apply(ctx context.Context, ops []kv.Op) error {
	if len(ops) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, op := range ops {
			key := s.prefix + op.Key
			if op.Delete {
				pipe.Del(ctx, key)
				continue
			}
			// zero expiration keeps the key forever
			pipe.Set(ctx, key, op.Value, op.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: apply %d ops: %w", len(ops), err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ kv.Store = (*Store)(nil)
