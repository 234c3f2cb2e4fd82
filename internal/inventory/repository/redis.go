package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// RedisRepo keeps an entity as two keys: a list of ids in insertion order
// (<prefix><entity>:ids) and a hash of id -> JSON body (<prefix><entity>:records).
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisRepo creates a Redis-backed repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "rfi:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) idsKey(entity string) string     { return r.prefix + entity + ":ids" }
func (r *RedisRepo) recordsKey(entity string) string { return r.prefix + entity + ":records" }

func (r *RedisRepo) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	ids, err := r.client.LRange(ctx, r.idsKey(entity), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		n, err := r.client.Exists(ctx, r.recordsKey(entity)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNoCollection
		}
		return []inventory.Record{}, nil
	}
	vals, err := r.client.HMGet(ctx, r.recordsKey(entity), ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]inventory.Record, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := inventory.ParseRecord([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisRepo) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	s, err := r.client.HGet(ctx, r.recordsKey(entity), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inventory.ParseRecord([]byte(s))
}

func (r *RedisRepo) Insert(ctx context.Context, entity string, rec inventory.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := r.client.HSetNX(ctx, r.recordsKey(entity), rec.ID(), body).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicateID
	}
	return r.client.RPush(ctx, r.idsKey(entity), rec.ID()).Err()
}

func (r *RedisRepo) Replace(ctx context.Context, entity, id string, rec inventory.Record) error {
	exists, err := r.client.HExists(ctx, r.recordsKey(entity), id).Result()
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.recordsKey(entity), id, body).Err()
}

func (r *RedisRepo) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// Close is a no-op; the client is owned by the caller.
func (r *RedisRepo) Close() error { return nil }
