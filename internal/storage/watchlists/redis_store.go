package watchlists

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/vadiminshakov/coinboard/internal/domain"
)

// DefaultPrefix namespace for all keys written by RedisStore.
const DefaultPrefix = "coinboard:"

// RedisStore keeps watchlists as JSON in a hash, with a list holding insertion order.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and pings the server.
func NewRedisStore(ctx context.Context, addr, password string, db int, prefix string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis ping %s", addr)
	}

	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &RedisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisStore) dataKey() string  { return s.prefix + "watchlists" }
func (s *RedisStore) orderKey() string { return s.prefix + "watchlists:order" }

func (s *RedisStore) List(ctx context.Context) ([]domain.Watchlist, error) {
	ids, err := s.rdb.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read watchlist order")
	}
	if len(ids) == 0 {
		return []domain.Watchlist{}, nil
	}

	values, err := s.rdb.HMGet(ctx, s.dataKey(), ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read watchlists")
	}

	out := make([]domain.Watchlist, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// order entry without data, left behind by an interrupted delete
			continue
		}
		w, err := decode(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decode watchlist %s", ids[i])
		}
		out = append(out, w)
	}

	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (domain.Watchlist, error) {
	raw, err := s.rdb.HGet(ctx, s.dataKey(), id).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Watchlist{}, errors.Wrapf(domain.ErrNotFound, "watchlist %s", id)
	}
	if err != nil {
		return domain.Watchlist{}, errors.Wrapf(err, "read watchlist %s", id)
	}

	return decode(raw)
}

func (s *RedisStore) Insert(ctx context.Context, w domain.Watchlist) error {
	payload, err := json.Marshal(w.Clone())
	if err != nil {
		return errors.Wrap(err, "marshal watchlist")
	}

	created, err := s.rdb.HSetNX(ctx, s.dataKey(), w.ID, payload).Result()
	if err != nil {
		return errors.Wrapf(err, "insert watchlist %s", w.ID)
	}
	if !created {
		return errors.Errorf("watchlist %s already exists", w.ID)
	}

	if err := s.rdb.RPush(ctx, s.orderKey(), w.ID).Err(); err != nil {
		return errors.Wrapf(err, "append watchlist %s to order", w.ID)
	}

	return nil
}

func (s *RedisStore) Update(ctx context.Context, w domain.Watchlist) error {
	exists, err := s.rdb.HExists(ctx, s.dataKey(), w.ID).Result()
	if err != nil {
		return errors.Wrapf(err, "check watchlist %s", w.ID)
	}
	if !exists {
		return errors.Wrapf(domain.ErrNotFound, "watchlist %s", w.ID)
	}

	payload, err := json.Marshal(w.Clone())
	if err != nil {
		return errors.Wrap(err, "marshal watchlist")
	}

	return errors.Wrapf(s.rdb.HSet(ctx, s.dataKey(), w.ID, payload).Err(), "update watchlist %s", w.ID)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.dataKey(), id)
		pipe.LRem(ctx, s.orderKey(), 0, id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "delete watchlist %s", id)
	}
	if removed.Val() == 0 {
		return errors.Wrapf(domain.ErrNotFound, "watchlist %s", id)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func decode(raw string) (domain.Watchlist, error) {
	var w domain.Watchlist
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return domain.Watchlist{}, errors.Wrap(err, "unmarshal watchlist")
	}

	return w.Clone(), nil
}
