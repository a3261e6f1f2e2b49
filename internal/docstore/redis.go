package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const maxReplaceAttempts = 8

type redisRecord struct {
	Version  int64    `json:"version"`
	Document Document `json:"document"`
}

// Redis keeps each document as a JSON record under board:{id}. Writes use
// optimistic transactions and are announced on the key's channel.
type Redis struct {
	logger *slog.Logger
	client *redis.Client
}

func NewRedis(logger *slog.Logger, client *redis.Client) *Redis {
	return &Redis{logger: logger, client: client}
}

func redisKey(id string) string {
	return "board:" + id
}

func (r *Redis) Create(ctx context.Context, id string, doc Document) (int64, error) {
	data, err := json.Marshal(redisRecord{Version: 1, Document: doc})
	if err != nil {
		return 0, err
	}
	ok, err := r.client.SetNX(ctx, redisKey(id), data, 0).Result()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrExists
	}
	if err := r.client.Publish(ctx, redisKey(id), 1).Err(); err != nil {
		r.logger.Warn("unable to announce board", slog.String("card_id", id), slog.Any("error", err))
	}
	return 1, nil
}

func (r *Redis) Get(ctx context.Context, id string) (*Snapshot, error) {
	rec, err := r.read(ctx, r.client, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{ID: id, Version: rec.Version, Document: rec.Document}, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) read(ctx context.Context, c stringGetter, id string) (*redisRecord, error) {
	data, err := c.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt board record %s: %w", id, err)
	}
	return &rec, nil
}

func (r *Redis) Replace(
	ctx context.Context, id string, fields Document, expect int64,
) (int64, error) {
	key := redisKey(id)
	var version int64

	txf := func(tx *redis.Tx) error {
		rec, err := r.read(ctx, tx, id)
		if err != nil {
			return err
		}
		if expect != AnyVersion && rec.Version != expect {
			return ErrStaleVersion
		}
		rec.Document = rec.Document.merge(fields)
		rec.Version++
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Publish(ctx, key, rec.Version)
			return nil
		})
		version = rec.Version
		return err
	}

	for range maxReplaceAttempts {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			if expect != AnyVersion {
				return 0, ErrStaleVersion
			}
			continue
		}
		if err != nil {
			return 0, err
		}
		return version, nil
	}
	return 0, fmt.Errorf("board %s: %w", id, ErrStaleVersion)
}

func (r *Redis) Subscribe(ctx context.Context, id string) (<-chan Snapshot, error) {
	pubsub := r.client.Subscribe(ctx, redisKey(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	ch := make(chan Snapshot, 1)
	if s, err := r.Get(ctx, id); err == nil {
		ch <- *s
	} else if !errors.Is(err, ErrNotFound) {
		pubsub.Close()
		return nil, err
	}

	go func() {
		defer close(ch)
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				s, err := r.Get(ctx, id)
				if err != nil {
					r.logger.Warn(
						"unable to fetch notified board",
						slog.String("card_id", id),
						slog.Any("error", err),
					)
					continue
				}
				offer(ch, *s)
			}
		}
	}()

	return ch, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
