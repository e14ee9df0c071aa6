package aggregation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitalink/vitalink-core/internal/metrics"
)

const defaultRedisKeyPrefix = "vitalink:aggregation:pending"

// RedisQueue is a PendingQueue that survives process restarts.
// A sorted set orders window keys by next attempt (unix millis); a hash keyed by the
// same window key holds the JSON-encoded PendingWindow. Conditional writes use
// WATCH on the hash so that replicas sharing the queue do not lose each other's failures.
type RedisQueue struct {
	client  redis.UniversalClient
	zsetKey string
	hashKey string
	metrics *metrics.Metrics
}

var _ PendingQueue = (*RedisQueue)(nil)

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisQueue creates a queue under the given key prefix (default prefix when empty).
func NewRedisQueue(client redis.UniversalClient, prefix string, m *metrics.Metrics) *RedisQueue {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &RedisQueue{
		client:  client,
		zsetKey: prefix + ":schedule",
		hashKey: prefix + ":windows",
		metrics: m,
	}
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// maxWatchRetries bounds optimistic transaction retries under contention.
const maxWatchRetries = 10

// queueWrite is the outcome of a conditional update: put a new state, delete the entry,
// or (zero value) leave it alone.
type queueWrite struct {
	put *PendingWindow
	del bool
}

// update reads member under WATCH, lets apply decide the new state and commits it in
// MULTI/EXEC. A concurrent change to the hash aborts the transaction and apply runs
// again on the fresh state.
func (q *RedisQueue) update(ctx context.Context, op, member string, apply func(cur *PendingWindow) queueWrite) error {
	txf := func(tx *redis.Tx) error {
		cur, err := q.load(ctx, tx, member)
		if err != nil {
			return err
		}
		w := apply(cur)
		if w.put == nil && !w.del {
			return nil
		}

		var payload []byte
		if w.put != nil {
			if payload, err = json.Marshal(w.put); err != nil {
				return fmt.Errorf("marshal pending window: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if w.del {
				pipe.ZRem(ctx, q.zsetKey, member)
				pipe.HDel(ctx, q.hashKey, member)
				return nil
			}
			pipe.HSet(ctx, q.hashKey, member, payload)
			pipe.ZAdd(ctx, q.zsetKey, redis.Z{Score: score(w.put.NextAttemptAt), Member: member})
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxWatchRetries; i++ {
		err = q.client.Watch(ctx, txf, q.hashKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		slog.Debug("[RetryQueue] Concurrent update, retrying", "op", op, "window", member, "attempt", i+1)
	}
	q.metrics.ObserveRedis(op, err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, member, err)
	}
	return nil
}

func (q *RedisQueue) load(ctx context.Context, tx *redis.Tx, member string) (*PendingWindow, error) {
	raw, err := tx.HGet(ctx, q.hashKey, member).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pw PendingWindow
	if err := json.Unmarshal([]byte(raw), &pw); err != nil {
		return nil, fmt.Errorf("decode pending window %s: %w", member, err)
	}
	return &pw, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, pw PendingWindow) error {
	return q.update(ctx, "enqueue", pw.Window.String(), func(cur *PendingWindow) queueWrite {
		if cur != nil {
			next := cur.merge(pw)
			return queueWrite{put: &next}
		}
		next := pw
		next.Version = 1
		return queueWrite{put: &next}
	})
}

func (q *RedisQueue) Due(ctx context.Context, now time.Time, limit int) ([]PendingWindow, error) {
	members, err := q.client.ZRangeByScore(ctx, q.zsetKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	q.metrics.ObserveRedis("due", err)
	if err != nil {
		return nil, fmt.Errorf("read due windows: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	values, err := q.client.HMGet(ctx, q.hashKey, members...).Result()
	q.metrics.ObserveRedis("load", err)
	if err != nil {
		return nil, fmt.Errorf("load due windows: %w", err)
	}

	due := make([]PendingWindow, 0, len(members))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Schedule entry without state: drop it rather than spin on it every tick.
			slog.Warn("[RetryQueue] Dropping orphaned schedule entry", "window", members[i])
			if err := q.client.ZRem(ctx, q.zsetKey, members[i]).Err(); err != nil {
				slog.Debug("[RetryQueue] Failed to drop orphaned schedule entry", "window", members[i], "error", err)
			}
			continue
		}
		var pw PendingWindow
		if err := json.Unmarshal([]byte(raw), &pw); err != nil {
			return nil, fmt.Errorf("decode pending window %s: %w", members[i], err)
		}
		due = append(due, pw)
	}
	return due, nil
}

func (q *RedisQueue) Lookup(ctx context.Context, windows []Window) ([]PendingWindow, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	members := make([]string, len(windows))
	for i, w := range windows {
		members[i] = w.String()
	}

	values, err := q.client.HMGet(ctx, q.hashKey, members...).Result()
	q.metrics.ObserveRedis("lookup", err)
	if err != nil {
		return nil, fmt.Errorf("lookup pending windows: %w", err)
	}

	var out []PendingWindow
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var pw PendingWindow
		if err := json.Unmarshal([]byte(raw), &pw); err != nil {
			return nil, fmt.Errorf("decode pending window %s: %w", members[i], err)
		}
		out = append(out, pw)
	}
	return out, nil
}

func (q *RedisQueue) Reschedule(ctx context.Context, pw PendingWindow) error {
	return q.update(ctx, "reschedule", pw.Window.String(), func(cur *PendingWindow) queueWrite {
		if cur == nil || cur.Version != pw.Version {
			return queueWrite{}
		}
		return queueWrite{put: &pw}
	})
}

func (q *RedisQueue) Remove(ctx context.Context, pw PendingWindow) error {
	return q.update(ctx, "remove", pw.Window.String(), func(cur *PendingWindow) queueWrite {
		if cur == nil || cur.Version != pw.Version {
			return queueWrite{}
		}
		return queueWrite{del: true}
	})
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.ZCard(ctx, q.zsetKey).Result()
	q.metrics.ObserveRedis("len", err)
	if err != nil {
		return 0, fmt.Errorf("count pending windows: %w", err)
	}
	return int(n), nil
}
