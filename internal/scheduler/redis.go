package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const DefaultRedisKey = "delivery:lifecycle:tasks"

var _ Scheduler = (*RedisScheduler)(nil)

// RedisScheduler persists tasks in a sorted set scored by due time in milliseconds, so
// pending transitions survive a restart. Several instances may poll the same key: a task
// is handled by whichever instance removes it first.
type RedisScheduler struct {
	rdb          *goredis.Client
	key          string
	pollInterval time.Duration
	batch        int64
}

func NewRedisScheduler(rdb *goredis.Client, key string, pollInterval time.Duration) *RedisScheduler {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisScheduler{
		rdb:          rdb,
		key:          key,
		pollInterval: pollInterval,
		batch:        50,
	}
}

func (s *RedisScheduler) Schedule(ctx context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	err = s.rdb.ZAdd(ctx, s.key, &goredis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: string(data),
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule task %s: %w", task.ID, err)
	}
	return nil
}

func (s *RedisScheduler) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if err := s.poll(ctx, h); err != nil && ctx.Err() == nil {
			log.Printf("scheduler: poll %s: %v", s.key, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *RedisScheduler) poll(ctx context.Context, h Handler) error {
	due, err := s.rdb.ZRangeByScore(ctx, s.key, &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(time.Now().UnixMilli(), 10),
		Count: s.batch,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range due {
		removed, err := s.rdb.ZRem(ctx, s.key, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			// another instance claimed it
			continue
		}

		var task Task
		if err := json.Unmarshal([]byte(member), &task); err != nil {
			log.Printf("scheduler: dropping undecodable task %q: %v", member, err)
			continue
		}
		h(ctx, task)
	}
	return nil
}

// Pending returns how many tasks are waiting, due or not.
func (s *RedisScheduler) Pending(ctx context.Context) (int64, error) {
	return s.rdb.ZCard(ctx, s.key).Result()
}
