package sink

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis appends each latency (milliseconds) to the list "loadtest:<run>:latency"
// and counts failures in "loadtest:<run>:errors".
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opts), ttl: ttl}, nil
}

func LatencyKey(runID string) string {
	return "loadtest:" + runID + ":latency"
}

func ErrorsKey(runID string) string {
	return "loadtest:" + runID + ":errors"
}

func (r *Redis) Record(ctx context.Context, s Sample) error {
	pipe := r.client.Pipeline()
	if s.Err != nil {
		pipe.Incr(ctx, ErrorsKey(s.RunID))
		pipe.Expire(ctx, ErrorsKey(s.RunID), r.ttl)
	} else {
		pipe.RPush(ctx, LatencyKey(s.RunID), strconv.FormatFloat(s.Millis(), 'f', 3, 64))
		pipe.Expire(ctx, LatencyKey(s.RunID), r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Close() error {
	return r.client.Close()
}
