package sink

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/bert-trt-helpers/pkg/config"
)

const redisTTL = 24 * time.Hour

// FromConfig returns stdout plus every backend with a configured URL. Backends
// that were opened are closed again if a later one fails.
func FromConfig(ctx context.Context, cfg config.Config, out io.Writer) (Multi, error) {
	sinks := Multi{NewStdout(out)}

	if cfg.RedisURL != "" {
		r, err := NewRedis(cfg.RedisURL, redisTTL)
		if err != nil {
			sinks.Close()
			return nil, fmt.Errorf("redis sink: %w", err)
		}
		sinks = append(sinks, r)
		log.Printf("reporting latencies to redis")
	}
	if cfg.NatsURL != "" {
		n, err := NewNATS(cfg.NatsURL)
		if err != nil {
			sinks.Close()
			return nil, fmt.Errorf("nats sink: %w", err)
		}
		sinks = append(sinks, n)
		log.Printf("reporting latencies to nats")
	}
	if cfg.DatabaseURL != "" {
		p, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			sinks.Close()
			return nil, fmt.Errorf("postgres sink: %w", err)
		}
		sinks = append(sinks, p)
		log.Printf("reporting latencies to postgres")
	}
	return sinks, nil
}
