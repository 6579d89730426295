package loadtest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/bert-trt-helpers/pkg/client"
	"github.com/bert-trt-helpers/pkg/sink"
)

// Poster sends one encoded request body.
type Poster interface {
	PostRaw(ctx context.Context, body []byte) (*client.Response, error)
}

// Runner starts Workers goroutines that each post the same body Iterations
// times in sequence.
type Runner struct {
	Poster     Poster
	Sink       sink.Sink
	Workers    int
	Iterations int
	RunID      string
	Source     string
}

// Result aggregates a run. Success counts 2xx answers and Errors counts
// everything else. Latencies holds one entry per answered request, whatever
// its status.
type Result struct {
	Elapsed   time.Duration
	Success   int
	Errors    int
	Latencies []time.Duration
}

// Run blocks until every worker has finished. A non-2xx answer is counted and
// the worker moves on; a transport failure or ctx being done stops that
// worker. The errors of all workers are joined.
func (r *Runner) Run(ctx context.Context, body []byte) (Result, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		result  Result
		errs    = make([]error, r.Workers)
		started = time.Now()
	)

	for i := 0; i < r.Workers; i++ {
		wg.Add(1)
		activeWorkers.Inc()
		go func(id int) {
			defer wg.Done()
			defer activeWorkers.Dec()

			for seq := 0; seq < r.Iterations; seq++ {
				if err := ctx.Err(); err != nil {
					errs[id] = fmt.Errorf("worker %d: %w", id, err)
					return
				}

				resp, err := r.Poster.PostRaw(ctx, body)
				sample := sink.Sample{RunID: r.RunID, Source: r.Source, Worker: id, Seq: seq, Err: err}
				if err == nil {
					sample.Latency = resp.Latency
					sample.Status = resp.StatusCode
				}
				r.record(ctx, sample)

				mu.Lock()
				switch {
				case err != nil:
					result.Errors++
				case resp.OK():
					result.Success++
					result.Latencies = append(result.Latencies, resp.Latency)
				default:
					result.Errors++
					result.Latencies = append(result.Latencies, resp.Latency)
				}
				mu.Unlock()

				if err != nil {
					errs[id] = fmt.Errorf("worker %d request %d: %w", id, seq, err)
					return
				}
			}
		}(i)
	}

	wg.Wait()
	result.Elapsed = time.Since(started)
	return result, errors.Join(errs...)
}

func (r *Runner) record(ctx context.Context, s sink.Sample) {
	switch {
	case s.Err != nil:
		requestsTotal.WithLabelValues("error").Inc()
	case s.Status >= 200 && s.Status <= 299:
		requestsTotal.WithLabelValues("success").Inc()
		requestDuration.Observe(s.Latency.Seconds())
	default:
		requestsTotal.WithLabelValues("http_error").Inc()
		requestDuration.Observe(s.Latency.Seconds())
	}
	if r.Sink == nil {
		return
	}
	if err := r.Sink.Record(ctx, s); err != nil {
		log.Printf("failed to report sample: %v", err)
	}
}

func (r Result) Mean() time.Duration {
	if len(r.Latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range r.Latencies {
		total += l
	}
	return total / time.Duration(len(r.Latencies))
}

func (r Result) Min() time.Duration {
	return r.Percentile(0)
}

func (r Result) Max() time.Duration {
	return r.Percentile(100)
}

// Percentile uses the nearest-rank method; p is in [0, 100].
func (r Result) Percentile(p float64) time.Duration {
	if len(r.Latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), r.Latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	return sorted[max(rank, 0)]
}

// RPS is successful requests per second of wall-clock time.
func (r Result) RPS() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Success) / r.Elapsed.Seconds()
}
