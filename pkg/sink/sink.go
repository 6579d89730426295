// Package sink reports per-request round-trip samples to stdout and,
// optionally, to Redis, NATS and Postgres.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

type Sample struct {
	RunID   string
	Source  string
	Worker  int
	Seq     int
	Latency time.Duration
	Status  int
	Err     error
}

// Millis is the latency in fractional milliseconds.
func (s Sample) Millis() float64 {
	return float64(s.Latency) / float64(time.Millisecond)
}

type Sink interface {
	Record(ctx context.Context, s Sample) error
	Close() error
}

// Stdout prints one "rest cost :<ms>" line per successful sample.
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Record(_ context.Context, sample Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sample.Err != nil {
		_, err := fmt.Fprintf(s.w, "rest error (worker %d, request %d): %v\n", sample.Worker, sample.Seq, sample.Err)
		return err
	}
	_, err := fmt.Fprintf(s.w, "rest cost :%v\n", sample.Millis())
	return err
}

func (s *Stdout) Close() error { return nil }

// Multi fans each sample out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Record(ctx context.Context, s Sample) error {
	var errs []error
	for _, sk := range m {
		if err := sk.Record(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, sk := range m {
		if err := sk.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
