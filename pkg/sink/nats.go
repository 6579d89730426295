package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

type RoundTripEvent struct {
	EventType string    `json:"event_type"`
	RunID     string    `json:"run_id"`
	Source    string    `json:"source,omitempty"`
	Worker    int       `json:"worker"`
	Seq       int       `json:"seq"`
	LatencyMS float64   `json:"latency_ms"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type publisher interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// NATS publishes a RoundTripEvent per sample on "loadtest.roundtrips.<run>".
type NATS struct {
	nc publisher
}

func NewNATS(url string) (*NATS, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATS{nc: nc}, nil
}

func Subject(runID string) string {
	return "loadtest.roundtrips." + runID
}

func newEvent(s Sample) RoundTripEvent {
	ev := RoundTripEvent{
		EventType: "roundtrip",
		RunID:     s.RunID,
		Source:    s.Source,
		Worker:    s.Worker,
		Seq:       s.Seq,
		LatencyMS: s.Millis(),
		Status:    s.Status,
		Timestamp: time.Now(),
	}
	if s.Err != nil {
		ev.Error = s.Err.Error()
	}
	return ev
}

func (n *NATS) Record(_ context.Context, s Sample) error {
	data, err := json.Marshal(newEvent(s))
	if err != nil {
		return err
	}
	return n.nc.Publish(Subject(s.RunID), data)
}

func (n *NATS) Close() error {
	if n.nc == nil {
		return nil
	}
	err := n.nc.Flush()
	n.nc.Close()
	return err
}
