package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bert-trt-helpers/pkg/client"

type PredictClient struct {
	url    string
	client *http.Client
	tracer trace.Tracer
}

// New returns a client posting to url. A zero timeout means requests may
// block until the server answers.
func New(url string, timeout time.Duration) *PredictClient {
	return &PredictClient{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}
}

type Response struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// OK reports whether the server answered with a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Err returns a *StatusError for a non-2xx response and nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{StatusCode: r.StatusCode, Body: string(r.Body)}
}

// Outputs returns the raw JSON of the response's "outputs" field. A non-2xx
// response yields its *StatusError.
func (r *Response) Outputs() (json.RawMessage, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	outputs, ok := result["outputs"]
	if !ok {
		return nil, ErrMissingOutputs
	}
	return outputs, nil
}

// Predict encodes body as JSON and posts it.
func (c *PredictClient) Predict(ctx context.Context, body interface{}) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return c.PostRaw(ctx, data)
}

// PostRaw posts an already encoded JSON body. Latency covers sending the
// request and reading the full response body. A non-2xx answer is still a
// Response; only transport and read failures return an error.
func (c *PredictClient) PostRaw(ctx context.Context, data []byte) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "predict")
	defer span.End()
	span.SetAttributes(attribute.Int("request.size", len(data)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	out := &Response{StatusCode: resp.StatusCode, Body: body, Latency: latency}
	if !out.OK() {
		span.SetStatus(codes.Error, resp.Status)
	}
	return out, nil
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predict error: status %d: %s", e.StatusCode, e.Body)
}

var ErrMissingOutputs = &ClientError{Message: `response has no "outputs" field`}

type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return e.Message
}
