package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds the endpoint, payload shape and reporting targets shared by
// the qps and replay tools.
type Config struct {
	URL           string   `json:"url"`
	SignatureName string   `json:"signature_name"`
	MaxSeqLen     int      `json:"max_seq_len"`
	BatchSize     int      `json:"batch_size"`
	InputIDs      []int32  `json:"input_ids,omitempty"`
	InputMask     []int32  `json:"input_mask,omitempty"`
	SegmentIDs    []int32  `json:"segment_ids,omitempty"`
	Workers       int      `json:"workers"`
	Iterations    int      `json:"iterations"`
	Timeout       Duration `json:"timeout"`

	ListFile     string `json:"list_file"`
	OutputSuffix string `json:"output_suffix"`

	MetricsAddr  string `json:"metrics_addr"`
	DatabaseURL  string `json:"database_url"`
	NatsURL      string `json:"nats_url"`
	RedisURL     string `json:"redis_url"`
	OTLPEndpoint string `json:"otlp_endpoint"`
}

func Default() Config {
	return Config{
		URL:           "http://10.144.44.35:20020",
		SignatureName: "serving_default",
		MaxSeqLen:     200,
		BatchSize:     8,
		Workers:       10,
		Iterations:    100,
		ListFile:      "Test.txt",
		OutputSuffix:  ".trt.output",
	}
}

// Load returns the defaults overlaid with the JSONC file at path (if path is
// non-empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes JSON with comments and trailing commas into cfg. Fields
// absent from data keep their current values.
func Parse(data []byte, cfg *Config) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"PREDICT_URL", &cfg.URL},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"NATS_URL", &cfg.NatsURL},
		{"REDIS_URL", &cfg.RedisURL},
		{"OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OTLPEndpoint},
		{"METRICS_ADDR", &cfg.MetricsAddr},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	if v := getenv("MAX_SEQ_LEN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_SEQ_LEN: %w", err)
		}
		cfg.MaxSeqLen = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.MaxSeqLen < 0 {
		return fmt.Errorf("max_seq_len must not be negative, got %d", c.MaxSeqLen)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}

// Duration accepts either a Go duration string ("1.5s") or integer
// milliseconds in JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration must be a string or milliseconds: %s", b)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
