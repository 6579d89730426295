package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

// Flags binds the command-line overrides shared by the tools. Only flags the
// user actually set replace values from the config file and environment.
type Flags struct {
	fs *flag.FlagSet

	path        string
	url         string
	maxSeqLen   int
	batchSize   int
	workers     int
	iterations  int
	timeout     time.Duration
	listFile    string
	suffix      string
	metricsAddr string
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVarP(&f.path, "config", "c", "", "JSONC config file")
	fs.StringVar(&f.url, "url", d.URL, "Prediction endpoint URL")
	fs.IntVar(&f.maxSeqLen, "max-seq-len", d.MaxSeqLen, "Pad example sequences to this length")
	fs.IntVar(&f.batchSize, "batch-size", d.BatchSize, "Sequences per request")
	fs.IntVarP(&f.workers, "workers", "w", d.Workers, "Concurrent workers")
	fs.IntVarP(&f.iterations, "iterations", "n", d.Iterations, "Sequential requests per worker")
	fs.DurationVar(&f.timeout, "timeout", 0, "Per-request timeout (0 waits forever)")
	fs.StringVar(&f.listFile, "list", d.ListFile, "File listing request bodies, one path per line")
	fs.StringVar(&f.suffix, "suffix", d.OutputSuffix, "Suffix of the file holding each response's outputs")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return f
}

// Load builds the config from defaults, the --config file, the environment and
// finally the flags that were set.
func (f *Flags) Load() (Config, error) {
	cfg, err := Load(f.path)
	if err != nil {
		return Config{}, err
	}
	f.apply(&cfg)
	return cfg, cfg.Validate()
}

func (f *Flags) apply(cfg *Config) {
	if f.fs.Changed("url") {
		cfg.URL = f.url
	}
	if f.fs.Changed("max-seq-len") {
		cfg.MaxSeqLen = f.maxSeqLen
	}
	if f.fs.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if f.fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if f.fs.Changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if f.fs.Changed("timeout") {
		cfg.Timeout = Duration(f.timeout)
	}
	if f.fs.Changed("list") {
		cfg.ListFile = f.listFile
	}
	if f.fs.Changed("suffix") {
		cfg.OutputSuffix = f.suffix
	}
	if f.fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
}
