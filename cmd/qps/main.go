package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/bert-trt-helpers/pkg/client"
	"github.com/bert-trt-helpers/pkg/config"
	"github.com/bert-trt-helpers/pkg/loadtest"
	"github.com/bert-trt-helpers/pkg/observability"
	"github.com/bert-trt-helpers/pkg/payload"
	"github.com/bert-trt-helpers/pkg/sink"
)

func main() {
	fs := flag.NewFlagSet("qps", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := observability.Init("qps", cfg.OTLPEndpoint)
	defer shutdown()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	sinks, err := sink.FromConfig(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	defer sinks.Close()

	body, err := json.Marshal(payload.Build(cfg))
	if err != nil {
		log.Fatal(err)
	}

	runID := uuid.NewString()
	runner := &loadtest.Runner{
		Poster:     client.New(cfg.URL, time.Duration(cfg.Timeout)),
		Sink:       sinks,
		Workers:    cfg.Workers,
		Iterations: cfg.Iterations,
		RunID:      runID,
		Source:     "qps",
	}

	log.Printf("run %s: %d workers x %d requests to %s", runID, cfg.Workers, cfg.Iterations, cfg.URL)
	result, runErr := runner.Run(ctx, body)

	fmt.Printf("-----------> final cost :%v\n", float64(result.Elapsed)/float64(time.Millisecond))
	log.Printf("Load test complete:")
	log.Printf("  Duration: %v", result.Elapsed)
	log.Printf("  Success: %d", result.Success)
	log.Printf("  Errors: %d", result.Errors)
	log.Printf("  RPS: %.2f", result.RPS())
	log.Printf("  Latency mean/p50/p99/max: %v / %v / %v / %v",
		result.Mean(), result.Percentile(50), result.Percentile(99), result.Max())

	if runErr != nil {
		sinks.Close()
		shutdown()
		log.Fatal(runErr)
	}
}
