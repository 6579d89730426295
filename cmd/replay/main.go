package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/bert-trt-helpers/pkg/client"
	"github.com/bert-trt-helpers/pkg/config"
	"github.com/bert-trt-helpers/pkg/observability"
	"github.com/bert-trt-helpers/pkg/replay"
	"github.com/bert-trt-helpers/pkg/sink"
)

func main() {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := observability.Init("replay", cfg.OTLPEndpoint)
	defer shutdown()

	sinks, err := sink.FromConfig(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	defer sinks.Close()

	r := &replay.Replayer{
		Poster: client.New(cfg.URL, time.Duration(cfg.Timeout)),
		Sink:   sinks,
		Suffix: cfg.OutputSuffix,
		RunID:  uuid.NewString(),
	}

	start := time.Now()
	n, err := r.Run(ctx, cfg.ListFile)
	log.Printf("replayed %d requests from %s in %v", n, cfg.ListFile, time.Since(start))
	if err != nil {
		sinks.Close()
		shutdown()
		log.Fatal(err)
	}
}
