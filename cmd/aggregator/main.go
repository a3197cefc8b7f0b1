package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"socialpulse/internal/config"
	"socialpulse/internal/fetch"
	"socialpulse/internal/schema"
	"socialpulse/internal/source"
	"socialpulse/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "aggregator",
		Short:        "Social interaction event aggregator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw records from the event source",
		RunE:  runFetch,
	}

	fetchCmd.Flags().String("source", "streams", "source type (streams, subgraph, file)")
	fetchCmd.Flags().String("rpc", "", "data-streams RPC URL")
	fetchCmd.Flags().String("method", "", "data-streams RPC method override")
	fetchCmd.Flags().String("endpoint", "", "subgraph endpoint URL")
	fetchCmd.Flags().String("collection", "", "subgraph collection name")
	fetchCmd.Flags().String("schema", "social_interactions", "event schema (social_interactions, presence)")
	fetchCmd.Flags().String("publisher", "", "publisher identity (wallet address)")
	fetchCmd.Flags().Int("page-size", 1000, "subgraph page size")
	fetchCmd.Flags().String("in", "", "input JSONL path (source=file)")
	fetchCmd.Flags().String("out", "./data/raw_records.jsonl", "output JSONL path")
	fetchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	fetchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	fetchCmd.Flags().Int("batch-size", 1000, "records per storage batch")
	fetchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	fetchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fetchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw records into canonical events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("schema", "social_interactions", "event schema (social_interactions, presence)")
	decodeCmd.Flags().String("in", "", "input raw records JSONL")
	decodeCmd.Flags().String("out", "./data/events.jsonl", "output canonical events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("kind-map", "", "extra raw->kind mappings (comma-separated key=value)")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fold canonical events into per-target snapshots",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("in", "", "input canonical events JSONL")
	snapshotCmd.Flags().String("out", "./data/snapshots.jsonl", "output snapshots JSONL")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	snapshotCmd.Flags().StringSlice("target", nil, "restrict to target ids (comma-separated)")
	snapshotCmd.Flags().String("since", "", "drop events before timestamp (unix ms or RFC3339)")
	snapshotCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	snapshotCmd.Flags().Bool("print", false, "print per-target counts to stdout")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eventSchema, err := schema.ByID(cfg.Schema)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.NewFromConfig(ctx, source.Config{
		Type:       cfg.Source,
		RPCURL:     cfg.RPCURL,
		Method:     cfg.Method,
		Endpoint:   cfg.Endpoint,
		Collection: cfg.Collection,
		Publisher:  cfg.Publisher,
		PageSize:   cfg.PageSize,
		Path:       cfg.In,
	}, eventSchema)
	if err != nil {
		return err
	}
	if closer, ok := src.(interface{ Close() }); ok {
		defer closer.Close()
	}

	sink := storage.NewJsonlStorage(cfg.Out)

	runner := fetch.NewRunner(fetch.RunConfig{
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, src, sink, logger)

	logger.Info("fetch start",
		zap.String("source", cfg.Source),
		zap.String("schema", cfg.Schema),
		zap.String("publisher", cfg.Publisher),
		zap.String("out", cfg.Out),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
