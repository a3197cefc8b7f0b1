package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialpulse/internal/aggregate"
	"socialpulse/internal/config"
	"socialpulse/internal/fetch"
	"socialpulse/internal/model"
	"socialpulse/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	since, err := config.ParseTimestamp(cfg.Since)
	if err != nil {
		return fmt.Errorf("parse since: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	logger.Info("snapshot start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int64("since", since),
		zap.Strings("targets", cfg.Targets),
	)

	events, total, skipped, failed, err := readEvents(cfg.In, since, cfg.Targets)
	if err != nil {
		return err
	}

	view := aggregate.Snapshot(events)
	computedAt := time.Now().UTC()

	var maxTs int64
	for _, event := range events {
		if event.Timestamp > maxTs {
			maxTs = event.Timestamp
		}
	}

	snapshots := make([]model.SnapshotRecord, 0, len(view.Targets()))
	for _, targetID := range view.Targets() {
		snapshots = append(snapshots, view.Record(targetID, computedAt))
	}

	if cfg.Out != "" {
		outWriter, err := newJSONLWriter(cfg.Out, false)
		if err != nil {
			return err
		}
		for _, snap := range snapshots {
			if err := outWriter.Write(snap); err != nil {
				outWriter.Close()
				return err
			}
		}
		if err := outWriter.Close(); err != nil {
			return err
		}
	}

	if store != nil {
		batches, err := fetch.SplitBatches(len(snapshots), cfg.BatchSize)
		if err != nil {
			return err
		}
		for _, batch := range batches {
			if err := store.UpsertSnapshots(ctx, snapshots[batch.From:batch.To]); err != nil {
				return fmt.Errorf("upsert snapshots: %w", err)
			}
		}
		if maxTs > 0 {
			if err := store.SaveState(ctx, "snapshot", uint64(maxTs)); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
	}

	if cfg.Print {
		for _, snap := range snapshots {
			fmt.Printf("%s likes=%d reposts=%d comments=%d viewers=%d typing=%d\n",
				snap.TargetID, snap.LikeCount, snap.RepostCount, snap.CommentCount,
				snap.ViewerCount, snap.TyperCount)
		}
	}

	logger.Info("snapshot complete",
		zap.Int("total", total),
		zap.Int("folded", len(events)),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("targets", len(snapshots)),
	)

	return nil
}

// readEvents loads canonical events from JSONL, dropping events outside the
// since/target filters. Malformed lines count as failures, never abort.
func readEvents(path string, since int64, targets []string) ([]model.CanonicalEvent, int, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	wanted := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		wanted[target] = struct{}{}
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var events []model.CanonicalEvent
	var total, skipped, failed int
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var event model.CanonicalEvent
		if err := json.Unmarshal(line, &event); err != nil {
			failed++
			continue
		}
		if since > 0 && event.Timestamp < since {
			skipped++
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[event.TargetID]; !ok {
				skipped++
				continue
			}
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("scan input: %w", err)
	}
	return events, total, skipped, failed, nil
}
