package fetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"socialpulse/internal/model"
	"socialpulse/internal/source"
	"socialpulse/internal/storage"
)

// RunConfig holds runtime settings for the fetch runner.
type RunConfig struct {
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner pulls the current record set from a source and appends the unseen
// part to storage.
type Runner struct {
	cfg        RunConfig
	source     source.Source
	storage    storage.Storage
	logger     *zap.Logger
	seen       map[string]struct{}
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, src source.Source, sink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		source:     src,
		storage:    sink,
		logger:     logger,
		seen:       make(map[string]struct{}),
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes one fetch pass.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}

	var resumeAfter uint64
	var resumed bool
	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			resumeAfter = cp.LastProcessedSeq
			resumed = true
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed_seq", resumeAfter))
		}
	}

	records, err := r.fetchWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}

	fresh := make([]model.RawRecord, 0, len(records))
	var skipped, duplicates int
	for _, record := range records {
		if resumed && record.Seq <= resumeAfter {
			skipped++
			continue
		}
		if r.isDuplicate(record) {
			duplicates++
			continue
		}
		fresh = append(fresh, record)
	}

	if len(fresh) == 0 {
		r.logger.Info("nothing to ingest",
			zap.Int("total", len(records)),
			zap.Int("skipped", skipped),
			zap.Int("duplicates", duplicates),
		)
		return nil
	}

	batches, err := SplitBatches(len(fresh), r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk := fresh[batch.From:batch.To]
		if err := r.storage.PutRecordBatch(chunk); err != nil {
			return fmt.Errorf("store records: %w", err)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(maxSeq(chunk)); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete", zap.Int("records", len(chunk)), zap.Int("from", batch.From), zap.Int("to", batch.To))
	}

	r.logger.Info("fetch complete",
		zap.String("source", r.source.Name()),
		zap.Int("total", len(records)),
		zap.Int("ingested", len(fresh)),
		zap.Int("skipped", skipped),
		zap.Int("duplicates", duplicates),
	)

	return nil
}

func (r *Runner) fetchWithRetry(ctx context.Context) ([]model.RawRecord, error) {
	var records []model.RawRecord
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		records, err = r.source.Fetch(ctx)
		if err != nil {
			r.logger.Warn("fetch failed", zap.Error(err), zap.String("source", r.source.Name()))
		}
		return err
	})
	return records, err
}

func (r *Runner) isDuplicate(record model.RawRecord) bool {
	id := fmt.Sprintf("%s:%s:%s", record.SchemaID, record.Publisher, record.Fields)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}

func maxSeq(records []model.RawRecord) uint64 {
	var max uint64
	for _, record := range records {
		if record.Seq > max {
			max = record.Seq
		}
	}
	return max
}
