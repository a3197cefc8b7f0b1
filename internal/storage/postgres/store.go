package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"socialpulse/internal/model"
)

// Store provides Postgres persistence for snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertSnapshots inserts or updates per-target snapshots.
func (s *Store) UpsertSnapshots(ctx context.Context, snapshots []model.SnapshotRecord) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO target_snapshots (
				target_id, like_count, repost_count, comment_count, viewer_count, typer_count,
				liked_by, reposted_by, typing, computed_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
			ON CONFLICT (target_id)
			DO UPDATE SET
				like_count = EXCLUDED.like_count,
				repost_count = EXCLUDED.repost_count,
				comment_count = EXCLUDED.comment_count,
				viewer_count = EXCLUDED.viewer_count,
				typer_count = EXCLUDED.typer_count,
				liked_by = EXCLUDED.liked_by,
				reposted_by = EXCLUDED.reposted_by,
				typing = EXCLUDED.typing,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
		`,
			snap.TargetID,
			snap.LikeCount,
			snap.RepostCount,
			snap.CommentCount,
			snap.ViewerCount,
			snap.TyperCount,
			snap.LikedBy,
			snap.RepostedBy,
			snap.Typing,
			snap.ComputedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM aggregator_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO aggregator_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}
