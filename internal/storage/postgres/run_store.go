package postgres

import (
	"context"
	"fmt"

	"github.com/tickerscout/tickerscout/internal/tracker"
)

const insertRunSQL = `
INSERT INTO scan_runs (
	id,
	subreddit,
	started_at,
	finished_at,
	posts_attempted,
	posts_failed,
	comments_attempted,
	comments_failed,
	replies_attempted,
	replies_failed,
	mentions_persisted,
	persist_failures,
	registry_source
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

// RunStore writes end-of-run bookkeeping rows.
type RunStore struct {
	pool pgxPool
}

// NewRunStore creates a store over an existing pool.
func NewRunStore(pool pgxPool) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &RunStore{pool: pool}, nil
}

// RecordRun inserts one completed-run row.
func (s *RunStore) RecordRun(ctx context.Context, rec tracker.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run id is required")
	}
	_, err := s.pool.Exec(ctx, insertRunSQL,
		rec.ID,
		rec.Subreddit,
		rec.StartedAt,
		rec.FinishedAt,
		rec.Stats.Posts.Attempted,
		rec.Stats.Posts.Failed,
		rec.Stats.Comments.Attempted,
		rec.Stats.Comments.Failed,
		rec.Stats.Replies.Attempted,
		rec.Stats.Replies.Failed,
		rec.Stats.MentionsPersisted,
		rec.Stats.PersistFailures,
		rec.RegistrySource,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}
