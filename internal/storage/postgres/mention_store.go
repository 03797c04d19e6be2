// Package postgres provides Postgres-backed persistence for validated
// mentions and run records.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickerscout/tickerscout/internal/tracker"
)

// Column widths from the stocks table DDL. Values are truncated rather than
// failing the batch.
const (
	maxTickerLen    = 5
	maxAuthorLen    = 30
	maxSubredditLen = 30
	maxIDLen        = 30
)

// pgxPool is the slice of pgxpool.Pool the stores need, narrow enough for
// pgxmock to stand in during tests.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig controls the shared pgx connection pool.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewPool opens a pgx pool from cfg and verifies connectivity.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const insertMentionSQL = `
INSERT INTO stocks (submission_id, ticker, author, subreddit, score, "type", created_utc)
VALUES ($1,$2,$3,$4,$5,$6,$7)`

const insertMentionDedupeSQL = insertMentionSQL + `
ON CONFLICT (submission_id, ticker) DO NOTHING`

// MentionStore writes validated mention rows into the stocks table. One
// InsertMentions call is one transaction; sibling traversal tasks may call it
// concurrently, the pool hands each call its own connection.
type MentionStore struct {
	pool   pgxPool
	dedupe bool
}

// NewMentionStore creates a store over an existing pool. With dedupe set,
// re-running a scan leaves existing (submission, ticker) rows untouched
// instead of appending duplicates.
func NewMentionStore(pool pgxPool, dedupe bool) (*MentionStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &MentionStore{pool: pool, dedupe: dedupe}, nil
}

// InsertMentions writes the batch atomically: every row commits or none do.
func (s *MentionStore) InsertMentions(ctx context.Context, mentions []tracker.Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	query := insertMentionSQL
	if s.dedupe {
		query = insertMentionDedupeSQL
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin mention batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range mentions {
		_, err := tx.Exec(ctx, query,
			truncate(m.SubmissionID, maxIDLen),
			truncate(m.Symbol, maxTickerLen),
			truncate(m.Author, maxAuthorLen),
			truncate(m.Subreddit, maxSubredditLen),
			clampScore(m.Score),
			string(m.Kind),
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert mention %s/%s: %w", m.SubmissionID, m.Symbol, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit mention batch: %w", err)
	}
	return nil
}

// Ping reports store reachability for readiness checks.
func (s *MentionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// truncate caps s at n runes. Slicing on rune boundaries keeps a cut inside
// a multi-byte character from handing Postgres invalid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// clampScore fits a Reddit score into the smallint column. Viral posts
// overflow int16; clamping beats losing the whole batch.
func clampScore(score int) int16 {
	switch {
	case score > 32767:
		return 32767
	case score < -32768:
		return -32768
	default:
		return int16(score)
	}
}
