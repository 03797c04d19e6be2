// Package memory provides in-memory store implementations for development
// runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/tickerscout/tickerscout/internal/tracker"
)

// MentionStore accumulates mention rows in memory. Safe for concurrent use
// by sibling traversal tasks.
type MentionStore struct {
	mu   sync.Mutex
	rows []tracker.Mention
}

// NewMentionStore constructs an empty MentionStore.
func NewMentionStore() *MentionStore {
	return &MentionStore{}
}

// InsertMentions appends the batch. The whole batch lands atomically under
// the lock, mirroring the transactional contract of the Postgres store.
func (s *MentionStore) InsertMentions(_ context.Context, mentions []tracker.Mention) error {
	if len(mentions) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, mentions...)
	return nil
}

// Ping always succeeds.
func (s *MentionStore) Ping(_ context.Context) error {
	return nil
}

// Mentions returns a copy of everything inserted so far.
func (s *MentionStore) Mentions() []tracker.Mention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tracker.Mention(nil), s.rows...)
}

// RunStore accumulates run records in memory.
type RunStore struct {
	mu   sync.Mutex
	runs []tracker.RunRecord
}

// NewRunStore constructs an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// RecordRun appends one run record.
func (s *RunStore) RecordRun(_ context.Context, rec tracker.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, rec)
	return nil
}

// Runs returns a copy of all recorded runs.
func (s *RunStore) Runs() []tracker.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tracker.RunRecord(nil), s.runs...)
}
