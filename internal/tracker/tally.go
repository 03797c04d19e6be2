package tracker

import "sync"

// runTally accumulates run counters under a mutex; every node task reports
// into it concurrently.
type runTally struct {
	mu        sync.Mutex
	stats     RunStats
	failLimit int
}

func newRunTally(failLimit int) *runTally {
	return &runTally{failLimit: failLimit}
}

func (t *runTally) listingFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.ListingFailed = true
}

func (t *runTally) attempted(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch kind {
	case KindPost:
		t.stats.Posts.Attempted++
	case KindComment:
		t.stats.Comments.Attempted++
	case KindReply:
		t.stats.Replies.Attempted++
	}
}

func (t *runTally) failed(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch kind {
	case KindPost:
		t.stats.Posts.Failed++
	case KindComment:
		t.stats.Comments.Failed++
	case KindReply:
		t.stats.Replies.Failed++
	}
}

func (t *runTally) persisted(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.MentionsPersisted += n
}

func (t *runTally) persistFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.PersistFailures++
}

// storeUnhealthy reports whether insert failures have crossed the abort
// threshold. A limit of zero disables the check.
func (t *runTally) storeUnhealthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failLimit > 0 && t.stats.PersistFailures >= t.failLimit
}

func (t *runTally) snapshot() RunStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
