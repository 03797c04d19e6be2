package tracker

import (
	"time"
)

// Kind identifies which traversal tier a submission came from.
type Kind string

// Kind values persisted in the mention store.
const (
	KindPost    Kind = "POST"
	KindComment Kind = "COMMENT"
	KindReply   Kind = "REPLY"
)

// Submission is the normalized unit of extraction produced by the parser.
// Text is transient input for candidate extraction and is never persisted.
type Submission struct {
	ID        string
	ParentID  string // root post ID; equals ID for a post
	Kind      Kind
	Score     int
	CreatedAt time.Time
	Author    string
	Subreddit string
	Text      string
}

// Mention is one validated ticker symbol attached to one submission. Each
// mention carries a full copy of the submission's provenance so rows are
// self-contained.
type Mention struct {
	Symbol       string
	SubmissionID string
	PostID       string
	Kind         Kind
	Author       string
	Subreddit    string
	Score        int
	CreatedAt    time.Time
}

// TierCounters tracks attempted/failed node counts for one tier.
type TierCounters struct {
	Attempted int
	Failed    int
}

// RunStats aggregates the outcome of one traversal run.
type RunStats struct {
	ListingFailed     bool
	Posts             TierCounters
	Comments          TierCounters
	Replies           TierCounters
	MentionsPersisted int
	PersistFailures   int
}

// NodesAttempted sums attempted nodes across all tiers.
func (s RunStats) NodesAttempted() int {
	return s.Posts.Attempted + s.Comments.Attempted + s.Replies.Attempted
}

// NodesFailed sums failed nodes across all tiers.
func (s RunStats) NodesFailed() int {
	return s.Posts.Failed + s.Comments.Failed + s.Replies.Failed
}

// RunRecord is the bookkeeping row written after a run completes.
type RunRecord struct {
	ID             string
	Subreddit      string
	StartedAt      time.Time
	FinishedAt     time.Time
	RegistrySource string
	Stats          RunStats
}
