package tracker

import (
	"context"
	"encoding/json"
	"time"
)

// Fetcher performs one GET and returns the raw response body. Implementations
// own per-request timeouts and the rate-limit retry budget; an exhausted
// budget surfaces as an ordinary error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parser maps raw tier responses onto normalized submissions plus the child
// work discovered in them. All methods are total: malformed input yields an
// error, never a panic.
type Parser interface {
	// Listing extracts the ordered post IDs from a listing response.
	Listing(raw []byte) ([]string, error)
	// Post extracts the post submission and up to maxComments direct child
	// comment IDs from a post thread response.
	Post(raw []byte, maxComments int) (Submission, []string, error)
	// Comment extracts the first-listed comment and up to maxReplies embedded
	// reply payloads from a comment thread response.
	Comment(raw []byte, parentPostID string, maxReplies int) (Submission, []json.RawMessage, error)
	// Reply extracts a submission from one embedded reply payload.
	Reply(raw json.RawMessage, parentPostID string) (Submission, error)
}

// URLBuilder renders the fetch URL for each traversal tier.
type URLBuilder interface {
	Listing(subreddit string, limit int) string
	Post(subreddit, postID string, limit int) string
	Comment(subreddit, postID, commentID string, limit int) string
}

// Extractor finds candidate ticker strings in free text. Implementations are
// synchronous and bounded; they run outside the fetch permit pool.
type Extractor interface {
	Candidates(text string) []string
}

// Registry answers membership queries against the symbol snapshot loaded
// before the run. Snapshots are immutable, so implementations need no locking.
type Registry interface {
	Contains(symbol string) bool
}

// MentionStore persists validated mention batches. One call is transactional
// for the batch it receives and must be safe for concurrent invocation by
// sibling tasks.
type MentionStore interface {
	InsertMentions(ctx context.Context, mentions []Mention) error
}

// RunStore records run-level bookkeeping rows.
type RunStore interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
