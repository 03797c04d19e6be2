package tracker

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/tickerscout/tickerscout/internal/metrics"
)

// Default run parameters, used when the corresponding Config field is unset.
const (
	DefaultPosts              = 15
	DefaultCommentsPerPost    = 5
	DefaultRepliesPerComment  = 5
	DefaultConcurrency        = 15
	DefaultMaxPersistFailures = 5
)

// Metric label values for traversal tiers and node outcomes.
const (
	tierListing = "listing"
	tierPost    = "post"
	tierComment = "comment"
	tierReply   = "reply"

	outcomeOK          = "ok"
	outcomeFetchFailed = "fetch_failed"
	outcomeParseFailed = "parse_failed"
)

// Config sets the tier widths and concurrency for a Scheduler.
type Config struct {
	Posts              int
	CommentsPerPost    int
	RepliesPerComment  int
	Concurrency        int
	MaxPersistFailures int
}

func (c Config) withDefaults() Config {
	if c.Posts <= 0 {
		c.Posts = DefaultPosts
	}
	if c.CommentsPerPost <= 0 {
		c.CommentsPerPost = DefaultCommentsPerPost
	}
	if c.RepliesPerComment <= 0 {
		c.RepliesPerComment = DefaultRepliesPerComment
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxPersistFailures < 0 {
		c.MaxPersistFailures = DefaultMaxPersistFailures
	}
	return c
}

// Scheduler drives the three-tier traversal of one subreddit: listing, posts,
// comments, then the replies embedded in comment responses. Post- and
// comment-tier fetches share one counting permit pool; a permit is held
// across exactly the network call, so parsing, validation, and persistence
// never starve other fetches. Each tier runs to completion before the next
// tier's tasks are computed.
type Scheduler struct {
	fetcher   Fetcher
	parser    Parser
	urls      URLBuilder
	validator *Validator
	mentions  MentionStore
	cfg       Config
	permits   *semaphore.Weighted
	logger    *zap.Logger
}

// NewScheduler wires the traversal collaborators together.
func NewScheduler(
	fetcher Fetcher,
	parser Parser,
	urls URLBuilder,
	validator *Validator,
	mentions MentionStore,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		fetcher:   fetcher,
		parser:    parser,
		urls:      urls,
		validator: validator,
		mentions:  mentions,
		cfg:       cfg,
		permits:   semaphore.NewWeighted(int64(cfg.Concurrency)),
		logger:    logger,
	}
}

// commentRef carries a discovered comment ID together with the post it came
// from, so comment tasks always know their true parent.
type commentRef struct {
	postID    string
	commentID string
}

// replyRef carries one embedded reply payload plus its root post ID.
type replyRef struct {
	postID  string
	payload json.RawMessage
}

// Run walks the full tree for one subreddit and returns once every node has
// been processed, successfully or not. Node-level fetch and parse failures
// are contained and counted. Run itself fails only on context cancellation
// or when mention inserts cross the store failure threshold.
func (s *Scheduler) Run(ctx context.Context, subreddit string) (RunStats, error) {
	tally := newRunTally(s.cfg.MaxPersistFailures)

	// The listing is the traversal's entry barrier: one call, outside the
	// permit pool.
	raw, err := s.fetcher.Fetch(ctx, s.urls.Listing(subreddit, s.cfg.Posts))
	if err != nil {
		if ctx.Err() != nil {
			return tally.snapshot(), ctx.Err()
		}
		s.logger.Warn("listing fetch failed", zap.String("subreddit", subreddit), zap.Error(err))
		tally.listingFailed()
		metrics.ObserveNode(tierListing, outcomeFetchFailed)
		return tally.snapshot(), nil
	}
	postIDs, err := s.parser.Listing(raw)
	if err != nil {
		s.logger.Warn("listing parse failed", zap.String("subreddit", subreddit), zap.Error(err))
		tally.listingFailed()
		metrics.ObserveNode(tierListing, outcomeParseFailed)
		return tally.snapshot(), nil
	}
	metrics.ObserveNode(tierListing, outcomeOK)
	if len(postIDs) > s.cfg.Posts {
		postIDs = postIDs[:s.cfg.Posts]
	}
	if len(postIDs) == 0 {
		s.logger.Info("listing empty, nothing to scan", zap.String("subreddit", subreddit))
		return tally.snapshot(), nil
	}

	s.logger.Info("post tier starting",
		zap.String("subreddit", subreddit),
		zap.Int("posts", len(postIDs)))

	var wg sync.WaitGroup
	commentChildren := make([][]commentRef, len(postIDs))
	for i, postID := range postIDs {
		wg.Add(1)
		go func(i int, postID string) {
			defer wg.Done()
			commentChildren[i] = s.processPost(ctx, tally, subreddit, postID)
		}(i, postID)
	}
	wg.Wait()
	if err := s.checkHealth(ctx, tally); err != nil {
		return tally.snapshot(), err
	}

	var commentRefs []commentRef
	for _, refs := range commentChildren {
		commentRefs = append(commentRefs, refs...)
	}
	s.logger.Info("comment tier starting", zap.Int("comments", len(commentRefs)))

	replyChildren := make([][]replyRef, len(commentRefs))
	for i, ref := range commentRefs {
		wg.Add(1)
		go func(i int, ref commentRef) {
			defer wg.Done()
			replyChildren[i] = s.processComment(ctx, tally, subreddit, ref)
		}(i, ref)
	}
	wg.Wait()
	if err := s.checkHealth(ctx, tally); err != nil {
		return tally.snapshot(), err
	}

	var replyRefs []replyRef
	for _, refs := range replyChildren {
		replyRefs = append(replyRefs, refs...)
	}
	s.logger.Info("reply tier starting", zap.Int("replies", len(replyRefs)))

	// Replies arrived embedded in the comment responses: pure parse work,
	// no fetches, no permits.
	for _, ref := range replyRefs {
		wg.Add(1)
		go func(ref replyRef) {
			defer wg.Done()
			s.processReply(ctx, tally, ref)
		}(ref)
	}
	wg.Wait()
	if err := s.checkHealth(ctx, tally); err != nil {
		return tally.snapshot(), err
	}

	stats := tally.snapshot()
	s.logger.Info("run complete",
		zap.String("subreddit", subreddit),
		zap.Int("nodes_attempted", stats.NodesAttempted()),
		zap.Int("nodes_failed", stats.NodesFailed()),
		zap.Int("mentions_persisted", stats.MentionsPersisted),
		zap.Int("persist_failures", stats.PersistFailures))
	return stats, nil
}

// fetchGated performs one fetch under the shared permit pool. The permit is
// released as soon as the response is in hand, before any parsing.
func (s *Scheduler) fetchGated(ctx context.Context, tier string, url string) ([]byte, error) {
	if err := s.permits.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	metrics.IncInflightFetches()
	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, url)
	elapsed := time.Since(start)
	metrics.DecInflightFetches()
	s.permits.Release(1)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFetchFailed
	}
	metrics.ObserveFetch(tier, outcome, elapsed)
	return raw, err
}

func (s *Scheduler) processPost(ctx context.Context, tally *runTally, subreddit, postID string) []commentRef {
	tally.attempted(KindPost)
	raw, err := s.fetchGated(ctx, tierPost, s.urls.Post(subreddit, postID, s.cfg.CommentsPerPost))
	if err != nil {
		tally.failed(KindPost)
		metrics.ObserveNode(tierPost, outcomeFetchFailed)
		s.logger.Warn("post fetch failed", zap.String("post", postID), zap.Error(err))
		return nil
	}
	sub, commentIDs, err := s.parser.Post(raw, s.cfg.CommentsPerPost)
	if err != nil {
		tally.failed(KindPost)
		metrics.ObserveNode(tierPost, outcomeParseFailed)
		s.logger.Warn("post parse failed", zap.String("post", postID), zap.Error(err))
		return nil
	}
	metrics.ObserveNode(tierPost, outcomeOK)
	s.persist(ctx, tally, sub)

	refs := make([]commentRef, 0, len(commentIDs))
	for _, commentID := range commentIDs {
		refs = append(refs, commentRef{postID: postID, commentID: commentID})
	}
	return refs
}

func (s *Scheduler) processComment(ctx context.Context, tally *runTally, subreddit string, ref commentRef) []replyRef {
	tally.attempted(KindComment)
	raw, err := s.fetchGated(ctx, tierComment, s.urls.Comment(subreddit, ref.postID, ref.commentID, s.cfg.RepliesPerComment))
	if err != nil {
		tally.failed(KindComment)
		metrics.ObserveNode(tierComment, outcomeFetchFailed)
		s.logger.Warn("comment fetch failed",
			zap.String("post", ref.postID),
			zap.String("comment", ref.commentID),
			zap.Error(err))
		return nil
	}
	sub, payloads, err := s.parser.Comment(raw, ref.postID, s.cfg.RepliesPerComment)
	if err != nil {
		tally.failed(KindComment)
		metrics.ObserveNode(tierComment, outcomeParseFailed)
		s.logger.Warn("comment parse failed",
			zap.String("post", ref.postID),
			zap.String("comment", ref.commentID),
			zap.Error(err))
		return nil
	}
	metrics.ObserveNode(tierComment, outcomeOK)
	s.persist(ctx, tally, sub)

	refs := make([]replyRef, 0, len(payloads))
	for _, payload := range payloads {
		refs = append(refs, replyRef{postID: ref.postID, payload: payload})
	}
	return refs
}

func (s *Scheduler) processReply(ctx context.Context, tally *runTally, ref replyRef) {
	tally.attempted(KindReply)
	sub, err := s.parser.Reply(ref.payload, ref.postID)
	if err != nil {
		tally.failed(KindReply)
		metrics.ObserveNode(tierReply, outcomeParseFailed)
		s.logger.Debug("reply parse failed", zap.String("post", ref.postID), zap.Error(err))
		return
	}
	metrics.ObserveNode(tierReply, outcomeOK)
	s.persist(ctx, tally, sub)
}

// persist validates the submission's text and stores any resulting mentions.
// Insert failures are counted per node, never raised to the caller.
func (s *Scheduler) persist(ctx context.Context, tally *runTally, sub Submission) {
	if strings.TrimSpace(sub.Text) == "" {
		return
	}
	mentions := s.validator.Validate(sub)
	if len(mentions) == 0 {
		return
	}
	if err := s.mentions.InsertMentions(ctx, mentions); err != nil {
		tally.persistFailed()
		metrics.IncPersistFailures()
		s.logger.Error("mention insert failed",
			zap.String("submission", sub.ID),
			zap.Int("mentions", len(mentions)),
			zap.Error(err))
		return
	}
	tally.persisted(len(mentions))
	metrics.AddMentionsPersisted(len(mentions))
	s.logger.Debug("mentions persisted",
		zap.String("submission", sub.ID),
		zap.Int("count", len(mentions)))
}

func (s *Scheduler) checkHealth(ctx context.Context, tally *runTally) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tally.storeUnhealthy() {
		s.logger.Error("aborting run, mention store failing repeatedly",
			zap.Int("persist_failures", tally.snapshot().PersistFailures))
		return ErrStoreUnhealthy
	}
	return nil
}
