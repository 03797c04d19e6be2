package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [subreddit]",
		Short: "Run one mention-tracking pass over a subreddit",
		Long: `Fetches the subreddit's top posts of the week, their top comments, and
each comment's replies, then validates and persists every ticker mention
found. The subreddit argument overrides scan.subreddit from the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCommand,
	}

	cmd.Flags().Int("posts", 0, "posts to scan (overrides scan.posts)")
	cmd.Flags().Int("comments", 0, "comments per post (overrides scan.comments_per_post)")
	cmd.Flags().Int("replies", 0, "replies per comment (overrides scan.replies_per_comment)")
	cmd.Flags().Int("concurrency", 0, "concurrent fetch bound (overrides scan.concurrency)")

	return cmd
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	subreddit := ""
	if len(args) > 0 {
		subreddit = args[0]
	}

	stats, err := appInstance.Scan(cmd.Context(), subreddit)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	appInstance.Logger().Info("scan finished",
		zap.Int("posts_attempted", stats.Posts.Attempted),
		zap.Int("posts_failed", stats.Posts.Failed),
		zap.Int("comments_attempted", stats.Comments.Attempted),
		zap.Int("comments_failed", stats.Comments.Failed),
		zap.Int("replies_attempted", stats.Replies.Attempted),
		zap.Int("replies_failed", stats.Replies.Failed),
		zap.Int("mentions_persisted", stats.MentionsPersisted),
		zap.Int("persist_failures", stats.PersistFailures))
	return nil
}
