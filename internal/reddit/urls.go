package reddit

import "fmt"

// DefaultBaseURL is the public Reddit API host.
const DefaultBaseURL = "https://www.reddit.com"

// commentLimitPadding widens the requested comment/reply limit to absorb
// non-comment children (stickied mods, "more" stubs) the API mixes into
// thread listings.
const commentLimitPadding = 2

// URLs renders fetch URLs for each traversal tier against one base host.
type URLs struct {
	base string
}

// NewURLs builds a URL set rooted at base, falling back to the public host
// when base is empty.
func NewURLs(base string) *URLs {
	if base == "" {
		base = DefaultBaseURL
	}
	return &URLs{base: base}
}

// Listing returns the top-posts listing URL for a subreddit.
func (u *URLs) Listing(subreddit string, limit int) string {
	return fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=week", u.base, subreddit, limit)
}

// Post returns the post-thread URL embedding the post and its top comments.
func (u *URLs) Post(subreddit, postID string, limit int) string {
	return fmt.Sprintf("%s/r/%s/comments/%s.json?sort=top&limit=%d", u.base, subreddit, postID, limit+commentLimitPadding)
}

// Comment returns the comment-thread URL embedding one comment and its
// nested replies.
func (u *URLs) Comment(subreddit, postID, commentID string, limit int) string {
	return fmt.Sprintf("%s/r/%s/comments/%s/comment/%s.json?sort=top&limit=%d", u.base, subreddit, postID, commentID, limit+commentLimitPadding)
}
