package reddit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tickerscout/tickerscout/internal/tracker"
)

const listingFixture = `{
  "kind": "Listing",
  "data": {
    "children": [
      {"kind": "t3", "data": {"id": "p1", "title": "First"}},
      {"kind": "t3", "data": {"id": "p2", "title": "Second"}},
      {"kind": "t3", "data": {"id": "p3", "title": "Third"}}
    ]
  }
}`

func TestListingReturnsIDsInSourceOrder(t *testing.T) {
	t.Parallel()

	p := NewParser()
	ids, err := p.Listing([]byte(listingFixture))
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2", "p3"}, ids)
}

func TestListingMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":         `{{{`,
		"wrong kind":       `{"kind": "t1", "data": {"children": []}}`,
		"missing data":     `{"kind": "Listing"}`,
		"entry missing id": `{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"title": "no id"}}]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewParser().Listing([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestListingEmptyChildren(t *testing.T) {
	t.Parallel()

	ids, err := NewParser().Listing([]byte(`{"kind": "Listing", "data": {"children": []}}`))
	require.NoError(t, err)
	require.Empty(t, ids)
}

const postFixture = `[
  {"kind": "Listing", "data": {"children": [
    {"kind": "t3", "data": {
      "id": "p1", "title": "YOLO thread", "selftext": "All in on $TSLA",
      "score": 512, "created_utc": 1700000000, "author": "diamondhands",
      "subreddit": "wallstreetbets"
    }}
  ]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"id": "c1", "body": "agree"}},
    {"kind": "more", "data": {"count": 40}},
    {"kind": "t1", "data": {"id": "c2", "body": "disagree"}},
    {"kind": "t1", "data": {"id": "c3", "body": "meh"}}
  ]}}
]`

func TestPostParsesSubmissionAndCommentIDs(t *testing.T) {
	t.Parallel()

	sub, commentIDs, err := NewParser().Post([]byte(postFixture), 2)
	require.NoError(t, err)

	require.Equal(t, "p1", sub.ID)
	require.Equal(t, "p1", sub.ParentID, "a post is its own parent")
	require.Equal(t, tracker.KindPost, sub.Kind)
	require.Equal(t, 512, sub.Score)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), sub.CreatedAt)
	require.Equal(t, "diamondhands", sub.Author)
	require.Equal(t, "wallstreetbets", sub.Subreddit)
	require.Equal(t, "All in on $TSLA", sub.Text)

	// Capped at maxComments, "more" stubs skipped without consuming a slot.
	require.Equal(t, []string{"c1", "c2"}, commentIDs)
}

func TestPostTextFallsBackToTitle(t *testing.T) {
	t.Parallel()

	raw := `[
	  {"kind": "Listing", "data": {"children": [
	    {"kind": "t3", "data": {"id": "p9", "title": "Buy GME", "selftext": "   "}}
	  ]}},
	  {"kind": "Listing", "data": {"children": []}}
	]`
	sub, commentIDs, err := NewParser().Post([]byte(raw), 5)
	require.NoError(t, err)
	require.Equal(t, "Buy GME", sub.Text)
	require.Empty(t, commentIDs)
}

func TestPostDefaultsAbsentFields(t *testing.T) {
	t.Parallel()

	raw := `[
	  {"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "p7"}}]}},
	  {"kind": "Listing", "data": {"children": []}}
	]`
	sub, _, err := NewParser().Post([]byte(raw), 5)
	require.NoError(t, err)
	require.Equal(t, "Unknown", sub.Author)
	require.Equal(t, "Unknown", sub.Subreddit)
	require.Zero(t, sub.Score)
	require.Empty(t, sub.Text)
}

func TestPostMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not an array":    `{"kind": "Listing"}`,
		"single element":  `[{"kind": "Listing", "data": {"children": []}}]`,
		"no post child":   `[{"kind": "Listing", "data": {"children": []}}, {"kind": "Listing", "data": {"children": []}}]`,
		"post missing id": `[{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"title": "x"}}]}}, {"kind": "Listing", "data": {"children": []}}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := NewParser().Post([]byte(raw), 5)
			require.Error(t, err)
		})
	}
}

const commentFixture = `[
  {"kind": "Listing", "data": {"children": [
    {"kind": "t3", "data": {"id": "p1", "title": "parent post"}}
  ]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {
      "id": "c1", "body": "GME to the moon", "score": 64,
      "created_utc": 1700000100, "author": "apes", "subreddit": "wallstreetbets",
      "replies": {"kind": "Listing", "data": {"children": [
        {"kind": "t1", "data": {"id": "r1", "body": "agreed, also AMC"}},
        {"kind": "t1", "data": {"id": "r2", "body": "nah"}},
        {"kind": "t1", "data": {"id": "r3", "body": "lol"}}
      ]}}
    }}
  ]}}
]`

func TestCommentParsesSubmissionAndReplies(t *testing.T) {
	t.Parallel()

	sub, replies, err := NewParser().Comment([]byte(commentFixture), "p1", 2)
	require.NoError(t, err)

	require.Equal(t, "c1", sub.ID)
	require.Equal(t, "p1", sub.ParentID, "parent comes from the traversal context")
	require.Equal(t, tracker.KindComment, sub.Kind)
	require.Equal(t, "GME to the moon", sub.Text)
	require.Len(t, replies, 2, "capped at maxReplies")
}

func TestCommentEmptyStringReplies(t *testing.T) {
	t.Parallel()

	raw := `[
	  {"kind": "Listing", "data": {"children": []}},
	  {"kind": "Listing", "data": {"children": [
	    {"kind": "t1", "data": {"id": "c2", "body": "no replies here", "replies": ""}}
	  ]}}
	]`
	sub, replies, err := NewParser().Comment([]byte(raw), "p1", 5)
	require.NoError(t, err)
	require.Equal(t, "c2", sub.ID)
	require.Empty(t, replies)
}

func TestCommentMalformed(t *testing.T) {
	t.Parallel()

	raw := `[
	  {"kind": "Listing", "data": {"children": []}},
	  {"kind": "Listing", "data": {"children": []}}
	]`
	_, _, err := NewParser().Comment([]byte(raw), "p1", 5)
	require.Error(t, err)
}

func TestReplyParsesEmbeddedObject(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"kind": "t1", "data": {
	  "id": "r1", "body": "check $AAPL", "score": -3,
	  "created_utc": 1700000200, "author": "contrarian", "subreddit": "stocks"
	}}`)
	sub, err := NewParser().Reply(raw, "p1")
	require.NoError(t, err)

	require.Equal(t, "r1", sub.ID)
	require.Equal(t, "p1", sub.ParentID)
	require.Equal(t, tracker.KindReply, sub.Kind)
	require.Equal(t, -3, sub.Score)
	require.Equal(t, "check $AAPL", sub.Text)
}

func TestReplyMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"wrong kind": `{"kind": "t3", "data": {"id": "x"}}`,
		"missing id": `{"kind": "t1", "data": {"body": "text"}}`,
		"not json":   `]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewParser().Reply(json.RawMessage(raw), "p1")
			require.Error(t, err)
		})
	}
}

func TestURLsMatchRedditEndpoints(t *testing.T) {
	t.Parallel()

	u := NewURLs("")
	require.Equal(t,
		"https://www.reddit.com/r/stocks/top.json?limit=15&t=week",
		u.Listing("stocks", 15))
	require.Equal(t,
		"https://www.reddit.com/r/stocks/comments/p1.json?sort=top&limit=7",
		u.Post("stocks", "p1", 5))
	require.Equal(t,
		"https://www.reddit.com/r/stocks/comments/p1/comment/c1.json?sort=top&limit=7",
		u.Comment("stocks", "p1", "c1", 5))
}
