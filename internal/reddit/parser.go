package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tickerscout/tickerscout/internal/tracker"
)

// unknownField substitutes for string provenance fields absent from the
// source payload, so rows never carry empty author/subreddit values.
const unknownField = "Unknown"

// Parser maps raw Reddit responses onto normalized submissions. All methods
// are total: malformed input yields an error and nothing else, so a bad node
// degrades to zero children and zero mentions.
type Parser struct{}

// NewParser builds a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Listing extracts the ordered post IDs from a top-posts listing response.
func (p *Parser) Listing(raw []byte) ([]string, error) {
	var root thing
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if root.Kind != kindListing {
		return nil, fmt.Errorf("listing kind is %q, want %q", root.Kind, kindListing)
	}
	var ld listingData
	if err := json.Unmarshal(root.Data, &ld); err != nil {
		return nil, fmt.Errorf("decode listing children: %w", err)
	}

	ids := make([]string, 0, len(ld.Children))
	for _, child := range ld.Children {
		var t thing
		if err := json.Unmarshal(child, &t); err != nil {
			return nil, fmt.Errorf("decode listing child: %w", err)
		}
		if t.Kind != kindPost {
			continue
		}
		var pd postData
		if err := json.Unmarshal(t.Data, &pd); err != nil {
			return nil, fmt.Errorf("decode post entry: %w", err)
		}
		if pd.ID == "" {
			return nil, fmt.Errorf("listing entry missing id")
		}
		ids = append(ids, pd.ID)
	}
	return ids, nil
}

// Post extracts the post submission and up to maxComments direct child
// comment IDs from a post-thread response, which is a two-element array of
// listings: the post itself, then its comment tree.
func (p *Parser) Post(raw []byte, maxComments int) (tracker.Submission, []string, error) {
	postListing, commentListing, err := splitThread(raw)
	if err != nil {
		return tracker.Submission{}, nil, err
	}

	pd, err := firstChild[postData](postListing, kindPost)
	if err != nil {
		return tracker.Submission{}, nil, fmt.Errorf("post entry: %w", err)
	}
	if pd.ID == "" {
		return tracker.Submission{}, nil, fmt.Errorf("post entry missing id")
	}

	commentIDs := make([]string, 0, maxComments)
	for _, child := range commentListing.Children {
		if len(commentIDs) >= maxComments {
			break
		}
		var t thing
		if err := json.Unmarshal(child, &t); err != nil {
			return tracker.Submission{}, nil, fmt.Errorf("decode comment child: %w", err)
		}
		// "more" stubs and other non-comment children are skipped, not errors.
		if t.Kind != kindComment {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(t.Data, &cd); err != nil {
			return tracker.Submission{}, nil, fmt.Errorf("decode comment entry: %w", err)
		}
		if cd.ID == "" {
			return tracker.Submission{}, nil, fmt.Errorf("comment entry missing id")
		}
		commentIDs = append(commentIDs, cd.ID)
	}

	sub := tracker.Submission{
		ID:        pd.ID,
		ParentID:  pd.ID,
		Kind:      tracker.KindPost,
		Score:     pd.Score,
		CreatedAt: time.Unix(int64(pd.CreatedUTC), 0).UTC(),
		Author:    orUnknown(pd.Author),
		Subreddit: orUnknown(pd.Subreddit),
		Text:      submissionText(pd.Selftext, pd.Title),
	}
	return sub, commentIDs, nil
}

// Comment extracts the first-listed comment and up to maxReplies embedded
// reply payloads from a comment-thread response. The replies need no further
// fetches; they are returned raw for the reply tier to parse.
func (p *Parser) Comment(raw []byte, parentPostID string, maxReplies int) (tracker.Submission, []json.RawMessage, error) {
	_, commentListing, err := splitThread(raw)
	if err != nil {
		return tracker.Submission{}, nil, err
	}

	cd, err := firstChild[commentData](commentListing, kindComment)
	if err != nil {
		return tracker.Submission{}, nil, fmt.Errorf("comment entry: %w", err)
	}
	if cd.ID == "" {
		return tracker.Submission{}, nil, fmt.Errorf("comment entry missing id")
	}

	replyChildren, err := cd.Replies.children()
	if err != nil {
		return tracker.Submission{}, nil, err
	}
	replies := make([]json.RawMessage, 0, maxReplies)
	for _, child := range replyChildren {
		if len(replies) >= maxReplies {
			break
		}
		var t thing
		if err := json.Unmarshal(child, &t); err != nil {
			return tracker.Submission{}, nil, fmt.Errorf("decode reply child: %w", err)
		}
		if t.Kind != kindComment {
			continue
		}
		replies = append(replies, child)
	}

	sub := tracker.Submission{
		ID:        cd.ID,
		ParentID:  parentPostID,
		Kind:      tracker.KindComment,
		Score:     cd.Score,
		CreatedAt: time.Unix(int64(cd.CreatedUTC), 0).UTC(),
		Author:    orUnknown(cd.Author),
		Subreddit: orUnknown(cd.Subreddit),
		Text:      submissionText(cd.Body, ""),
	}
	return sub, replies, nil
}

// Reply extracts a submission from one embedded reply payload, which is a
// single t1 thing with no list wrapper.
func (p *Parser) Reply(raw json.RawMessage, parentPostID string) (tracker.Submission, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return tracker.Submission{}, fmt.Errorf("decode reply: %w", err)
	}
	if t.Kind != kindComment {
		return tracker.Submission{}, fmt.Errorf("reply kind is %q, want %q", t.Kind, kindComment)
	}
	var cd commentData
	if err := json.Unmarshal(t.Data, &cd); err != nil {
		return tracker.Submission{}, fmt.Errorf("decode reply entry: %w", err)
	}
	if cd.ID == "" {
		return tracker.Submission{}, fmt.Errorf("reply entry missing id")
	}

	return tracker.Submission{
		ID:        cd.ID,
		ParentID:  parentPostID,
		Kind:      tracker.KindReply,
		Score:     cd.Score,
		CreatedAt: time.Unix(int64(cd.CreatedUTC), 0).UTC(),
		Author:    orUnknown(cd.Author),
		Subreddit: orUnknown(cd.Subreddit),
		Text:      submissionText(cd.Body, ""),
	}, nil
}

// splitThread decodes the two-element thread response shared by the post and
// comment endpoints: element 0 is the submission listing, element 1 the
// child-comments listing.
func splitThread(raw []byte) (listingData, listingData, error) {
	var elements []thing
	if err := json.Unmarshal(raw, &elements); err != nil {
		return listingData{}, listingData{}, fmt.Errorf("decode thread response: %w", err)
	}
	if len(elements) < 2 {
		return listingData{}, listingData{}, fmt.Errorf("thread response has %d elements, want 2", len(elements))
	}

	var listings [2]listingData
	for i := range 2 {
		if elements[i].Kind != kindListing {
			return listingData{}, listingData{}, fmt.Errorf("thread element %d kind is %q, want %q", i, elements[i].Kind, kindListing)
		}
		if err := json.Unmarshal(elements[i].Data, &listings[i]); err != nil {
			return listingData{}, listingData{}, fmt.Errorf("decode thread element %d: %w", i, err)
		}
	}
	return listings[0], listings[1], nil
}

// firstChild decodes the first child of the given kind from a listing,
// failing when the listing has no such child.
func firstChild[T any](ld listingData, kind string) (T, error) {
	var zero T
	for _, child := range ld.Children {
		var t thing
		if err := json.Unmarshal(child, &t); err != nil {
			return zero, fmt.Errorf("decode child: %w", err)
		}
		if t.Kind != kind {
			continue
		}
		var out T
		if err := json.Unmarshal(t.Data, &out); err != nil {
			return zero, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return out, nil
	}
	return zero, fmt.Errorf("no %s child in listing", kind)
}

// submissionText applies the uniform extraction rule: the stripped body when
// non-empty, else the title. Both empty still parses; it just yields no
// candidates.
func submissionText(body, title string) string {
	if text := strings.TrimSpace(body); text != "" {
		return text
	}
	return strings.TrimSpace(title)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}
