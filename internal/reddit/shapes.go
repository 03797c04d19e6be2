package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reddit wire kinds carried in thing envelopes.
const (
	kindListing = "Listing"
	kindPost    = "t3"
	kindComment = "t1"
)

// thing is the universal Reddit envelope: a kind tag plus a kind-specific
// payload. Children stay raw so each tier decodes only the shapes it owns.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// listingData is the payload of a kind=Listing thing.
type listingData struct {
	Children []json.RawMessage `json:"children"`
}

// postData is the payload of a kind=t3 thing.
type postData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
}

// commentData is the payload of a kind=t1 thing.
type commentData struct {
	ID         string       `json:"id"`
	Body       string       `json:"body"`
	Score      int          `json:"score"`
	CreatedUTC float64      `json:"created_utc"`
	Author     string       `json:"author"`
	Subreddit  string       `json:"subreddit"`
	Replies    repliesField `json:"replies"`
}

// repliesField models the replies value on a comment, which the API sends
// either as an empty string (no replies) or as a nested Listing thing.
type repliesField struct {
	listing *thing
}

// UnmarshalJSON accepts "", null, or a Listing object.
func (r *repliesField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		r.listing = nil
		return nil
	}
	var t thing
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return fmt.Errorf("decode replies listing: %w", err)
	}
	r.listing = &t
	return nil
}

// children returns the raw reply things, or nil when the API sent "".
func (r repliesField) children() ([]json.RawMessage, error) {
	if r.listing == nil {
		return nil, nil
	}
	if r.listing.Kind != kindListing {
		return nil, fmt.Errorf("replies kind is %q, want %q", r.listing.Kind, kindListing)
	}
	var ld listingData
	if err := json.Unmarshal(r.listing.Data, &ld); err != nil {
		return nil, fmt.Errorf("decode replies children: %w", err)
	}
	return ld.Children, nil
}
