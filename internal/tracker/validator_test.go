package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// listExtractor returns a fixed candidate slice regardless of input text.
type listExtractor []string

func (e listExtractor) Candidates(string) []string { return e }

func TestValidateNormalizesAndDeduplicates(t *testing.T) {
	t.Parallel()

	v := NewValidator(listExtractor{"AAPL", "aapl", "$AAPL", " $aApL "}, fakeRegistry{"AAPL": {}}, nil)
	mentions := v.Validate(Submission{ID: "p1", ParentID: "p1", Kind: KindPost, Text: "x"})

	require.Len(t, mentions, 1, "case and cashtag variants collapse to one mention")
	require.Equal(t, "AAPL", mentions[0].Symbol)
}

func TestValidateRejectsUnregisteredSymbols(t *testing.T) {
	t.Parallel()

	v := NewValidator(listExtractor{"TSLA", "ZZZZZ"}, fakeRegistry{"TSLA": {}}, nil)
	mentions := v.Validate(Submission{ID: "p1", ParentID: "p1", Kind: KindPost, Text: "x"})

	require.Len(t, mentions, 1)
	require.Equal(t, "TSLA", mentions[0].Symbol)
}

func TestValidateExclusionBeatsRegistration(t *testing.T) {
	t.Parallel()

	// YOLO and DD are real-word false positives even when some registry
	// happens to list them.
	reg := fakeRegistry{"YOLO": {}, "DD": {}, "GME": {}}
	v := NewValidator(listExtractor{"YOLO", "DD", "GME"}, reg, []string{"yolo", "DD"})
	mentions := v.Validate(Submission{ID: "c1", ParentID: "p1", Kind: KindComment, Text: "x"})

	require.Len(t, mentions, 1)
	require.Equal(t, "GME", mentions[0].Symbol)
}

func TestValidateSortsSymbolsAscending(t *testing.T) {
	t.Parallel()

	reg := fakeRegistry{"AAPL": {}, "GME": {}, "TSLA": {}}
	v := NewValidator(listExtractor{"TSLA", "AAPL", "GME"}, reg, nil)
	mentions := v.Validate(Submission{ID: "p1", ParentID: "p1", Kind: KindPost, Text: "x"})

	require.Len(t, mentions, 3)
	require.Equal(t, "AAPL", mentions[0].Symbol)
	require.Equal(t, "GME", mentions[1].Symbol)
	require.Equal(t, "TSLA", mentions[2].Symbol)
}

func TestValidateCopiesProvenanceOntoEveryMention(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	sub := Submission{
		ID:        "r9",
		ParentID:  "p2",
		Kind:      KindReply,
		Score:     -4,
		CreatedAt: created,
		Author:    "throwaway",
		Subreddit: "wallstreetbets",
		Text:      "x",
	}
	reg := fakeRegistry{"AAPL": {}, "GME": {}}
	mentions := NewValidator(listExtractor{"GME", "AAPL"}, reg, nil).Validate(sub)

	require.Len(t, mentions, 2)
	for _, m := range mentions {
		require.Equal(t, "r9", m.SubmissionID)
		require.Equal(t, "p2", m.PostID)
		require.Equal(t, KindReply, m.Kind)
		require.Equal(t, -4, m.Score)
		require.Equal(t, created, m.CreatedAt)
		require.Equal(t, "throwaway", m.Author)
		require.Equal(t, "wallstreetbets", m.Subreddit)
	}
}

func TestValidateEmptyResults(t *testing.T) {
	t.Parallel()

	reg := fakeRegistry{"TSLA": {}}
	cases := map[string]listExtractor{
		"no candidates":       {},
		"nothing registered":  {"FOO", "BARQ"},
		"everything excluded": {"CEO", "USA"},
		"blank candidates":    {"", "  ", "$"},
	}
	for name, extractor := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v := NewValidator(extractor, reg, DefaultExclusions())
			require.Empty(t, v.Validate(Submission{ID: "p1", Text: "x"}))
		})
	}
}
