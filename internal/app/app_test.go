package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tickerscout/tickerscout/internal/config"
	"github.com/tickerscout/tickerscout/internal/storage/memory"
	"github.com/tickerscout/tickerscout/internal/tracker"
)

// The fixtures describe one full scan end to end: a listing of two
// posts where p1 yields one TSLA mention and one comment, p2 is malformed,
// and c1 yields one GME mention with no replies.
const (
	secJSON = `{
	  "0": {"cik_str": 1318605, "ticker": "TSLA", "title": "Tesla, Inc."},
	  "1": {"cik_str": 1326380, "ticker": "GME", "title": "GameStop Corp."}
	}`
	listingJSON = `{"kind": "Listing", "data": {"children": [
	  {"kind": "t3", "data": {"id": "p1"}},
	  {"kind": "t3", "data": {"id": "p2"}}
	]}}`
	postP1JSON = `[
	  {"kind": "Listing", "data": {"children": [
	    {"kind": "t3", "data": {"id": "p1", "title": "yolo", "selftext": "All in on $TSLA",
	     "score": 10, "created_utc": 1700000000, "author": "u1", "subreddit": "stocks"}}
	  ]}},
	  {"kind": "Listing", "data": {"children": [
	    {"kind": "t1", "data": {"id": "c1", "body": "x"}}
	  ]}}
	]`
	commentC1JSON = `[
	  {"kind": "Listing", "data": {"children": []}},
	  {"kind": "Listing", "data": {"children": [
	    {"kind": "t1", "data": {"id": "c1", "body": "GME to the moon",
	     "score": 5, "created_utc": 1700000100, "author": "u2", "subreddit": "stocks",
	     "replies": ""}}
	  ]}}
	]`
)

func newScenarioServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sec.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(secJSON))
	})
	mux.HandleFunc("/r/stocks/top.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingJSON))
	})
	mux.HandleFunc("/r/stocks/comments/p1.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(postP1JSON))
	})
	mux.HandleFunc("/r/stocks/comments/p2.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`)) // malformed: parse failure, not a crash
	})
	mux.HandleFunc("/r/stocks/comments/p1/comment/c1.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(commentC1JSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		Scan: config.ScanConfig{
			Posts:             15,
			CommentsPerPost:   5,
			RepliesPerComment: 5,
			Concurrency:       15,
		},
		Reddit: config.RedditConfig{
			BaseURL:         baseURL,
			UserAgent:       "tickerscout-test/1.0",
			TimeoutSeconds:  5,
			CooldownSeconds: 1,
		},
		Registry: config.RegistryConfig{
			URL:            baseURL + "/sec.json",
			ContactEmail:   "ops@example.com",
			TimeoutSeconds: 5,
		},
		Database: config.DatabaseConfig{Provider: "memory"},
		Logging:  config.LoggingConfig{Development: true},
	}
}

func TestScanEndToEnd(t *testing.T) {
	srv := newScenarioServer(t)
	cfg := testConfig(srv.URL)

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	require.False(t, a.Registry().Degraded())

	stats, err := a.Scan(context.Background(), "stocks")
	require.NoError(t, err)

	require.Equal(t, tracker.TierCounters{Attempted: 2, Failed: 1}, stats.Posts)
	require.Equal(t, tracker.TierCounters{Attempted: 1, Failed: 0}, stats.Comments)
	require.Equal(t, tracker.TierCounters{Attempted: 0, Failed: 0}, stats.Replies)
	require.Equal(t, 2, stats.MentionsPersisted)

	store, ok := a.Mentions().(*memory.MentionStore)
	require.True(t, ok)
	rows := store.Mentions()
	require.Len(t, rows, 2)

	bySymbol := map[string]tracker.Mention{}
	for _, row := range rows {
		bySymbol[row.Symbol] = row
	}
	require.Equal(t, "p1", bySymbol["TSLA"].SubmissionID)
	require.Equal(t, tracker.KindPost, bySymbol["TSLA"].Kind)
	require.Equal(t, "c1", bySymbol["GME"].SubmissionID)
	require.Equal(t, "p1", bySymbol["GME"].PostID)
	require.Equal(t, tracker.KindComment, bySymbol["GME"].Kind)
}

func TestScanWritesRunRecord(t *testing.T) {
	srv := newScenarioServer(t)
	cfg := testConfig(srv.URL)

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Scan(context.Background(), "stocks")
	require.NoError(t, err)

	runStore, ok := a.runs.(*memory.RunStore)
	require.True(t, ok)
	runs := runStore.Runs()
	require.Len(t, runs, 1)
	require.Equal(t, "stocks", runs[0].Subreddit)
	require.NotEmpty(t, runs[0].ID)
	require.Equal(t, "sec", runs[0].RegistrySource)
	require.False(t, runs[0].FinishedAt.Before(runs[0].StartedAt))
}

func TestScanRequiresSubreddit(t *testing.T) {
	srv := newScenarioServer(t)
	cfg := testConfig(srv.URL)
	cfg.Scan.Subreddit = ""

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Scan(context.Background(), "")
	require.Error(t, err)
}

func TestNewFallsBackWhenRegistryUnavailable(t *testing.T) {
	srv := newScenarioServer(t)
	cfg := testConfig(srv.URL)
	cfg.Registry.URL = srv.URL + "/missing.json"

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err, "registry failure degrades, never aborts startup")
	defer a.Close()
	require.True(t, a.Registry().Degraded())
}
