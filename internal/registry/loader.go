package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tickerscout/tickerscout/internal/metrics"
)

// DefaultURL is the SEC company-tickers file.
const DefaultURL = "https://www.sec.gov/files/company_tickers.json"

// secEntry is one record of the SEC company-tickers JSON, which is keyed by
// arbitrary numeric strings rather than being an array.
type secEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// cacheFile is the on-disk snapshot format, written after a successful SEC
// load and read back as the first fallback on the NEXT run.
type cacheFile struct {
	FetchedAt time.Time `json:"fetched_at"`
	Symbols   []string  `json:"symbols"`
}

// LoaderConfig controls the SEC fetch and the cache location.
type LoaderConfig struct {
	URL string
	// ContactEmail goes into the User-Agent; the SEC rejects requests
	// without identifying contact info.
	ContactEmail string
	CachePath    string
	Timeout      time.Duration
}

func (c LoaderConfig) withDefaults() LoaderConfig {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// Loader produces registry snapshots. The fallback chain on SEC failure is
// cache file, then built-in list, then an empty set; every fallback is a
// degraded outcome the run surfaces loudly.
type Loader struct {
	cfg    LoaderConfig
	http   *http.Client
	logger *zap.Logger
}

// NewLoader builds a Loader from cfg.
func NewLoader(cfg LoaderConfig, logger *zap.Logger) *Loader {
	cfg = cfg.withDefaults()
	return &Loader{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Load fetches the symbol set once, before traversal starts. It never fails:
// a load problem degrades through the fallback chain and is reported via the
// snapshot's Source and a warning log.
func (l *Loader) Load(ctx context.Context) *Snapshot {
	symbols, err := l.fetchSEC(ctx)
	if err == nil {
		l.logger.Info("registry loaded from SEC", zap.Int("symbols", len(symbols)))
		l.writeCache(symbols)
		snap := NewSnapshot(symbols, SourceSEC)
		metrics.SetRegistrySymbols(string(snap.Source()), snap.Len())
		return snap
	}
	l.logger.Warn("SEC registry load failed, falling back", zap.Error(err))

	if cached, cacheErr := l.readCache(); cacheErr == nil {
		l.logger.Warn("registry degraded to cached snapshot",
			zap.String("path", l.cfg.CachePath),
			zap.Int("symbols", len(cached)))
		snap := NewSnapshot(cached, SourceCache)
		metrics.SetRegistrySymbols(string(snap.Source()), snap.Len())
		return snap
	} else if l.cfg.CachePath != "" {
		l.logger.Warn("registry cache unavailable", zap.Error(cacheErr))
	}

	if len(builtinSymbols) > 0 {
		l.logger.Warn("registry degraded to built-in symbol list",
			zap.Int("symbols", len(builtinSymbols)))
		snap := NewSnapshot(builtinSymbols, SourceBuiltin)
		metrics.SetRegistrySymbols(string(snap.Source()), snap.Len())
		return snap
	}

	l.logger.Error("registry empty: every candidate will be rejected this run")
	snap := NewSnapshot(nil, SourceEmpty)
	metrics.SetRegistrySymbols(string(snap.Source()), 0)
	return snap
}

func (l *Loader) fetchSEC(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	userAgent := "tickerscout/1.0"
	if l.cfg.ContactEmail != "" {
		userAgent += " " + l.cfg.ContactEmail
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", l.cfg.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("GET %s: unexpected status %s", l.cfg.URL, resp.Status)
	}

	var entries map[string]secEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode company tickers: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("company tickers file is empty")
	}

	seen := make(map[string]struct{}, len(entries))
	symbols := make([]string, 0, len(entries))
	for _, entry := range entries {
		symbol := strings.ToUpper(strings.TrimSpace(entry.Ticker))
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// writeCache persists the symbol list for the next run. Best effort: cache
// write problems never degrade the current run.
func (l *Loader) writeCache(symbols []string) {
	if l.cfg.CachePath == "" {
		return
	}
	data, err := json.Marshal(cacheFile{FetchedAt: time.Now().UTC(), Symbols: symbols})
	if err != nil {
		l.logger.Warn("marshal registry cache", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.cfg.CachePath), 0o755); err != nil {
		l.logger.Warn("create registry cache dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.cfg.CachePath, data, 0o644); err != nil {
		l.logger.Warn("write registry cache", zap.Error(err))
	}
}

func (l *Loader) readCache() ([]string, error) {
	if l.cfg.CachePath == "" {
		return nil, fmt.Errorf("no cache path configured")
	}
	data, err := os.ReadFile(l.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var cached cacheFile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	if len(cached.Symbols) == 0 {
		return nil, fmt.Errorf("cache holds no symbols")
	}
	return cached.Symbols, nil
}
