// Package registry loads and holds the authoritative ticker-symbol set the
// validator checks candidates against. The snapshot comes from the SEC
// company-tickers file, with a local cache and a built-in list as fallbacks.
package registry

import "strings"

// Source identifies where a snapshot's symbols came from.
type Source string

// Snapshot sources, in decreasing order of trust.
const (
	SourceSEC     Source = "sec"
	SourceCache   Source = "cache"
	SourceBuiltin Source = "builtin"
	SourceEmpty   Source = "empty"
)

// Snapshot is an immutable symbol set frozen for the duration of one run.
// It is safe for concurrent reads without locking.
type Snapshot struct {
	symbols map[string]struct{}
	source  Source
}

// NewSnapshot builds a snapshot from a symbol list, uppercasing on the way in.
func NewSnapshot(symbols []string, source Source) *Snapshot {
	set := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		set[symbol] = struct{}{}
	}
	return &Snapshot{symbols: set, source: source}
}

// Contains reports whether the uppercase symbol is registered.
func (s *Snapshot) Contains(symbol string) bool {
	_, ok := s.symbols[strings.ToUpper(symbol)]
	return ok
}

// Len returns the number of registered symbols.
func (s *Snapshot) Len() int {
	return len(s.symbols)
}

// Source reports where the snapshot was loaded from.
func (s *Snapshot) Source() Source {
	return s.source
}

// Degraded reports whether the run is validating against anything other than
// the live SEC set. A degraded empty snapshot suppresses all mention output,
// so callers surface this loudly.
func (s *Snapshot) Degraded() bool {
	return s.source != SourceSEC
}

// Symbols returns the registered symbols in unspecified order.
func (s *Snapshot) Symbols() []string {
	out := make([]string, 0, len(s.symbols))
	for symbol := range s.symbols {
		out = append(out, symbol)
	}
	return out
}
