// Package extract finds candidate ticker strings in free text. The regex
// backend here is the default; anything satisfying the tracker's Extractor
// interface (an NER model, say) slots in without touching the traversal.
package extract

import "regexp"

var (
	// cashtagPattern matches $-prefixed symbols in any case ($tsla, $GME).
	cashtagPattern = regexp.MustCompile(`\$[A-Za-z]{1,5}\b`)
	// symbolPattern matches bare uppercase tokens of ticker length. Common
	// English words caught here are filtered downstream by the exclusion set.
	symbolPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
)

// Regex is the default candidate extractor. Pure and synchronous; it runs
// outside the fetch permit pool.
type Regex struct{}

// NewRegex builds the default extractor.
func NewRegex() *Regex {
	return &Regex{}
}

// Candidates returns every cashtag and ticker-shaped uppercase token in
// text, in match order. Duplicates are left in; the validator dedupes.
func (e *Regex) Candidates(text string) []string {
	if text == "" {
		return nil
	}
	candidates := cashtagPattern.FindAllString(text, -1)
	return append(candidates, symbolPattern.FindAllString(text, -1)...)
}
