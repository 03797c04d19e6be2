package tracker

import (
	"sort"
	"strings"
)

// Validator turns extractor candidates into validated, deduplicated mentions.
// It is stateless after construction and safe for concurrent use: the registry
// snapshot and exclusion set are read-only.
type Validator struct {
	extractor Extractor
	registry  Registry
	excluded  map[string]struct{}
}

// NewValidator builds a Validator over the given extractor, registry snapshot,
// and exclusion list.
func NewValidator(extractor Extractor, registry Registry, exclusions []string) *Validator {
	excluded := make(map[string]struct{}, len(exclusions))
	for _, symbol := range exclusions {
		excluded[strings.ToUpper(symbol)] = struct{}{}
	}
	return &Validator{
		extractor: extractor,
		registry:  registry,
		excluded:  excluded,
	}
}

// Validate extracts candidates from the submission's text and returns one
// mention per validated symbol, in ascending symbol order. A symbol survives
// iff it is registered and not excluded; duplicates collapse to one mention.
func (v *Validator) Validate(sub Submission) []Mention {
	candidates := v.extractor.Candidates(sub.Text)
	if len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	symbols := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		symbol := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(candidate), "$"))
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		if _, skip := v.excluded[symbol]; skip {
			continue
		}
		if !v.registry.Contains(symbol) {
			continue
		}
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 {
		return nil
	}
	sort.Strings(symbols)

	mentions := make([]Mention, 0, len(symbols))
	for _, symbol := range symbols {
		mentions = append(mentions, Mention{
			Symbol:       symbol,
			SubmissionID: sub.ID,
			PostID:       sub.ParentID,
			Kind:         sub.Kind,
			Author:       sub.Author,
			Subreddit:    sub.Subreddit,
			Score:        sub.Score,
			CreatedAt:    sub.CreatedAt,
		})
	}
	return mentions
}
