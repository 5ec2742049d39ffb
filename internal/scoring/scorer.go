package scoring

import (
	"unicode/utf8"

	"github.com/khanhnv2901/secheaders/internal/headers"
	"github.com/khanhnv2901/secheaders/internal/shared/constants"
)

// HeaderResult is the outcome for one catalog entry.
type HeaderResult struct {
	Spec    SecurityHeaderSpec `json:"spec"`
	Present bool               `json:"present"`
	Value   string             `json:"value,omitempty"`
}

// DisplayValue returns Value cut to limit characters, with a continuation
// marker when it was cut. A limit <= 0 uses the default display limit.
func (r HeaderResult) DisplayValue(limit int) string {
	return Truncate(r.Value, limit)
}

// AnalysisResult is the scored breakdown of one header map.
type AnalysisResult struct {
	Headers  []HeaderResult `json:"headers"`
	Score    int            `json:"score"`
	RawScore int            `json:"raw_score"`
	MaxScore int            `json:"max_score"`
	Tier     Tier           `json:"tier"`
}

// Missing returns the keys of absent headers in catalog order.
func (a AnalysisResult) Missing() []string {
	var out []string
	for _, h := range a.Headers {
		if !h.Present {
			out = append(out, h.Spec.Key)
		}
	}
	return out
}

// Present returns how many catalog headers were found.
func (a AnalysisResult) Present() int {
	n := 0
	for _, h := range a.Headers {
		if h.Present {
			n++
		}
	}
	return n
}

// Score evaluates h against catalog. It never fails: a nil or empty map
// scores 0. Header names are matched case-insensitively.
func Score(h headers.HeaderMap, catalog Catalog) AnalysisResult {
	normalized := h.Normalize()

	result := AnalysisResult{
		Headers:  make([]HeaderResult, 0, catalog.Len()),
		MaxScore: catalog.MaxScore(),
	}

	for _, spec := range catalog.specs {
		value, present := normalized[spec.Key]
		entry := HeaderResult{Spec: spec, Present: present}
		if present {
			result.RawScore += spec.Weight
			entry.Value = value
		}
		result.Headers = append(result.Headers, entry)
	}

	result.Score = percentage(result.RawScore, result.MaxScore)
	result.Tier = TierFor(result.Score)
	return result
}

// percentage returns round-half-up(raw / max * 100) using integer math.
func percentage(raw, max int) int {
	if max <= 0 || raw <= 0 {
		return 0
	}
	if raw >= max {
		return 100
	}
	return (200*raw + max) / (2 * max)
}

// Truncate cuts s to limit characters and appends the continuation marker
// when anything was removed.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = constants.DefaultDisplayLimit
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + constants.DisplayContinuation
}
