// Package pii detects and replaces personally identifiable information in
// free text. Detection is pattern-based: structured regexes for emails and
// phone numbers, indicator phrases for names, street/ZIP shapes for
// addresses, and legal suffixes for company names. Callers may add their
// own regex rules on top.
package pii

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/refinery-hq/refinery/pkg/models"
)

// Match is one detected entity span. Value equals text[Start:End].
type Match struct {
	Type  models.RuleType `json:"type"`
	Value string          `json:"value"`
	Start int             `json:"start"`
	End   int             `json:"end"`
}

// DetectionResult is the outcome of a full scan. Counts are keyed by the
// plural category name and reflect raw hits before overlap resolution.
type DetectionResult struct {
	Matches []Match        `json:"matches"`
	Counts  map[string]int `json:"counts"`
}

// PatternError reports a custom pattern that failed to compile, naming the
// offending pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid regex pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Detect scans text for built-in entity types and returns non-overlapping
// matches sorted by start offset. Overlaps are resolved first-match-wins:
// the earliest-starting match is kept and any intersecting later match is
// dropped. This tie-break is compatibility-sensitive; do not change it to
// longest-match-wins.
func Detect(text string) DetectionResult {
	var matches []Match
	counts := map[string]int{
		"emails":    0,
		"phones":    0,
		"names":     0,
		"addresses": 0,
		"companies": 0,
	}

	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		matches = append(matches, Match{Type: models.RuleEmail, Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
		counts["emails"]++
	}

	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		// Dates and short number runs can satisfy the phone shape; require
		// at least 10 digits.
		digits := nonDigit.ReplaceAllString(text[loc[0]:loc[1]], "")
		if len(digits) >= 10 {
			matches = append(matches, Match{Type: models.RulePhone, Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
			counts["phones"]++
		}
	}

	for _, indicator := range nameIndicators {
		for _, loc := range indicator.FindAllStringIndex(text, -1) {
			after := text[loc[1]:]
			if name := capitalizedName.FindString(after); name != "" {
				full := text[loc[0]:loc[1]] + name
				matches = append(matches, Match{Type: models.RuleName, Value: full, Start: loc[0], End: loc[0] + len(full)})
				counts["names"]++
			}
		}
	}

	for _, indicator := range addressIndicators {
		for _, loc := range indicator.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{Type: models.RuleAddress, Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
			counts["addresses"]++
		}
	}

	for _, loc := range companySuffix.FindAllStringIndex(text, -1) {
		before := text[:loc[0]]
		if sub := companyPrefix.FindStringSubmatch(before); sub != nil {
			prefix := sub[1]
			start := loc[0] - len(prefix) - 1
			if start < 0 {
				start = loc[0]
			}
			full := strings.TrimSpace(prefix + " " + text[loc[0]:loc[1]])
			matches = append(matches, Match{Type: models.RuleCompany, Value: full, Start: start, End: loc[1]})
			counts["companies"]++
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	return DetectionResult{Matches: resolveOverlaps(matches), Counts: counts}
}

// DetectCustom scans text with a caller-supplied regex. An unparseable
// pattern returns a *PatternError; callers running production scans skip
// the rule, while the dry-run test API surfaces the error.
func DetectCustom(text, pattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	var matches []Match
	for _, loc := range re.FindAllStringIndex(text, -1) {
		matches = append(matches, Match{Type: models.RuleCustom, Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return matches, nil
}

// resolveOverlaps keeps each match only if its span does not intersect an
// already-kept match. Input must be sorted by the desired priority order.
func resolveOverlaps(matches []Match) []Match {
	var kept []Match
	for _, m := range matches {
		overlaps := false
		for _, k := range kept {
			if m.Start < k.End && m.End > k.Start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}
	return kept
}
