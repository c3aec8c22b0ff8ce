package pii

import (
	"fmt"
	"sort"
	"strings"

	"github.com/refinery-hq/refinery/pkg/models"
)

// Replacement records one substitution made by Apply.
type Replacement struct {
	Type        models.RuleType `json:"type"`
	Original    string          `json:"original"`
	Replacement string          `json:"replacement"`
	Start       int             `json:"start"`
	End         int             `json:"end"`
}

// ReplacementResult is the outcome of de-identifying one text value.
type ReplacementResult struct {
	Original     string        `json:"original"`
	Replaced     string        `json:"replaced"`
	Replacements []Replacement `json:"replacements"`
}

// Highlight locates one replaced span within a record column, for preview
// rendering.
type Highlight struct {
	Type   models.RuleType `json:"type"`
	Start  int             `json:"start"`
	End    int             `json:"end"`
	Column string          `json:"column"`
}

// RecordResult is the outcome of de-identifying one record.
type RecordResult struct {
	Original      map[string]any `json:"original"`
	Deidentified  map[string]any `json:"deidentified"`
	PiiHighlights []Highlight    `json:"pii_highlights"`
}

// candidate is a pending substitution before overlap resolution.
type candidate struct {
	ruleType    models.RuleType
	value       string
	start, end  int
	replacement string
}

// Apply runs the enabled rules against text and returns the replaced text
// plus every substitution made, in ascending span order.
//
// Name replacements containing the "_N" placeholder receive a stable
// integer suffix keyed by the lower-cased matched value, assigned in
// first-seen order. The counter map lives only for this call, so the same
// name maps to the same pseudonym within one invocation but not across
// invocations.
func Apply(text string, rules []models.Rule) ReplacementResult {
	if text == "" {
		return ReplacementResult{Original: text, Replaced: text}
	}

	var active []models.Rule
	for _, r := range rules {
		if r.Enabled {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return ReplacementResult{Original: text, Replaced: text}
	}

	var all []candidate
	nameCounter := map[string]int{}

	for _, rule := range active {
		if rule.Type == models.RuleCustom && rule.Pattern != "" {
			matches, err := DetectCustom(text, rule.Pattern)
			if err != nil {
				// Production scans tolerate broken custom patterns; the
				// dry-run test endpoint is where they surface as errors.
				continue
			}
			for _, m := range matches {
				all = append(all, candidate{
					ruleType:    models.RuleCustom,
					value:       m.Value,
					start:       m.Start,
					end:         m.End,
					replacement: rule.Replacement,
				})
			}
			continue
		}

		detection := Detect(text)
		for _, m := range detection.Matches {
			if m.Type != rule.Type {
				continue
			}
			replacement := rule.Replacement
			if m.Type == models.RuleName && strings.Contains(replacement, "_N") {
				key := strings.ToLower(m.Value)
				if _, seen := nameCounter[key]; !seen {
					nameCounter[key] = len(nameCounter) + 1
				}
				replacement = strings.Replace(replacement, "_N", fmt.Sprintf("_%d", nameCounter[key]), 1)
			}
			all = append(all, candidate{
				ruleType:    m.Type,
				value:       m.Value,
				start:       m.Start,
				end:         m.End,
				replacement: replacement,
			})
		}
	}

	// Descending start order so substitutions can be applied right to left
	// without invalidating earlier offsets. The stable sort preserves rule
	// order among same-start matches, making overlap resolution honor rule
	// priority.
	sort.SliceStable(all, func(i, j int) bool { return all[i].start > all[j].start })

	var kept []candidate
	for _, c := range all {
		overlaps := false
		for _, k := range kept {
			if c.start < k.end && c.end > k.start {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	replaced := text
	replacements := make([]Replacement, 0, len(kept))
	for _, c := range kept {
		replaced = replaced[:c.start] + c.replacement + replaced[c.end:]
		replacements = append(replacements, Replacement{
			Type:        c.ruleType,
			Original:    c.value,
			Replacement: c.replacement,
			Start:       c.start,
			End:         c.end,
		})
	}

	// Kept candidates were applied right to left; report them in original
	// text order.
	for i, j := 0, len(replacements)-1; i < j; i, j = i+1, j-1 {
		replacements[i], replacements[j] = replacements[j], replacements[i]
	}

	return ReplacementResult{Original: text, Replaced: replaced, Replacements: replacements}
}

// DeidentifyRecord applies the rules to every string-valued field among
// columnsToScan. Non-string and absent fields pass through untouched.
func DeidentifyRecord(record map[string]any, columnsToScan []string, rules []models.Rule) RecordResult {
	deidentified := make(map[string]any, len(record))
	for k, v := range record {
		deidentified[k] = v
	}

	var highlights []Highlight
	for _, column := range columnsToScan {
		value, ok := record[column].(string)
		if !ok || value == "" {
			continue
		}
		result := Apply(value, rules)
		deidentified[column] = result.Replaced
		for _, r := range result.Replacements {
			highlights = append(highlights, Highlight{Type: r.Type, Start: r.Start, End: r.End, Column: column})
		}
	}

	return RecordResult{Original: record, Deidentified: deidentified, PiiHighlights: highlights}
}
