// Package filter evaluates records against the configurable quality rules
// and reports per-rule exclusion accounting for the configuration UI.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/refinery-hq/refinery/pkg/models"
)

// Field search orders. Each rule inspects the first present field from its
// list; records carrying none of the fields pass the rule.
var (
	contentFields = []string{"content", "body", "message", "text", "description"}
	statusFields  = []string{"status", "state", "ticket_status"}
	dateFields    = []string{"date", "created_at", "timestamp", "created", "datetime"}
)

// Warning codes emitted by Summary.
const (
	WarnNoRecordsMatch    = "NO_RECORDS_MATCH"
	WarnHighExclusionRate = "HIGH_EXCLUSION_RATE"
)

// Warning flags a filter configuration likely to surprise the user.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProgressiveCount records how many records remained after one rule ran.
type ProgressiveCount struct {
	Rule      string `json:"rule"`
	Remaining int    `json:"remaining"`
}

// Breakdown attributes exclusions to rules. ByRule counts are sequential
// deltas — each rule's removed count is measured against the set the
// previous rules left, not against the full input.
type Breakdown struct {
	ByRule            map[string]int     `json:"by_rule"`
	ProgressiveCounts []ProgressiveCount `json:"progressive_counts"`
}

// Summary is the result of a dry-run filter evaluation.
type Summary struct {
	TotalCount      int       `json:"total_count"`
	FilteredCount   int       `json:"filtered_count"`
	ExcludedCount   int       `json:"excluded_count"`
	FilterBreakdown Breakdown `json:"filter_breakdown"`
	Warnings        []Warning `json:"warnings"`
}

// Apply runs the filter rules over records in the fixed order
// minConversationLength, minContentLength, statusInclude, statusExclude,
// dateRange, returning the surviving records.
func Apply(records []models.Record, cfg models.FilterConfig) []models.Record {
	result := records

	if cfg.MinConversationLength > 0 {
		result = filterMinConversationLength(result)
	}
	if cfg.MinContentLength > 0 {
		result = filterMinContentLength(result, cfg.MinContentLength)
	}
	if len(cfg.StatusInclude) > 0 {
		result = filterStatus(result, cfg.StatusInclude, true)
	}
	if len(cfg.StatusExclude) > 0 {
		result = filterStatus(result, cfg.StatusExclude, false)
	}
	if cfg.DateRange != nil && (cfg.DateRange.Start != "" || cfg.DateRange.End != "") {
		result = filterDateRange(result, cfg.DateRange)
	}

	return result
}

// GetSummary runs the same rules as Apply but tracks, per rule, how many
// records it removed from the set the previous rules left.
func GetSummary(records []models.Record, cfg models.FilterConfig) Summary {
	totalCount := len(records)
	byRule := map[string]int{}
	var progressive []ProgressiveCount

	remaining := records

	step := func(rule string, filtered []models.Record) {
		byRule[rule] = len(remaining) - len(filtered)
		remaining = filtered
		progressive = append(progressive, ProgressiveCount{Rule: rule, Remaining: len(remaining)})
	}

	if cfg.MinConversationLength > 0 {
		step("minConversationLength", filterMinConversationLength(remaining))
	}
	if cfg.MinContentLength > 0 {
		step("minContentLength", filterMinContentLength(remaining, cfg.MinContentLength))
	}
	if len(cfg.StatusInclude) > 0 {
		step("status", filterStatus(remaining, cfg.StatusInclude, true))
	}
	if len(cfg.StatusExclude) > 0 {
		step("statusExclude", filterStatus(remaining, cfg.StatusExclude, false))
	}
	if cfg.DateRange != nil && (cfg.DateRange.Start != "" || cfg.DateRange.End != "") {
		step("dateRange", filterDateRange(remaining, cfg.DateRange))
	}

	filteredCount := len(remaining)
	excludedCount := totalCount - filteredCount

	var warnings []Warning
	if filteredCount == 0 {
		warnings = append(warnings, Warning{
			Code:    WarnNoRecordsMatch,
			Message: "No records match current filter criteria.",
		})
	} else if totalCount > 0 && float64(excludedCount)/float64(totalCount) > 0.9 {
		pct := int(float64(excludedCount)/float64(totalCount)*100 + 0.5)
		warnings = append(warnings, Warning{
			Code:    WarnHighExclusionRate,
			Message: fmt.Sprintf("Filters exclude %d%% of records. Consider adjusting criteria.", pct),
		})
	}

	return Summary{
		TotalCount:      totalCount,
		FilteredCount:   filteredCount,
		ExcludedCount:   excludedCount,
		FilterBreakdown: Breakdown{ByRule: byRule, ProgressiveCounts: progressive},
		Warnings:        warnings,
	}
}

// filterMinConversationLength passes every record. Real length filtering
// needs conversation grouping, which is a pending product decision; the
// rule still participates in the accounting so the UI shows a zero delta.
func filterMinConversationLength(records []models.Record) []models.Record {
	return records
}

func filterMinContentLength(records []models.Record, minLen int) []models.Record {
	return keep(records, func(r models.Record) bool {
		for _, field := range contentFields {
			if value, ok := r.Data[field].(string); ok {
				return len(value) >= minLen
			}
		}
		return true
	})
}

func filterStatus(records []models.Record, statuses []string, include bool) []models.Record {
	return keep(records, func(r models.Record) bool {
		for _, field := range statusFields {
			value, ok := r.Data[field].(string)
			if !ok {
				continue
			}
			listed := false
			for _, s := range statuses {
				if strings.EqualFold(s, value) {
					listed = true
					break
				}
			}
			return listed == include
		}
		return true
	})
}

func filterDateRange(records []models.Record, dr *models.DateRange) []models.Record {
	start, hasStart := parseDate(dr.Start)
	end, hasEnd := parseDate(dr.End)

	return keep(records, func(r models.Record) bool {
		for _, field := range dateFields {
			raw, ok := r.Data[field]
			if !ok || raw == nil {
				continue
			}
			date, parsed := parseDate(fmt.Sprintf("%v", raw))
			if !parsed {
				continue
			}
			if hasStart && date.Before(start) {
				return false
			}
			if hasEnd && date.After(end) {
				return false
			}
			return true
		}
		return true
	})
}

func keep(records []models.Record, pred func(models.Record) bool) []models.Record {
	var out []models.Record
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
