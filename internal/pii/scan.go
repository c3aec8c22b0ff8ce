package pii

import (
	"time"

	"github.com/refinery-hq/refinery/pkg/models"
)

// ScanSample is one example hit collected during a full-source scan,
// capped per type so the UI can show representative values.
type ScanSample struct {
	Type          string `json:"type"`
	Column        string `json:"column"`
	OriginalValue string `json:"original_value"`
	RowIndex      int    `json:"row_index"`
}

// ScanResults summarizes PII found across a source's records.
type ScanResults struct {
	Summary   map[string]int            `json:"summary"`
	ByColumn  map[string]map[string]int `json:"by_column"`
	Samples   []ScanSample              `json:"samples"`
	ScannedAt time.Time                 `json:"scanned_at"`
}

const maxSamplesPerType = 10

// categoryTypes maps plural summary categories to the match type they count.
var categoryTypes = map[string]models.RuleType{
	"emails":    models.RuleEmail,
	"phones":    models.RulePhone,
	"names":     models.RuleName,
	"addresses": models.RuleAddress,
	"companies": models.RuleCompany,
}

// ScanRecords runs the built-in detectors plus any enabled custom rules
// over the scan columns of every record, accumulating per-type and
// per-column counts. Invalid custom patterns are skipped, not fatal.
func ScanRecords(records []models.Record, columnsToScan []string, rules []models.Rule) ScanResults {
	summary := map[string]int{
		"names":     0,
		"emails":    0,
		"phones":    0,
		"addresses": 0,
		"companies": 0,
		"custom":    0,
	}
	byColumn := map[string]map[string]int{}
	var samples []ScanSample

	sampleCount := func(typ string) int {
		n := 0
		for _, s := range samples {
			if s.Type == typ {
				n++
			}
		}
		return n
	}

	for _, record := range records {
		for _, column := range columnsToScan {
			value, ok := record.Data[column].(string)
			if !ok || value == "" {
				continue
			}

			detection := Detect(value)
			if byColumn[column] == nil {
				byColumn[column] = map[string]int{}
			}

			for category, count := range detection.Counts {
				if count == 0 {
					continue
				}
				summary[category] += count
				byColumn[column][category] += count

				if sampleCount(category) < maxSamplesPerType {
					for _, m := range detection.Matches {
						if m.Type == categoryTypes[category] {
							samples = append(samples, ScanSample{
								Type:          category,
								Column:        column,
								OriginalValue: m.Value,
								RowIndex:      record.RowIndex,
							})
							break
						}
					}
				}
			}

			for _, rule := range rules {
				if rule.Type != models.RuleCustom || rule.Pattern == "" || !rule.Enabled {
					continue
				}
				matches, err := DetectCustom(value, rule.Pattern)
				if err != nil || len(matches) == 0 {
					continue
				}
				summary["custom"] += len(matches)
				byColumn[column]["custom"] += len(matches)
				if sampleCount("custom") < maxSamplesPerType {
					samples = append(samples, ScanSample{
						Type:          "custom",
						Column:        column,
						OriginalValue: matches[0].Value,
						RowIndex:      record.RowIndex,
					})
				}
			}
		}
	}

	return ScanResults{Summary: summary, ByColumn: byColumn, Samples: samples, ScannedAt: time.Now().UTC()}
}

// TotalInstances sums every category in the scan summary.
func (r ScanResults) TotalInstances() int {
	total := 0
	for _, n := range r.Summary {
		total += n
	}
	return total
}
