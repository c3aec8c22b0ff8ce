// Package mapping projects source records onto the canonical target schema
// via user-defined mapping entries, applying column-level transformations.
package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/refinery-hq/refinery/pkg/models"
)

// PreviewRow pairs a source record with its mapped projection.
type PreviewRow struct {
	Original map[string]any `json:"original"`
	Mapped   map[string]any `json:"mapped"`
}

// ApplyMappings builds the mapped projection of one record. Only mapped
// target fields appear in the result; unmapped source columns are dropped.
// When several entries target the same field, the last-applied entry wins.
// Source columns absent from the record contribute no key.
func ApplyMappings(record models.Record, entries []models.MappingEntry) map[string]any {
	mapped := make(map[string]any, len(entries))
	for _, entry := range entries {
		value, ok := record.Data[entry.SourceColumn]
		if !ok {
			continue
		}
		for _, transform := range entry.Transformations {
			value = ApplyTransformation(value, transform)
		}
		mapped[entry.TargetField] = value
	}
	return mapped
}

// Preview maps up to limit records, returning original/mapped pairs for the
// configuration UI. limit <= 0 means no limit.
func Preview(records []models.Record, entries []models.MappingEntry, limit int) []PreviewRow {
	rows := make([]PreviewRow, 0, len(records))
	for _, record := range records {
		if limit > 0 && len(rows) >= limit {
			break
		}
		rows = append(rows, PreviewRow{
			Original: record.Data,
			Mapped:   ApplyMappings(record, entries),
		})
	}
	return rows
}

// dateLayouts are tried in order when parsing date_format input.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
}

// ApplyTransformation runs one transformation over a value. Nil passes
// through untouched; unparseable dates and value_map misses pass the
// original value through rather than failing the record.
func ApplyTransformation(value any, transform models.Transformation) any {
	if value == nil {
		return value
	}

	switch transform.Kind {
	case models.TransformLowercase:
		return strings.ToLower(stringify(value))
	case models.TransformUppercase:
		return strings.ToUpper(stringify(value))
	case models.TransformTrim:
		return strings.TrimSpace(stringify(value))
	case models.TransformDateFormat:
		// The configured format string is accepted but output is always
		// ISO date-only, matching the behavior existing pipelines rely on.
		s := stringify(value)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format("2006-01-02")
			}
		}
		return value
	case models.TransformValueMap:
		if transform.ValueMap == nil {
			return value
		}
		if mapped, ok := transform.ValueMap[stringify(value)]; ok {
			return mapped
		}
		return value
	}
	return value
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	// JSON-decoded numbers arrive as float64; print integers without the
	// trailing ".0" the %v verb would not add but %f would.
	if f, ok := value.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", value)
}
