package filter

import (
	"fmt"
	"testing"

	"github.com/refinery-hq/refinery/pkg/models"
)

func rec(i int, data map[string]any) models.Record {
	return models.Record{RowIndex: i, Data: data}
}

func TestApply_NoConfigPassesEverything(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"content": "hi"}),
		rec(1, map[string]any{"content": "hello there"}),
	}
	got := Apply(records, models.FilterConfig{})
	if len(got) != 2 {
		t.Errorf("passed %d records, want 2", len(got))
	}
}

func TestApply_MinContentLength(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"content": "short"}),
		rec(1, map[string]any{"content": "long enough to pass the bar"}),
		rec(2, map[string]any{"other_field": "no content field at all"}),
	}
	got := Apply(records, models.FilterConfig{MinContentLength: 10})

	if len(got) != 2 {
		t.Fatalf("passed %d records, want 2", len(got))
	}
	// Records without any content-like field pass through.
	if got[1].RowIndex != 2 {
		t.Errorf("expected record without content field to pass, got %+v", got)
	}
}

func TestApply_MinContentLengthChecksFirstPresentField(t *testing.T) {
	// "content" is present and too short; the longer "body" must not be
	// consulted.
	records := []models.Record{
		rec(0, map[string]any{"content": "x", "body": "this body is plenty long"}),
	}
	got := Apply(records, models.FilterConfig{MinContentLength: 10})
	if len(got) != 0 {
		t.Errorf("record should have been dropped on the first present field")
	}
}

func TestApply_StatusInclude(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"status": "Open"}),
		rec(1, map[string]any{"status": "closed"}),
		rec(2, map[string]any{"unrelated": true}),
	}
	got := Apply(records, models.FilterConfig{StatusInclude: []string{"open"}})

	if len(got) != 2 {
		t.Fatalf("passed %d records, want 2 (case-insensitive include + no-field passthrough)", len(got))
	}
}

func TestApply_StatusExclude(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"status": "spam"}),
		rec(1, map[string]any{"status": "open"}),
	}
	got := Apply(records, models.FilterConfig{StatusExclude: []string{"spam"}})
	if len(got) != 1 || got[0].RowIndex != 1 {
		t.Errorf("got %+v, want only the open record", got)
	}
}

func TestApply_DateRange(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"created_at": "2024-01-15"}),
		rec(1, map[string]any{"created_at": "2024-06-15"}),
		rec(2, map[string]any{"created_at": "2024-12-15"}),
		rec(3, map[string]any{"created_at": "garbage"}),
		rec(4, map[string]any{"no_date": true}),
	}
	cfg := models.FilterConfig{DateRange: &models.DateRange{Start: "2024-03-01", End: "2024-09-01"}}
	got := Apply(records, cfg)

	// In range, unparseable (passes), and missing field (passes).
	if len(got) != 3 {
		t.Fatalf("passed %d records, want 3: %+v", len(got), got)
	}
	want := []int{1, 3, 4}
	for i, r := range got {
		if r.RowIndex != want[i] {
			t.Errorf("got row %d at position %d, want %d", r.RowIndex, i, want[i])
		}
	}
}

func TestApply_DateRangeOpenEnded(t *testing.T) {
	records := []models.Record{
		rec(0, map[string]any{"date": "2020-01-01"}),
		rec(1, map[string]any{"date": "2025-01-01"}),
	}
	got := Apply(records, models.FilterConfig{DateRange: &models.DateRange{Start: "2023-01-01"}})
	if len(got) != 1 || got[0].RowIndex != 1 {
		t.Errorf("open-ended range kept %+v", got)
	}
}

func TestGetSummary_SequentialAccounting(t *testing.T) {
	// 100 records: 30 fail minContentLength; of the surviving 70, 20 are
	// not "open". Rule counts must be sequential deltas.
	var records []models.Record
	for i := 0; i < 100; i++ {
		content := "this content is definitely longer than fifty characters in total"
		if i < 30 {
			content = "too short"
		}
		status := "open"
		if i >= 30 && i < 50 {
			status = "closed"
		}
		records = append(records, rec(i, map[string]any{"content": content, "status": status}))
	}

	cfg := models.FilterConfig{MinContentLength: 50, StatusInclude: []string{"open"}}
	summary := GetSummary(records, cfg)

	if summary.TotalCount != 100 {
		t.Errorf("TotalCount = %d", summary.TotalCount)
	}
	if got := summary.FilterBreakdown.ByRule["minContentLength"]; got != 30 {
		t.Errorf("byRule[minContentLength] = %d, want 30", got)
	}
	if got := summary.FilterBreakdown.ByRule["status"]; got != 20 {
		t.Errorf("byRule[status] = %d, want 20", got)
	}
	if summary.FilteredCount != 50 {
		t.Errorf("FilteredCount = %d, want 50", summary.FilteredCount)
	}
	if summary.ExcludedCount != 50 {
		t.Errorf("ExcludedCount = %d, want 50", summary.ExcludedCount)
	}

	wantProgressive := []ProgressiveCount{
		{Rule: "minContentLength", Remaining: 70},
		{Rule: "status", Remaining: 50},
	}
	if len(summary.FilterBreakdown.ProgressiveCounts) != len(wantProgressive) {
		t.Fatalf("progressive counts = %+v", summary.FilterBreakdown.ProgressiveCounts)
	}
	for i, want := range wantProgressive {
		if summary.FilterBreakdown.ProgressiveCounts[i] != want {
			t.Errorf("progressive[%d] = %+v, want %+v", i, summary.FilterBreakdown.ProgressiveCounts[i], want)
		}
	}
}

func TestGetSummary_MinConversationLengthIsZeroDelta(t *testing.T) {
	records := []models.Record{rec(0, map[string]any{"content": "hello"})}
	summary := GetSummary(records, models.FilterConfig{MinConversationLength: 3})

	if got := summary.FilterBreakdown.ByRule["minConversationLength"]; got != 0 {
		t.Errorf("minConversationLength removed %d, want 0 (documented no-op)", got)
	}
	if summary.FilteredCount != 1 {
		t.Errorf("FilteredCount = %d", summary.FilteredCount)
	}
}

func TestGetSummary_Warnings(t *testing.T) {
	var records []models.Record
	for i := 0; i < 20; i++ {
		records = append(records, rec(i, map[string]any{"status": "closed"}))
	}

	t.Run("no records match", func(t *testing.T) {
		summary := GetSummary(records, models.FilterConfig{StatusInclude: []string{"open"}})
		if len(summary.Warnings) != 1 || summary.Warnings[0].Code != WarnNoRecordsMatch {
			t.Errorf("warnings = %+v", summary.Warnings)
		}
	})

	t.Run("high exclusion rate", func(t *testing.T) {
		withOne := append(records[:19:19], rec(19, map[string]any{"status": "open"}))
		summary := GetSummary(withOne, models.FilterConfig{StatusInclude: []string{"open"}})
		if len(summary.Warnings) != 1 || summary.Warnings[0].Code != WarnHighExclusionRate {
			t.Fatalf("warnings = %+v", summary.Warnings)
		}
		if summary.Warnings[0].Message != fmt.Sprintf("Filters exclude %d%% of records. Consider adjusting criteria.", 95) {
			t.Errorf("message = %q", summary.Warnings[0].Message)
		}
	})

	t.Run("no warnings under threshold", func(t *testing.T) {
		summary := GetSummary(records, models.FilterConfig{StatusInclude: []string{"closed"}})
		if len(summary.Warnings) != 0 {
			t.Errorf("warnings = %+v", summary.Warnings)
		}
	})
}
