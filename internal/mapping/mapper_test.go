package mapping

import (
	"reflect"
	"testing"

	"github.com/refinery-hq/refinery/pkg/models"
)

func TestApplyMappings_Basic(t *testing.T) {
	record := models.Record{RowIndex: 0, Data: map[string]any{"a": "x", "ignored": "y"}}
	entries := []models.MappingEntry{
		{SourceColumn: "a", TargetField: "b", Transformations: []models.Transformation{{Kind: models.TransformUppercase}}},
	}

	mapped := ApplyMappings(record, entries)
	if got := mapped["b"]; got != "X" {
		t.Errorf("mapped[b] = %v, want X", got)
	}
	if _, ok := mapped["ignored"]; ok {
		t.Error("unmapped column leaked into output")
	}
}

func TestApplyMappings_AlreadyUppercaseUnchanged(t *testing.T) {
	record := models.Record{Data: map[string]any{"a": "X"}}
	entries := []models.MappingEntry{
		{SourceColumn: "a", TargetField: "b", Transformations: []models.Transformation{{Kind: models.TransformUppercase}}},
	}
	if got := ApplyMappings(record, entries)["b"]; got != "X" {
		t.Errorf("mapped[b] = %v, want X", got)
	}
}

func TestApplyMappings_LastEntryWins(t *testing.T) {
	record := models.Record{Data: map[string]any{"a": "one", "c": "two"}}
	entries := []models.MappingEntry{
		{SourceColumn: "a", TargetField: "out"},
		{SourceColumn: "c", TargetField: "out"},
	}
	if got := ApplyMappings(record, entries)["out"]; got != "two" {
		t.Errorf("mapped[out] = %v, want two", got)
	}
}

func TestApplyMappings_AbsentColumnContributesNoKey(t *testing.T) {
	record := models.Record{Data: map[string]any{"a": "x"}}
	entries := []models.MappingEntry{
		{SourceColumn: "missing", TargetField: "b"},
	}
	mapped := ApplyMappings(record, entries)
	if _, ok := mapped["b"]; ok {
		t.Error("absent source column produced a key")
	}
}

func TestApplyTransformation(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		transform models.Transformation
		want      any
	}{
		{"lowercase", "HeLLo", models.Transformation{Kind: models.TransformLowercase}, "hello"},
		{"uppercase", "hello", models.Transformation{Kind: models.TransformUppercase}, "HELLO"},
		{"trim", "  padded  ", models.Transformation{Kind: models.TransformTrim}, "padded"},
		{"number stringified", float64(42), models.Transformation{Kind: models.TransformUppercase}, "42"},
		{"nil passthrough", nil, models.Transformation{Kind: models.TransformUppercase}, nil},
		{"date iso input", "2024-03-05", models.Transformation{Kind: models.TransformDateFormat}, "2024-03-05"},
		{"date with time", "2024-03-05T10:30:00Z", models.Transformation{Kind: models.TransformDateFormat}, "2024-03-05"},
		{"date slash format", "03/05/2024", models.Transformation{Kind: models.TransformDateFormat}, "2024-03-05"},
		{"date unparseable passthrough", "not a date", models.Transformation{Kind: models.TransformDateFormat}, "not a date"},
		{
			"value map hit",
			"o",
			models.Transformation{Kind: models.TransformValueMap, ValueMap: map[string]string{"o": "open"}},
			"open",
		},
		{
			"value map miss passthrough",
			"x",
			models.Transformation{Kind: models.TransformValueMap, ValueMap: map[string]string{"o": "open"}},
			"x",
		},
		{
			"value map numeric key",
			float64(1),
			models.Transformation{Kind: models.TransformValueMap, ValueMap: map[string]string{"1": "high"}},
			"high",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyTransformation(tt.value, tt.transform)
			if got != tt.want {
				t.Errorf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestApplyTransformation_PipelineOrder(t *testing.T) {
	record := models.Record{Data: map[string]any{"a": "  Open  "}}
	entries := []models.MappingEntry{
		{
			SourceColumn: "a",
			TargetField:  "status",
			Transformations: []models.Transformation{
				{Kind: models.TransformTrim},
				{Kind: models.TransformLowercase},
				{Kind: models.TransformValueMap, ValueMap: map[string]string{"open": "OPEN_TICKET"}},
			},
		},
	}
	if got := ApplyMappings(record, entries)["status"]; got != "OPEN_TICKET" {
		t.Errorf("piped value = %v", got)
	}
}

func TestPreview_Limit(t *testing.T) {
	records := []models.Record{
		{RowIndex: 0, Data: map[string]any{"a": "1"}},
		{RowIndex: 1, Data: map[string]any{"a": "2"}},
		{RowIndex: 2, Data: map[string]any{"a": "3"}},
	}
	entries := []models.MappingEntry{{SourceColumn: "a", TargetField: "b"}}

	rows := Preview(records, entries, 2)
	if len(rows) != 2 {
		t.Fatalf("preview rows = %d, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0].Mapped, map[string]any{"b": "1"}) {
		t.Errorf("rows[0].Mapped = %v", rows[0].Mapped)
	}
}

func TestSuggest(t *testing.T) {
	suggestions := Suggest([]string{"ticket_id", "created_at", "body", "nothing_relevant"})

	byTarget := map[string]Suggestion{}
	for _, s := range suggestions {
		byTarget[s.TargetField] = s
	}

	if s, ok := byTarget["conversation_id"]; !ok || s.SourceColumn != "ticket_id" {
		t.Errorf("conversation_id suggestion = %+v", s)
	}
	if s, ok := byTarget["timestamp"]; !ok || s.SourceColumn != "created_at" {
		t.Errorf("timestamp suggestion = %+v", s)
	}
	if s, ok := byTarget["content"]; !ok || s.SourceColumn != "body" {
		t.Errorf("content suggestion = %+v", s)
	}

	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Confidence > suggestions[i-1].Confidence {
			t.Errorf("suggestions not sorted by confidence: %+v", suggestions)
		}
	}
}

func TestSuggest_OneSuggestionPerTargetField(t *testing.T) {
	suggestions := Suggest([]string{"body", "message_text"})

	count := 0
	for _, s := range suggestions {
		if s.TargetField == "content" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("content suggested %d times, want 1", count)
	}
}
