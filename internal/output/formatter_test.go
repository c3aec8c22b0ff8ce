package output

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

func TestFormat_RawJSONRoundTrip(t *testing.T) {
	records := []map[string]any{
		{"content": "hello", "role": "user"},
		{"content": "hi there", "role": "agent", "score": float64(3)},
	}

	content, count, err := Format(records, models.FormatRawJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var parsed []map[string]any
	if err := json.Unmarshal(content, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(parsed, records) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, records)
	}
}

func TestFormat_ConversationalGrouping(t *testing.T) {
	records := []map[string]any{
		{"conversation_id": "7", "role": "customer", "content": "my printer is on fire"},
		{"conversation_id": "7", "role": "agent", "content": "please unplug it"},
		{"conversation_id": "9", "role": "customer", "content": "separate issue"},
	}

	content, count, err := Format(records, models.FormatConversationalJSONL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 conversations", count)
	}

	lines := strings.Split(string(content), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	var first Conversation
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if first.ConversationID != "7" {
		t.Errorf("conversation_id = %q, want 7", first.ConversationID)
	}
	if len(first.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(first.Messages))
	}
	if first.Messages[0].Role != "customer" || first.Messages[1].Role != "agent" {
		t.Errorf("messages = %+v", first.Messages)
	}
}

func TestGroupConversations_NumericIDAndFallbacks(t *testing.T) {
	records := []map[string]any{
		{"conversation_id": float64(7), "content": "a"},
		{"id": "row-1", "content": "b"},
		{"content": "no id at all"},
		{"content": "also no id"},
	}
	conversations := GroupConversations(records)

	if len(conversations) != 4 {
		t.Fatalf("groups = %d, want 4", len(conversations))
	}
	if conversations[0].ConversationID != "7" {
		t.Errorf("numeric id stringified to %q, want 7", conversations[0].ConversationID)
	}
	if conversations[1].ConversationID != "row-1" {
		t.Errorf("id fallback = %q", conversations[1].ConversationID)
	}
	// Records without any id each get their own random conversation.
	if conversations[2].ConversationID == conversations[3].ConversationID {
		t.Error("ungrouped records shared a random conversation id")
	}
}

func TestGroupConversations_Defaults(t *testing.T) {
	records := []map[string]any{{"conversation_id": "c"}}
	conversations := GroupConversations(records)

	msg := conversations[0].Messages[0]
	if msg.Role != "user" {
		t.Errorf("default role = %q, want user", msg.Role)
	}
	if msg.Content != "" {
		t.Errorf("default content = %q, want empty", msg.Content)
	}
	if msg.Timestamp != nil {
		t.Errorf("timestamp = %v, want omitted", msg.Timestamp)
	}
}

func TestGroupConversations_TimestampCarried(t *testing.T) {
	records := []map[string]any{
		{"conversation_id": "c", "content": "x", "timestamp": "2024-01-01T00:00:00Z"},
	}
	line, _ := json.Marshal(GroupConversations(records)[0])
	if !strings.Contains(string(line), "timestamp") {
		t.Errorf("timestamp missing from %s", line)
	}
}

func TestExtractQAPairs(t *testing.T) {
	records := []map[string]any{
		{"role": "customer", "content": "q1"},
		{"role": "agent", "content": "a1"},
		{"role": "customer", "content": "unanswered"},
		{"role": "customer", "content": "q2"},
		{"role": "assistant", "content": "a2"},
		{"role": "agent", "content": "followup with no question"},
	}
	pairs := ExtractQAPairs(records)

	want := []QAPair{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("pairs = %+v, want %+v", pairs, want)
	}
}

func TestExtractQAPairs_RoleCaseInsensitive(t *testing.T) {
	records := []map[string]any{
		{"role": "Customer", "content": "q"},
		{"role": "AGENT", "content": "a"},
	}
	if pairs := ExtractQAPairs(records); len(pairs) != 1 {
		t.Errorf("pairs = %+v, want 1 pair", pairs)
	}
}

func TestFormat_QAPairsCountReflectsEmittedUnits(t *testing.T) {
	records := []map[string]any{
		{"role": "customer", "content": "q"},
		{"role": "agent", "content": "a"},
		{"role": "agent", "content": "extra"},
	}
	_, count, err := Format(records, models.FormatQAPairsJSONL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 emitted pair from 3 input records", count)
	}
}

func TestFormat_UnsupportedFormat(t *testing.T) {
	_, _, err := Format(nil, models.OutputFormat("parquet"))
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code() != apierr.CodeUnsupportedFormat {
		t.Errorf("err = %v, want UNSUPPORTED_OUTPUT_FORMAT", err)
	}
}
