// Package output serializes mapped, de-identified records into the target
// training-data encodings.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

// Message is one turn inside a conversational JSONL line.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp any    `json:"timestamp,omitempty"`
}

// Conversation is one line of conversational JSONL output.
type Conversation struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

// QAPair is one line of Q&A JSONL output.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Format serializes records into the requested encoding and returns the
// content plus the emitted record count. For the JSONL encodings the count
// is the number of emitted units (conversations or pairs), not the input
// record count.
func Format(records []map[string]any, format models.OutputFormat) ([]byte, int, error) {
	switch format {
	case models.FormatConversationalJSONL:
		return formatConversational(records)
	case models.FormatQAPairsJSONL:
		return formatQAPairs(records)
	case models.FormatRawJSON:
		content, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, 0, fmt.Errorf("marshal raw json: %w", err)
		}
		return content, len(records), nil
	}
	return nil, 0, apierr.UnsupportedOutputFormat(string(format))
}

// GroupConversations buckets records by conversation_id, falling back to
// id, falling back to a random per-record id so ungrouped records each
// become their own single-message conversation. Group order follows first
// appearance in the input.
func GroupConversations(records []map[string]any) []Conversation {
	index := map[string]int{}
	var conversations []Conversation

	for _, record := range records {
		convID := conversationID(record)
		i, ok := index[convID]
		if !ok {
			i = len(conversations)
			index[convID] = i
			conversations = append(conversations, Conversation{ConversationID: convID})
		}

		msg := Message{Role: "user"}
		if role, ok := record["role"].(string); ok && role != "" {
			msg.Role = role
		}
		if content, ok := record["content"].(string); ok {
			msg.Content = content
		}
		if ts, ok := record["timestamp"]; ok && ts != nil {
			msg.Timestamp = ts
		}
		conversations[i].Messages = append(conversations[i].Messages, msg)
	}

	return conversations
}

func conversationID(record map[string]any) string {
	if v, ok := record["conversation_id"]; ok && v != nil && fmt.Sprintf("%v", v) != "" {
		return stringifyID(v)
	}
	if v, ok := record["id"]; ok && v != nil && fmt.Sprintf("%v", v) != "" {
		return stringifyID(v)
	}
	return uuid.New().String()
}

func stringifyID(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

func formatConversational(records []map[string]any) ([]byte, int, error) {
	conversations := GroupConversations(records)

	var buf bytes.Buffer
	for i, conv := range conversations {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line, err := json.Marshal(conv)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal conversation %s: %w", conv.ConversationID, err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), len(conversations), nil
}

// ExtractQAPairs pairs each customer/user record with the agent/assistant
// record immediately following it. This is an adjacency heuristic, not
// conversation threading: non-adjacent or repeated-role sequences yield no
// pair at that position.
func ExtractQAPairs(records []map[string]any) []QAPair {
	var pairs []QAPair
	for i := 0; i+1 < len(records); i++ {
		currentRole := strings.ToLower(roleOf(records[i]))
		nextRole := strings.ToLower(roleOf(records[i+1]))

		if (currentRole == "customer" || currentRole == "user") &&
			(nextRole == "agent" || nextRole == "assistant") {
			pairs = append(pairs, QAPair{
				Question: contentOf(records[i]),
				Answer:   contentOf(records[i+1]),
			})
		}
	}
	return pairs
}

func roleOf(record map[string]any) string {
	if role, ok := record["role"].(string); ok {
		return role
	}
	return ""
}

func contentOf(record map[string]any) string {
	if content, ok := record["content"].(string); ok {
		return content
	}
	return ""
}

func formatQAPairs(records []map[string]any) ([]byte, int, error) {
	pairs := ExtractQAPairs(records)

	var buf bytes.Buffer
	for i, pair := range pairs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		line, err := json.Marshal(pair)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal qa pair: %w", err)
		}
		buf.Write(line)
	}
	return buf.Bytes(), len(pairs), nil
}
