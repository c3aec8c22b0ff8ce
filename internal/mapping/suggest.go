package mapping

import (
	"regexp"
	"sort"
	"strings"

	"github.com/refinery-hq/refinery/pkg/models"
)

// Suggestion proposes mapping a source column to a target field, with a
// confidence score for ranking in the UI.
type Suggestion struct {
	SourceColumn string  `json:"source_column"`
	TargetField  string  `json:"target_field"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

type suggestionPattern struct {
	patterns    []*regexp.Regexp
	targetField string
	reason      string
}

var suggestionPatterns = []suggestionPattern{
	{
		patterns:    compileAll(`(?i)ticket[_-]?id`, `(?i)conversation[_-]?id`, `(?i)thread[_-]?id`, `(?i)^id$`),
		targetField: "conversation_id",
		reason:      "Column name contains ID-like pattern",
	},
	{
		patterns:    compileAll(`(?i)timestamp`, `(?i)created[_-]?at`, `(?i)date[_-]?time`, `(?i)^date$`),
		targetField: "timestamp",
		reason:      "Column name suggests date/time",
	},
	{
		patterns:    compileAll(`(?i)^role$`, `(?i)sender[_-]?type`, `(?i)author[_-]?type`, `(?i)user[_-]?type`),
		targetField: "role",
		reason:      "Column name suggests user role",
	},
	{
		patterns:    compileAll(`(?i)body`, `(?i)content`, `(?i)message`, `(?i)text`, `(?i)description`),
		targetField: "content",
		reason:      "Column name suggests message content",
	},
	{
		patterns:    compileAll(`(?i)subject`, `(?i)title`, `(?i)summary`),
		targetField: "subject",
		reason:      "Column name suggests subject/title",
	},
	{
		patterns:    compileAll(`(?i)^status$`, `(?i)ticket[_-]?status`, `(?i)state`),
		targetField: "status",
		reason:      "Column name suggests status",
	},
	{
		patterns:    compileAll(`(?i)category`, `(?i)type`, `(?i)tag`, `(?i)classification`),
		targetField: "category",
		reason:      "Column name suggests category",
	},
	{
		patterns:    compileAll(`(?i)customer[_-]?email`, `(?i)user[_-]?email`, `(?i)email`),
		targetField: "customer_email",
		reason:      "Column name contains email",
	},
	{
		patterns:    compileAll(`(?i)agent[_-]?name`, `(?i)assignee`, `(?i)handler`),
		targetField: "agent_name",
		reason:      "Column name suggests agent",
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

var separators = strings.NewReplacer("_", "", "-", "")

// Suggest proposes target-field mappings for the given source columns,
// ranked by confidence. Anchored pattern hits score higher than substring
// hits; an exact normalized name match scores highest. At most one
// suggestion per target field is emitted.
func Suggest(columns []string) []Suggestion {
	var suggestions []Suggestion
	hasTarget := func(field string) bool {
		for _, s := range suggestions {
			if s.TargetField == field {
				return true
			}
		}
		return false
	}

	for _, column := range columns {
		for _, sp := range suggestionPatterns {
			for _, pattern := range sp.patterns {
				if !pattern.MatchString(column) {
					continue
				}
				if !hasTarget(sp.targetField) {
					confidence := 0.85
					if strings.Contains(pattern.String(), "^") {
						confidence = 0.95
					}
					suggestions = append(suggestions, Suggestion{
						SourceColumn: column,
						TargetField:  sp.targetField,
						Confidence:   confidence,
						Reason:       sp.reason,
					})
				}
				break
			}
		}

		normalized := separators.Replace(strings.ToLower(column))
		for _, target := range models.StandardTargetFields {
			if normalized == separators.Replace(strings.ToLower(target)) && !hasTarget(target) {
				suggestions = append(suggestions, Suggestion{
					SourceColumn: column,
					TargetField:  target,
					Confidence:   0.98,
					Reason:       "Exact match",
				})
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	return suggestions
}
