package models

// TransformKind identifies a column-level transformation applied during
// field mapping. Closed set: adding a kind requires updating the mapper.
type TransformKind string

const (
	TransformLowercase  TransformKind = "lowercase"
	TransformUppercase  TransformKind = "uppercase"
	TransformTrim       TransformKind = "trim"
	TransformDateFormat TransformKind = "date_format"
	TransformValueMap   TransformKind = "value_map"
)

// Transformation is one step in a mapping entry's transformation list.
// Format is only meaningful for date_format; ValueMap only for value_map.
type Transformation struct {
	Kind     TransformKind     `json:"type"`
	Format   string            `json:"format,omitempty"`
	ValueMap map[string]string `json:"value_map,omitempty"`
}

// MappingEntry projects one source column onto a target field, piping the
// value through Transformations in list order. Multiple entries may target
// the same field; the last one applied wins.
type MappingEntry struct {
	SourceColumn    string           `json:"source_column"`
	TargetField     string           `json:"target_field"`
	Transformations []Transformation `json:"transformations,omitempty"`
	Suggested       bool             `json:"suggested,omitempty"`
	Confirmed       bool             `json:"confirmed,omitempty"`
}

// RuleType classifies a de-identification rule. Built-in types use the
// entity detector; custom rules carry their own regex pattern.
type RuleType string

const (
	RuleName    RuleType = "name"
	RuleEmail   RuleType = "email"
	RulePhone   RuleType = "phone"
	RuleAddress RuleType = "address"
	RuleCompany RuleType = "company"
	RuleCustom  RuleType = "custom"
)

// Rule is a single de-identification directive. Pattern is required iff
// Type is RuleCustom. Replacement may contain the "_N" placeholder, which
// the engine substitutes with a per-distinct-value counter.
type Rule struct {
	ID          string   `json:"id"`
	Type        RuleType `json:"type"`
	Pattern     string   `json:"pattern,omitempty"`
	Replacement string   `json:"replacement"`
	Enabled     bool     `json:"enabled"`
	IsDefault   bool     `json:"is_default,omitempty"`
}

// DateRange bounds a filter on record dates. Either side may be empty for
// an open-ended bound. Values are parsed with the same date formats the
// quality filter accepts for record fields.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// FilterConfig holds the quality-filter predicates. Every field is
// optional; a zero value means "no constraint from this rule".
type FilterConfig struct {
	MinConversationLength int        `json:"min_conversation_length,omitempty"`
	MinContentLength      int        `json:"min_content_length,omitempty"`
	StatusInclude         []string   `json:"status_include,omitempty"`
	StatusExclude         []string   `json:"status_exclude,omitempty"`
	CategoryInclude       []string   `json:"category_include,omitempty"`
	DateRange             *DateRange `json:"date_range,omitempty"`
}

// ConfigSnapshot is the frozen configuration a processing run executes
// against, captured at start time so live edits cannot affect the run.
type ConfigSnapshot struct {
	Mappings      []MappingEntry `json:"mappings"`
	Rules         []Rule         `json:"rules"`
	ColumnsToScan []string       `json:"columns_to_scan"`
	Filters       FilterConfig   `json:"filters"`
}

// StandardTargetFields are the canonical training-data fields offered in
// the mapping UI, in display order.
var StandardTargetFields = []string{
	"conversation_id",
	"timestamp",
	"role",
	"content",
	"subject",
	"status",
	"category",
	"customer_email",
	"agent_name",
}
