package pii

import (
	"strings"
	"testing"

	"github.com/refinery-hq/refinery/pkg/models"
)

func emailRule() models.Rule {
	return models.Rule{ID: "r-email", Type: models.RuleEmail, Replacement: "[EMAIL]", Enabled: true}
}

func nameRule(template string) models.Rule {
	return models.Rule{ID: "r-name", Type: models.RuleName, Replacement: template, Enabled: true}
}

func TestApply_NoMatchesLeavesTextUntouched(t *testing.T) {
	text := "nothing sensitive here"
	result := Apply(text, []models.Rule{emailRule()})

	if result.Replaced != text {
		t.Errorf("replaced = %q, want original", result.Replaced)
	}
	if len(result.Replacements) != 0 {
		t.Errorf("expected no replacements, got %d", len(result.Replacements))
	}
}

func TestApply_DisabledRulesIgnored(t *testing.T) {
	rule := emailRule()
	rule.Enabled = false
	text := "mail me at a@b.co"
	result := Apply(text, []models.Rule{rule})

	if result.Replaced != text {
		t.Errorf("disabled rule changed text: %q", result.Replaced)
	}
}

func TestApply_ReplacesEmail(t *testing.T) {
	result := Apply("write to jane@example.com today", []models.Rule{emailRule()})

	if result.Replaced != "write to [EMAIL] today" {
		t.Errorf("replaced = %q", result.Replaced)
	}
	if len(result.Replacements) != 1 {
		t.Fatalf("replacements = %d, want 1", len(result.Replacements))
	}
	r := result.Replacements[0]
	if r.Original != "jane@example.com" || r.Replacement != "[EMAIL]" {
		t.Errorf("replacement = %+v", r)
	}
	if result.Original[r.Start:r.End] != r.Original {
		t.Errorf("span [%d:%d] does not slice back to %q", r.Start, r.End, r.Original)
	}
}

func TestApply_MultipleReplacementsReportedInTextOrder(t *testing.T) {
	result := Apply("a@b.co then c@d.org", []models.Rule{emailRule()})

	if result.Replaced != "[EMAIL] then [EMAIL]" {
		t.Errorf("replaced = %q", result.Replaced)
	}
	if len(result.Replacements) != 2 {
		t.Fatalf("replacements = %d, want 2", len(result.Replacements))
	}
	if result.Replacements[0].Start > result.Replacements[1].Start {
		t.Errorf("replacements not in ascending order: %+v", result.Replacements)
	}
}

func TestApply_NamePseudonymStableWithinCall(t *testing.T) {
	text := "my name is John Smith. To repeat, my name is John Smith."
	result := Apply(text, []models.Rule{nameRule("[PERSON_N]")})

	if len(result.Replacements) < 2 {
		t.Fatalf("expected two name replacements, got %+v", result.Replacements)
	}
	first := result.Replacements[0].Replacement
	second := result.Replacements[1].Replacement
	if first != second {
		t.Errorf("same name got different pseudonyms: %q vs %q", first, second)
	}
	if !strings.Contains(first, "_1") {
		t.Errorf("expected counter suffix in %q", first)
	}
}

func TestApply_DistinctNamesGetDistinctCounters(t *testing.T) {
	text := "my name is John Smith and this is Mary Jones"
	result := Apply(text, []models.Rule{nameRule("[PERSON_N]")})

	seen := map[string]bool{}
	for _, r := range result.Replacements {
		seen[r.Replacement] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 distinct pseudonyms, got %v", seen)
	}
}

func TestApply_CustomRule(t *testing.T) {
	rule := models.Rule{
		ID:          "r-order",
		Type:        models.RuleCustom,
		Pattern:     `ORD-\d+`,
		Replacement: "[ORDER]",
		Enabled:     true,
	}
	result := Apply("ticket for ORD-442", []models.Rule{rule})

	if result.Replaced != "ticket for [ORDER]" {
		t.Errorf("replaced = %q", result.Replaced)
	}
}

func TestApply_InvalidCustomPatternSkipped(t *testing.T) {
	bad := models.Rule{ID: "r-bad", Type: models.RuleCustom, Pattern: `[`, Replacement: "[X]", Enabled: true}
	text := "mail a@b.co"
	result := Apply(text, []models.Rule{bad, emailRule()})

	// The broken rule is skipped; the valid rule still applies.
	if result.Replaced != "mail [EMAIL]" {
		t.Errorf("replaced = %q", result.Replaced)
	}
}

func TestDeidentifyRecord_OnlyScannedStringColumns(t *testing.T) {
	record := map[string]any{
		"content": "reach me at a@b.co",
		"email":   "keep@untouched.com",
		"count":   float64(7),
	}
	result := DeidentifyRecord(record, []string{"content", "count", "missing"}, []models.Rule{emailRule()})

	if got := result.Deidentified["content"]; got != "reach me at [EMAIL]" {
		t.Errorf("content = %q", got)
	}
	if got := result.Deidentified["email"]; got != "keep@untouched.com" {
		t.Errorf("unscanned column changed: %q", got)
	}
	if got := result.Deidentified["count"]; got != float64(7) {
		t.Errorf("non-string column changed: %v", got)
	}
	if len(result.PiiHighlights) != 1 {
		t.Fatalf("highlights = %d, want 1", len(result.PiiHighlights))
	}
	if result.PiiHighlights[0].Column != "content" {
		t.Errorf("highlight column = %q", result.PiiHighlights[0].Column)
	}
	// Source record untouched.
	if record["content"] != "reach me at a@b.co" {
		t.Errorf("original record mutated: %q", record["content"])
	}
}
