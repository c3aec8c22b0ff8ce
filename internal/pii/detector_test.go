package pii

import (
	"errors"
	"testing"

	"github.com/refinery-hq/refinery/pkg/models"
)

func TestDetect_Email(t *testing.T) {
	text := "Contact me at jane.doe@example.com or sales@acme.io for details."
	result := Detect(text)

	var emails []Match
	for _, m := range result.Matches {
		if m.Type == models.RuleEmail {
			emails = append(emails, m)
		}
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 email matches, got %d", len(emails))
	}
	if emails[0].Value != "jane.doe@example.com" {
		t.Errorf("first email = %q", emails[0].Value)
	}
	if result.Counts["emails"] != 2 {
		t.Errorf("emails count = %d, want 2", result.Counts["emails"])
	}
}

func TestDetect_SpansSliceBackToValue(t *testing.T) {
	text := "Email bob@corp.com, phone 555-123-4567, or visit 42 Main Street today."
	result := Detect(text)

	if len(result.Matches) == 0 {
		t.Fatal("expected matches")
	}
	for _, m := range result.Matches {
		if got := text[m.Start:m.End]; got != m.Value {
			t.Errorf("text[%d:%d] = %q, want %q", m.Start, m.End, got, m.Value)
		}
	}
}

func TestDetect_PhoneRequiresTenDigits(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"full us number", "call 555-123-4567 now", 1},
		{"with country code", "call +1 (555) 123-4567", 1},
		{"date-like short run", "on 12-03-2024 we met", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text).Counts["phones"]
			if got != tt.want {
				t.Errorf("phones count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetect_NameAfterIndicator(t *testing.T) {
	result := Detect("Hello, my name is John Smith and I need help.")

	var name *Match
	for i, m := range result.Matches {
		if m.Type == models.RuleName {
			name = &result.Matches[i]
			break
		}
	}
	if name == nil {
		t.Fatal("expected a name match")
	}
	if name.Value != "my name is John Smith" {
		t.Errorf("name value = %q", name.Value)
	}
	if result.Counts["names"] != 1 {
		t.Errorf("names count = %d, want 1", result.Counts["names"])
	}
}

func TestDetect_NameIndicatorWithoutCapitalizedWord(t *testing.T) {
	result := Detect("my name is lowercase person")
	if result.Counts["names"] != 0 {
		t.Errorf("names count = %d, want 0", result.Counts["names"])
	}
}

func TestDetect_Address(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"street suffix", "Ship to 123 Elm Street please"},
		{"city state zip", "Located in Portland, OR 97201 since 2019"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Detect(tt.text)
			if result.Counts["addresses"] == 0 {
				t.Errorf("expected an address match in %q", tt.text)
			}
		})
	}
}

func TestDetect_Company(t *testing.T) {
	result := Detect("I work at Globex Corp and love it.")

	var company *Match
	for i, m := range result.Matches {
		if m.Type == models.RuleCompany {
			company = &result.Matches[i]
			break
		}
	}
	if company == nil {
		t.Fatal("expected a company match")
	}
	if company.Value != "Globex Corp" {
		t.Errorf("company value = %q", company.Value)
	}
}

func TestDetect_OverlapKeepsEarliestMatch(t *testing.T) {
	// The email-like substring begins inside the phone-like span.
	// First-match-wins must keep the earlier-starting phone match and drop
	// the intersecting email.
	text := "call 555 123 4567a@b.co now"
	result := Detect(text)

	for i, m := range result.Matches {
		for _, k := range result.Matches[:i] {
			if m.Start < k.End && m.End > k.Start {
				t.Fatalf("overlapping matches survived: %+v and %+v", k, m)
			}
		}
	}

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 surviving match, got %d: %+v", len(result.Matches), result.Matches)
	}
	if result.Matches[0].Type != models.RulePhone {
		t.Errorf("survivor = %+v, want the earlier-starting phone match", result.Matches[0])
	}
}

func TestDetect_SortedByStart(t *testing.T) {
	text := "Acme Inc wrote to jane@example.com from 10 Oak Avenue."
	result := Detect(text)
	for i := 1; i < len(result.Matches); i++ {
		if result.Matches[i].Start < result.Matches[i-1].Start {
			t.Fatalf("matches out of order at %d: %+v", i, result.Matches)
		}
	}
}

func TestDetectCustom(t *testing.T) {
	matches, err := DetectCustom("order ORD-1234 and ORD-9876", `ORD-\d{4}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Value != "ORD-1234" || matches[0].Start != 6 {
		t.Errorf("first match = %+v", matches[0])
	}
}

func TestDetectCustom_InvalidPattern(t *testing.T) {
	_, err := DetectCustom("text", `[unclosed`)
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	var perr *PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PatternError, got %T", err)
	}
	if perr.Pattern != `[unclosed` {
		t.Errorf("PatternError.Pattern = %q", perr.Pattern)
	}
}
