package handler

import (
	"strings"
	"testing"

	"github.com/refinery-hq/refinery/pkg/apierr"
	"github.com/refinery-hq/refinery/pkg/models"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug     string
		wantCode apierr.Code
	}{
		{"valid-slug", ""},
		{"abc", ""},
		{"a1-b2-c3", ""},
		{"", apierr.CodeSlugRequired},
		{"ab", apierr.CodeSlugInvalid},
		{"-leading-hyphen", apierr.CodeSlugInvalid},
		{"trailing-hyphen-", apierr.CodeSlugInvalid},
		{"Has Spaces", apierr.CodeSlugInvalid},
		{"UPPERCASE", apierr.CodeSlugInvalid},
		{strings.Repeat("a", 64), apierr.CodeSlugInvalid},
	}
	for _, tt := range tests {
		err := validateSlug(tt.slug)
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("validateSlug(%q) = %v, want nil", tt.slug, err)
			}
			continue
		}
		if err == nil || err.Code() != tt.wantCode {
			t.Errorf("validateSlug(%q) code = %v, want %s", tt.slug, err, tt.wantCode)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := validateName("Support Tickets"); err != nil {
		t.Errorf("expected valid name, got %v", err)
	}
	if err := validateName(""); err == nil || err.Code() != apierr.CodeNameRequired {
		t.Errorf("expected name required, got %v", err)
	}
	if err := validateName(strings.Repeat("x", 256)); err == nil || err.Code() != apierr.CodeNameTooLong {
		t.Errorf("expected name too long, got %v", err)
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []models.OutputFormat{
		models.FormatConversationalJSONL,
		models.FormatQAPairsJSONL,
		models.FormatRawJSON,
	} {
		if err := validateOutputFormat(format); err != nil {
			t.Errorf("validateOutputFormat(%s) = %v, want nil", format, err)
		}
	}
	if err := validateOutputFormat("parquet"); err == nil || err.Code() != apierr.CodeUnsupportedFormat {
		t.Errorf("expected unsupported format, got %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	tests := []struct {
		name    string
		dr      *models.DateRange
		wantErr bool
	}{
		{"nil range", nil, false},
		{"ordered", &models.DateRange{Start: "2024-01-01", End: "2024-06-30"}, false},
		{"equal", &models.DateRange{Start: "2024-01-01", End: "2024-01-01"}, false},
		{"open start", &models.DateRange{End: "2024-06-30"}, false},
		{"open end", &models.DateRange{Start: "2024-01-01"}, false},
		{"inverted", &models.DateRange{Start: "2024-06-30", End: "2024-01-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDateRange(tt.dr)
			if tt.wantErr && (err == nil || err.Code() != apierr.CodeInvalidDateRange) {
				t.Errorf("expected invalid date range, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected nil, got %v", err)
			}
		})
	}
}
