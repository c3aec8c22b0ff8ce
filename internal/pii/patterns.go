package pii

import "regexp"

// Structured patterns with a deterministic shape: email, phone.
// Phone matches are post-filtered to ≥10 digits to drop date-like noise.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// Name detection is indicator-driven: a trigger phrase followed by a
// capitalized word sequence. Real NER is out of scope for this detector.
var nameIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bMr\.?\s`),
	regexp.MustCompile(`(?i)\bMrs\.?\s`),
	regexp.MustCompile(`(?i)\bMs\.?\s`),
	regexp.MustCompile(`(?i)\bDr\.?\s`),
	regexp.MustCompile(`(?i)\bmy name is\s`),
	regexp.MustCompile(`(?i)\bI am\s`),
	regexp.MustCompile(`(?i)\bthis is\s`),
	regexp.MustCompile(`(?i)\bsigned,?\s`),
	regexp.MustCompile(`(?i)\bregards,?\s`),
	regexp.MustCompile(`(?i)\bthanks,?\s`),
	regexp.MustCompile(`(?i)\bsincerely,?\s`),
}

// capitalizedName matches up to two capitalized words at the start of the
// text following a name indicator.
var capitalizedName = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)

var addressIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s+[A-Za-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Place|Pl)`),
	// City, ST ZIP
	regexp.MustCompile(`\b[A-Z][a-z]+,?\s+[A-Z]{2}\s+\d{5}(-\d{4})?\b`),
}

// companySuffix matches legal-entity suffixes; the detector stitches the
// preceding capitalized phrase onto the match.
var companySuffix = regexp.MustCompile(`(?i)\b(Inc|Corp|LLC|Ltd|Co|Company|Corporation|Incorporated|Limited)\b\.?`)

// companyPrefix matches a trailing capitalized phrase immediately before a
// legal suffix.
var companyPrefix = regexp.MustCompile(`([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)\s*$`)
