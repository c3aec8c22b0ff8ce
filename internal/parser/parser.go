// Package parser turns uploaded source files into columns and rows.
package parser

import (
	"fmt"
	"strings"
)

// ParseResult is the normalized form of a parsed source file.
type ParseResult struct {
	Columns  []string
	Rows     []map[string]any
	RowCount int
}

// Parse dispatches on content type and filename extension. CSV, JSON and
// JSONL are supported.
func Parse(content []byte, filename, contentType string) (*ParseResult, error) {
	switch {
	case contentType == "text/csv" || strings.HasSuffix(filename, ".csv"):
		return ParseCSV(content)
	case contentType == "application/json" || strings.HasSuffix(filename, ".json"):
		return ParseJSON(content)
	case strings.HasSuffix(filename, ".jsonl"):
		return ParseJSONL(content)
	}
	return nil, fmt.Errorf("unsupported file type %q; supported: CSV, JSON, JSONL", filename)
}

// columnSet accumulates column names in first-appearance order.
type columnSet struct {
	seen  map[string]bool
	names []string
}

func newColumnSet() *columnSet {
	return &columnSet{seen: map[string]bool{}}
}

func (c *columnSet) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
}
