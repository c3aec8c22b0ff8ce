package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ParseCSV reads a headered CSV. Header cells are trimmed, blank lines are
// skipped, and short rows carry only the columns they have values for.
func ParseCSV(content []byte) (*ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parsing error: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	columns := make([]string, len(records[0]))
	for i, header := range records[0] {
		columns[i] = strings.TrimSpace(header)
	}

	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(map[string]any, len(columns))
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			row[columns[i]] = value
		}
		rows = append(rows, row)
	}

	return &ParseResult{Columns: columns, Rows: rows, RowCount: len(rows)}, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
