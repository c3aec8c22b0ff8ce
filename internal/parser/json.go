package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON accepts either an array of objects or an object whose first
// array-of-objects property holds the rows. Columns are the union of keys
// across rows, in first-appearance order.
func ParseJSON(content []byte) (*ParseResult, error) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("invalid JSON format")
	}

	if trimmed[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(content, &elements); err != nil {
			return nil, fmt.Errorf("invalid JSON format")
		}
		if len(elements) == 0 {
			return nil, fmt.Errorf("JSON array is empty")
		}
		return rowsFromRaw(elements, "JSON array must contain objects")
	}

	if trimmed[0] == '{' {
		// Scan top-level properties in document order and take the first
		// array-of-objects among them.
		dec := json.NewDecoder(bytes.NewReader(content))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid JSON format")
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("invalid JSON format")
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("invalid JSON format")
			}
			var elements []json.RawMessage
			if json.Unmarshal(value, &elements) != nil || len(elements) == 0 {
				continue
			}
			if result, err := rowsFromRaw(elements, ""); err == nil {
				return result, nil
			}
		}
		return nil, fmt.Errorf("JSON object must contain an array of objects")
	}

	return nil, fmt.Errorf("JSON must be an array of objects or an object containing an array")
}

// ParseJSONL reads one JSON object per line, skipping blank lines.
func ParseJSONL(content []byte) (*ParseResult, error) {
	var rows []map[string]any
	cols := newColumnSet()

	lineNo := 0
	for _, line := range strings.Split(string(content), "\n") {
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, keys, err := decodeObject([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineNo, err)
		}
		for _, k := range keys {
			cols.add(k)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("JSONL file is empty")
	}
	return &ParseResult{Columns: cols.names, Rows: rows, RowCount: len(rows)}, nil
}

func rowsFromRaw(elements []json.RawMessage, notObjectsMsg string) (*ParseResult, error) {
	if notObjectsMsg == "" {
		notObjectsMsg = "array must contain objects"
	}
	rows := make([]map[string]any, 0, len(elements))
	cols := newColumnSet()

	for _, raw := range elements {
		row, keys, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("%s", notObjectsMsg)
		}
		for _, k := range keys {
			cols.add(k)
		}
		rows = append(rows, row)
	}

	return &ParseResult{Columns: cols.names, Rows: rows, RowCount: len(rows)}, nil
}

// decodeObject unmarshals one JSON object and also reports its keys in
// document order, which plain map decoding loses.
func decodeObject(raw []byte) (map[string]any, []string, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, fmt.Errorf("each entry must be a JSON object")
	}

	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, nil, err
	}

	var keys []string
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, nil, err
		}
	}

	return row, keys, nil
}
