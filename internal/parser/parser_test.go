package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	content := []byte(" id , subject ,body\n1,Printer,It is on fire\n\n2,Login,Cannot sign in\n")
	result, err := ParseCSV(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(result.Columns, []string{"id", "subject", "body"}) {
		t.Errorf("columns = %v", result.Columns)
	}
	if result.RowCount != 2 {
		t.Fatalf("row count = %d, want 2 (blank line skipped)", result.RowCount)
	}
	if result.Rows[0]["subject"] != "Printer" {
		t.Errorf("rows[0] = %v", result.Rows[0])
	}
}

func TestParseCSV_ShortRow(t *testing.T) {
	result, err := ParseCSV([]byte("a,b,c\n1,2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.Rows[0]["c"]; ok {
		t.Errorf("short row should not carry column c: %v", result.Rows[0])
	}
}

func TestParseCSV_Empty(t *testing.T) {
	if _, err := ParseCSV(nil); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParseJSON_ArrayOfObjects(t *testing.T) {
	content := []byte(`[{"id": 1, "subject": "a"}, {"id": 2, "body": "b"}]`)
	result, err := ParseJSON(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(result.Columns, []string{"id", "subject", "body"}) {
		t.Errorf("columns = %v, want union in first-appearance order", result.Columns)
	}
	if result.RowCount != 2 {
		t.Errorf("row count = %d", result.RowCount)
	}
	if result.Rows[0]["id"] != float64(1) {
		t.Errorf("rows[0][id] = %v (%T)", result.Rows[0]["id"], result.Rows[0]["id"])
	}
}

func TestParseJSON_ObjectWrappingArray(t *testing.T) {
	content := []byte(`{"meta": "x", "tickets": [{"id": 1}, {"id": 2}], "other": [1, 2]}`)
	result, err := ParseJSON(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowCount != 2 || result.Rows[1]["id"] != float64(2) {
		t.Errorf("result = %+v", result)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"not json", "nope", "JSON must be an array"},
		{"empty array", "[]", "array is empty"},
		{"array of scalars", "[1, 2]", "must contain objects"},
		{"object without array", `{"a": "b"}`, "must contain an array of objects"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseJSONL(t *testing.T) {
	content := []byte("{\"id\": 1}\n\n{\"id\": 2, \"extra\": true}\n")
	result, err := ParseJSONL(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RowCount != 2 {
		t.Errorf("row count = %d", result.RowCount)
	}
	if !reflect.DeepEqual(result.Columns, []string{"id", "extra"}) {
		t.Errorf("columns = %v", result.Columns)
	}
}

func TestParseJSONL_BadLineReportsLineNumber(t *testing.T) {
	_, err := ParseJSONL([]byte("{\"ok\": true}\n[1, 2]\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 in message", err)
	}
}

func TestParseJSONL_Empty(t *testing.T) {
	if _, err := ParseJSONL([]byte("\n\n")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestParse_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     string
		wantErr     bool
	}{
		{"csv by extension", "export.csv", "application/octet-stream", "a\n1\n", false},
		{"csv by content type", "export", "text/csv", "a\n1\n", false},
		{"json by extension", "export.json", "", `[{"a": 1}]`, false},
		{"jsonl by extension", "export.jsonl", "", `{"a": 1}`, false},
		{"unsupported", "export.xml", "text/xml", "<a/>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), tt.filename, tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
