package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/refinery-hq/refinery/pkg/apierr"
)

// Without MinIO the API runs in degraded mode; artifact reads must refuse
// cleanly instead of dereferencing a nil client.
func TestOutputHandler_Preview_StorageUnavailable(t *testing.T) {
	oh := &OutputHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/outputs/123/preview", nil)
	w := httptest.NewRecorder()

	oh.Preview(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != apierr.CodeStorageUnavailable {
		t.Errorf("expected code %s, got %s", apierr.CodeStorageUnavailable, resp.Error.Code)
	}
}

func TestOutputHandler_Download_StorageUnavailable(t *testing.T) {
	oh := &OutputHandler{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/outputs/123/download", nil)
	w := httptest.NewRecorder()

	oh.Download(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != apierr.CodeStorageUnavailable {
		t.Errorf("expected code %s, got %s", apierr.CodeStorageUnavailable, resp.Error.Code)
	}
}
