package e2e

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	ta := setupApp(t, copyTranscoder{})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	if result := parseJSON(t, resp); result["status"] != "ok" {
		t.Errorf("expected status ok, got %v", result["status"])
	}
}
