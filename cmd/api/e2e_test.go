//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

type e2eEntry struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	CompletedOn time.Time `json:"completedOn"`
}

// TestE2ESmoke drives a running server, started separately, through a full entry lifecycle.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("TODO_BASE_URL", "http://localhost:8080")
	client := &http.Client{Timeout: 10 * time.Second}

	waitForReady(t, client, baseURL)

	var created e2eEntry
	doJSON(t, client, http.MethodPost, baseURL+"/api/v1/todos", `{"title":"e2e smoke"}`, http.StatusCreated, &created)
	if created.ID == 0 || created.Title != "e2e smoke" {
		t.Fatalf("unexpected created entry: %+v", created)
	}

	entryURL := fmt.Sprintf("%s/api/v1/todos/%d", baseURL, created.ID)

	var updated e2eEntry
	doJSON(t, client, http.MethodPatch, entryURL, `{"completed":true}`, http.StatusOK, &updated)
	if !updated.Completed || !updated.CompletedOn.After(created.CreatedAt.Add(-time.Second)) {
		t.Fatalf("completion not applied: %+v", updated)
	}

	var fetched e2eEntry
	doJSON(t, client, http.MethodGet, entryURL, "", http.StatusOK, &fetched)
	if !fetched.Completed {
		t.Fatalf("fetched entry not completed: %+v", fetched)
	}

	doJSON(t, client, http.MethodDelete, entryURL, "", http.StatusNoContent, nil)
	doJSON(t, client, http.MethodGet, entryURL, "", http.StatusNotFound, nil)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func waitForReady(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("server at %s not ready", baseURL)
}

func doJSON(t *testing.T, client *http.Client, method, url, body string, wantStatus int, out any) {
	t.Helper()

	var payload *bytes.Reader
	if body != "" {
		payload = bytes.NewReader([]byte(body))
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}
