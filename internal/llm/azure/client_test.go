package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rrr-backend/internal/llm"
)

func TestNewClientValidatesSettings(t *testing.T) {
	cases := []struct {
		name                                   string
		endpoint, deployment, version, apiKey string
	}{
		{"missing endpoint", "", "gpt", "2024-02-01", "key"},
		{"missing deployment", "https://x", "", "2024-02-01", "key"},
		{"missing version", "https://x", "gpt", "", "key"},
		{"missing key", "https://x", "gpt", "2024-02-01", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClient(tc.endpoint, tc.deployment, tc.version, tc.apiKey); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCompleteSendsDeploymentRequest(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotKey = r.Header.Get("api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"structured output"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL, "gpt-4o", "2024-02-01", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be terse"},
		{Role: llm.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "structured output" {
		t.Fatalf("out = %q", out)
	}
	if gotPath != "/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-01" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api-key header = %q", gotKey)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
}

func TestCompleteSurfacesHTTPErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL, "gpt-4o", "2024-02-01", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("err = %v, want http status 503", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client, err := NewClient(ts.URL, "gpt-4o", "2024-02-01", "secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
