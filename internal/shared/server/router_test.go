package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rrr-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "8080",
		CORSAllowOrigin: []string{"*"},
		Env:             "dev",
		CacheBackend:    "memory",
		CacheTTL:        time.Hour,
		VizDir:          t.TempDir(),
		LLMProvider:     "azure",
		LLMModel:        "gpt-4o",
		AzureAPIKey:     "test-key",
		AzureEndpoint:   "https://example.openai.azure.com",
		AzureAPIVersion: "2024-02-01",
		RateLimitRPS:    100,
		RateLimitBurst:  100,
	}
}

func TestNewRouterHealth(t *testing.T) {
	r, err := NewRouter(testConfig(t))
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestNewRouterServesMetrics(t *testing.T) {
	r, err := NewRouter(testConfig(t))
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "analysis_started_total") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestNewRouterRejectsIncompleteLLMConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.AzureAPIKey = ""
	if _, err := NewRouter(cfg); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
