package analysis

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"rrr-backend/internal/llm"
)

const (
	llmRetryAttempts = 3
	llmRetryBackoff  = 2 * time.Second
)

type retryingLLM struct {
	base    llm.Client
	runID   string
	backoff time.Duration
}

// newRetryingLLM wraps a client with bounded retries around transient
// transport failures. Only the remote call is retried; parsing and recovery
// downstream never re-enter here.
func newRetryingLLM(base llm.Client, runID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingLLM{base: base, runID: runID, backoff: llmRetryBackoff}
}

func (r retryingLLM) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= llmRetryAttempts; attempt++ {
		out, err := r.base.Complete(ctx, messages)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !shouldRetryLLM(err) || attempt == llmRetryAttempts {
			break
		}
		log.Printf("llm retry attempt=%d run_id=%s error=%v", attempt, r.runID, err)
		select {
		case <-time.After(r.backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
