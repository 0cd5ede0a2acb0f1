package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// PushSink POSTs finished outlines to a remote collector.
type PushSink struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPushSink(baseURL, apiKey string) *PushSink {
	return &PushSink{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PushRequest is the body for POST /outlines.
type PushRequest struct {
	Document  string `json:"document"`
	Pages     int    `json:"pages"`
	ElapsedMs int64  `json:"elapsed_ms"`
	outline.Outline
}

func (s *PushSink) Deliver(ctx context.Context, res Result) error {
	body, err := json.Marshal(PushRequest{
		Document:  filepath.Base(res.Name),
		Pages:     res.Pages,
		ElapsedMs: res.Elapsed.Milliseconds(),
		Outline:   res.Outline,
	})
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/outlines", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("push outline %s: status %d: %s", res.Name, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (s *PushSink) Close() {
	s.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient delivery failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
