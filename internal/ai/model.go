// Package ai talks to hosted chat models and interprets their answers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Prompt is a single-turn chat request.
type Prompt struct {
	System      string
	User        string
	Model       string
	Temperature float64
}

// ChatModel produces a text completion for a prompt.
type ChatModel interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// ProviderError is a non-2xx answer from the model provider.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (err *ProviderError) Error() string {
	if err.Type != "" {
		return fmt.Sprintf("ai: HTTP %d: %s: %s", err.StatusCode, err.Type, err.Message)
	}
	return fmt.Sprintf("ai: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsRateLimited reports quota exhaustion, by status or by the provider's wording.
func (err *ProviderError) IsRateLimited() bool {
	if err.StatusCode == http.StatusTooManyRequests {
		return true
	}
	text := strings.ToLower(err.Type + " " + err.Message)
	return strings.Contains(text, "quota exceeded") ||
		strings.Contains(text, "too many requests") ||
		strings.Contains(text, "resource_exhausted")
}

// Retryable reports whether repeating the call may succeed.
func (err *ProviderError) Retryable() bool {
	return err.IsRateLimited() || err.StatusCode >= http.StatusInternalServerError
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ai: marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ai: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ai: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readProviderError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ai: decoding response: %w", err)
	}
	return nil
}

// readProviderError understands {"error":{"message","type"|"status"}} bodies used by
// both Gemini and OpenAI-compatible APIs.
func readProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wire struct {
		Error struct {
			Type    string `json:"type"`
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil && wire.Error.Message != "" {
		errType := wire.Error.Type
		if errType == "" {
			errType = wire.Error.Status
		}
		return &ProviderError{StatusCode: resp.StatusCode, Type: errType, Message: wire.Error.Message}
	}
	return &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}
