// Package ai calls the remote AI flow service. Flows are opaque: only the
// request and response shapes are known here.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnknownFlow   = errors.New("unknown AI flow")
	ErrFlowFailed    = errors.New("AI flow request failed")
	ErrNotConfigured = errors.New("AI flows URL not configured")
)

// maxResponseSize caps how much of a flow response is read
const maxResponseSize = 4 << 20

// Client posts JSON to {BaseURL}/{flow}. Requests are never retried.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FlowError carries the upstream status when a flow answers with a non-2xx code
type FlowError struct {
	Flow       string
	StatusCode int
	Body       string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("AI flow %s returned %d", e.Flow, e.StatusCode)
}

func (e *FlowError) Unwrap() error { return ErrFlowFailed }

// Run invokes flow with input and decodes the JSON result into out
func (c *Client) Run(ctx context.Context, flow string, input, out interface{}) error {
	if !IsKnownFlow(flow) {
		return ErrUnknownFlow
	}
	if c == nil || c.BaseURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to encode %s input: %w", flow, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+flow, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", flow, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("[AI] %s failed after %s: %v", flow, time.Since(start), err)
		return fmt.Errorf("%w: %v", ErrFlowFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrFlowFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[AI] %s returned %d in %s", flow, resp.StatusCode, time.Since(start))
		return &FlowError{Flow: flow, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	log.Printf("[AI] %s completed in %s", flow, time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(unwrapResult(raw), out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrFlowFailed, flow, err)
	}
	return nil
}

// unwrapResult accepts both a bare object and the {"result": {...}} envelope
func unwrapResult(raw []byte) []byte {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Result) > 0 {
		return envelope.Result
	}
	return raw
}
