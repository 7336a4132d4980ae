package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/provider"
)

const (
	defaultTimeout = 120 * time.Second
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 8 * time.Second
)

// Client posts Chat Completions requests. The base URL includes the
// version segment, for example "https://api.openai.com/v1".
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a Client. A zero timeout means 120s. maxRetries is how
// many times a rate-limited, unavailable or unreachable backend is tried
// again.
func NewClient(baseURL, apiKey string, timeout time.Duration, maxRetries int) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:     apiKey,
		maxRetries: max(maxRetries, 0),
		backoff:    retryBaseDelay,
	}
}

// Complete sends one non-streaming completion request.
func (c *Client) Complete(ctx context.Context, req *provider.ProviderRequest) (*provider.ProviderResponse, error) {
	chatReq := TranslateToChat(req)
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	debug.Log("providers", "chat completion request",
		"url", c.endpoint, "model", chatReq.Model,
		"messages", len(chatReq.Messages), "tools", len(chatReq.Tools),
		"response_format", req.ResponseFormat)
	debug.Trace("providers", "chat completion body", "body", debug.Truncate(string(body), 4000))

	for attempt := 0; ; attempt++ {
		chatResp, wait, err := c.post(ctx, body)
		if err == nil {
			resp := TranslateResponse(chatResp)
			debug.Log("providers", "chat completion response",
				"model", resp.Model, "finish_reason", resp.FinishReason,
				"tool_calls", len(resp.ToolCalls), "text", debug.Truncate(resp.Text, 200))
			return resp, nil
		}
		if wait < 0 || attempt >= c.maxRetries {
			return nil, err
		}
		if wait == 0 {
			wait = min(c.backoff<<attempt, retryMaxDelay)
		}
		debug.Log("providers", "retrying chat completion", "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(wait):
		}
	}
}

// post performs one HTTP exchange. wait is negative when the failure is
// final, zero for the default backoff, or the delay the backend asked for.
func (c *Client) post(ctx context.Context, body []byte) (_ *ChatCompletionResponse, wait time.Duration, _ error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, -1, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, -1, MapNetworkError(err)
		}
		return nil, 0, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, retryDelay(httpResp), MapHTTPError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, -1, api.NewModelError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}
	return &chatResp, 0, nil
}

// retryDelay classifies an error status. Only 429 and the gateway
// statuses are retried, honoring a Retry-After given in seconds.
func retryDelay(resp *http.Response) time.Duration {
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
	default:
		return -1
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return min(time.Duration(secs)*time.Second, retryMaxDelay)
	}
	return 0
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
