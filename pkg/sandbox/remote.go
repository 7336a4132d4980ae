package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// transportMargin is added to the execution timeout to cover request
// upload, staging on the server, and the response.
const transportMargin = 30 * time.Second

// RemoteClient runs code on a sandbox server through its POST /execute
// endpoint.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Runner = (*RemoteClient)(nil)

// NewRemoteClient creates a client for the sandbox server at baseURL.
// httpClient may be nil.
func NewRemoteClient(baseURL string, httpClient *http.Client) *RemoteClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Run sends code and ds to the server. Transport failures are reported as
// spawn failures since the code never ran.
func (c *RemoteClient) Run(ctx context.Context, code string, ds *api.Dataset, timeout time.Duration) *api.ExecutionResult {
	start := time.Now()
	res := c.run(ctx, code, ds, timeout)
	return record(res, start)
}

func (c *RemoteClient) run(ctx context.Context, code string, ds *api.Dataset, timeout time.Duration) *api.ExecutionResult {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	body, err := json.Marshal(ExecuteRequest{
		Code:           code,
		Dataset:        ds,
		TimeoutSeconds: timeout.Seconds(),
	})
	if err != nil {
		return api.Failed(api.FailureSpawn, fmt.Sprintf("marshal request: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout+transportMargin)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return api.Failed(api.FailureSpawn, fmt.Sprintf("create request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return api.Failed(api.FailureCancelled, "execution cancelled")
		}
		if ctx.Err() != nil {
			return api.Failed(api.FailureTimeout, "Execution timed out: request deadline exceeded")
		}
		return api.Failed(api.FailureSpawn, fmt.Sprintf("sandbox request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.Failed(api.FailureSpawn, fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return api.Failed(api.FailureSpawn, "sandbox at capacity (HTTP 429)")
	}
	if resp.StatusCode != http.StatusOK {
		return api.Failed(api.FailureSpawn,
			fmt.Sprintf("sandbox returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	res, err := api.DecodeExecutionResult(respBody)
	if err != nil {
		return api.Failed(api.FailureSpawn, fmt.Sprintf("decode response: %v", err))
	}
	return res
}
