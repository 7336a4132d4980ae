package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestRootPage(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || body != "<h1>Python Agent is running</h1>" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}
}

func TestHealthz(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/healthz")
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.StatusCode, body)
	}
}

func TestUIPage(t *testing.T) {
	resp := getURL(t, testEnv.BaseURL()+"/ui")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<textarea") {
		t.Errorf("GET /ui = %d", resp.StatusCode)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, testEnv.BaseURL()+"/healthz", nil)
	req.Header.Set("X-Request-ID", "req-integration-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-integration-1" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	readBody(t, postJSON(t, testEnv.BaseURL()+"/api", map[string]string{"input": "what is the answer?"}))

	body := readBody(t, getURL(t, testEnv.BaseURL()+"/metrics"))
	for _, want := range []string{
		`dataagent_requests_total{method="POST",route="/api",status="2xx"}`,
		"dataagent_provider_requests_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}
