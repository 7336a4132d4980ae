package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/transport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_EndToEnd(t *testing.T) {
	analyzer := &fakeAnalyzer{result: api.Succeeded(map[string]any{"total": 3})}
	srv := NewServer(analyzer, nil, WithLogger(quietLogger()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ServeOn(ln) }()

	time.Sleep(50 * time.Millisecond)

	url := "http://" + ln.Addr().String()
	resp, err := gohttp.Post(url+"/api", "application/json", jsonBody(map[string]string{"input": "count"}))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if resp.Header.Get(transport.RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result["status"] != "success" {
		t.Errorf("result = %v", result)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-serveErr:
		if err != nil {
			t.Errorf("ServeOn returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("ServeOn did not return after Shutdown")
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := NewServer(&fakeAnalyzer{}, nil, WithLogger(quietLogger()), WithMetrics("/metrics"))

	do(t, srv.Handler(), gohttp.MethodGet, "/healthz", nil)
	rec := do(t, srv.Handler(), gohttp.MethodGet, "/metrics", nil)
	if rec.Code != gohttp.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dataagent_requests_total") {
		t.Error("metrics output missing dataagent_requests_total")
	}

	srv = NewServer(&fakeAnalyzer{}, nil, WithLogger(quietLogger()))
	if rec := do(t, srv.Handler(), gohttp.MethodGet, "/metrics", nil); rec.Code != gohttp.StatusNotFound {
		t.Errorf("metrics without WithMetrics status = %d, want 404", rec.Code)
	}
}

func TestServer_ExtraHandlers(t *testing.T) {
	extra := map[string]gohttp.Handler{
		"/mcp": gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			w.Write([]byte("mcp"))
		}),
	}
	srv := NewServer(&fakeAnalyzer{}, extra, WithLogger(quietLogger()))

	rec := do(t, srv.Handler(), gohttp.MethodPost, "/mcp", strings.NewReader("{}"))
	if rec.Body.String() != "mcp" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServer_RateLimit(t *testing.T) {
	srv := NewServer(&fakeAnalyzer{}, nil, WithLogger(quietLogger()), WithRateLimit(0.001, 1))

	if rec := do(t, srv.Handler(), gohttp.MethodGet, "/healthz", nil); rec.Code != gohttp.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := do(t, srv.Handler(), gohttp.MethodGet, "/healthz", nil)
	if rec.Code != gohttp.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if got := decodeError(t, rec); got.Type != api.ErrorTypeTooManyRequests {
		t.Errorf("error type = %s", got.Type)
	}
}

func TestServer_ShutdownCancelsAnalyses(t *testing.T) {
	analyzer := &fakeAnalyzer{block: true, entered: make(chan struct{}, 1)}
	srv := NewServer(analyzer, nil, WithLogger(quietLogger()))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	done := make(chan int, 1)
	go func() {
		resp, err := gohttp.Post(ts.URL+"/api", "application/json", jsonBody(map[string]string{"input": "long"}))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	<-analyzer.entered
	if n := srv.adapter.InFlight().Len(); n != 1 {
		t.Fatalf("in-flight = %d, want 1", n)
	}

	srv.Shutdown(context.Background())

	select {
	case code := <-done:
		if code != gohttp.StatusInternalServerError {
			t.Errorf("cancelled analysis status = %d, want 500", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("analysis was not cancelled by Shutdown")
	}
}
