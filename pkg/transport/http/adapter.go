// Package http serves the dataagent API over net/http: the liveness page,
// POST /api, POST /api/chat, the embedded /ui page, and /healthz.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/transport"
)

const livenessPage = "<h1>Python Agent is running</h1>"

// Adapter routes HTTP requests to a transport.Analyzer and serializes
// results and errors.
type Adapter struct {
	analyzer transport.Analyzer
	inflight *transport.InFlightRegistry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize caps request bodies. Defaults to 10 MiB.
	MaxBodySize int64

	// RequestTimeout bounds each /api call. Zero leaves it to the analyzer.
	RequestTimeout time.Duration

	// UI enables GET /ui.
	UI bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20,
		UI:          true,
	}
}

// NewAdapter creates an HTTP adapter for analyzer.
func NewAdapter(analyzer transport.Analyzer, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		analyzer: analyzer,
		inflight: transport.NewInFlightRegistry(),
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("GET /{$}", a.handleRoot)
	a.mux.HandleFunc("POST /api", a.handleAnalyze)
	a.mux.HandleFunc("POST /api/chat", a.handleChat)
	a.mux.HandleFunc("GET /healthz", handleHealthz)
	if cfg.UI {
		a.mux.HandleFunc("GET /ui", handleUI)
	}

	return a
}

// Handle mounts an additional handler, such as /metrics or /mcp.
func (a *Adapter) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// Handler returns the http.Handler for this adapter.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// InFlight returns the registry of running /api requests.
func (a *Adapter) InFlight() *transport.InFlightRegistry {
	return a.inflight
}

func (a *Adapter) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(livenessPage))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleAnalyze handles POST /api.
func (a *Adapter) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("input", "input is required"))
		return
	}

	ctx, done := a.inflight.Track(r.Context(), transport.RequestIDFromContext(r.Context()))
	defer done()
	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}

	debug.Log("transport", "analyze", "input", debug.Truncate(req.Input, 200))

	result, err := a.analyzer.Analyze(ctx, req.Input)
	if err != nil {
		transport.WriteAPIError(w, transport.AsAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleChat handles POST /api/chat.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !a.decode(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		transport.WriteAPIError(w, api.NewInvalidRequestError("messages", "messages are required"))
		return
	}

	reply, err := a.analyzer.Chat(r.Context(), req.Messages, req.Model)
	if err != nil {
		transport.WriteAPIError(w, transport.AsAPIError(err))
		return
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{Reply: reply})
}

// decode reads a JSON body into v, writing the error response and
// returning false on failure.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
