package sandbox

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
)

const maxRequestBytes = 64 << 20

// ExecuteRequest is the request body for POST /execute.
type ExecuteRequest struct {
	Code           string       `json:"code"`
	Dataset        *api.Dataset `json:"dataset,omitempty"`
	TimeoutSeconds float64      `json:"timeout_seconds,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Mode           string `json:"mode"`
	RuntimeVersion string `json:"runtime_version"`
	Capacity       int    `json:"capacity"`
	CurrentLoad    int    `json:"current_load"`
	UptimeSecs     int64  `json:"uptime_seconds"`
}

// Handler serves a Runner over HTTP so the interpreter can live on a
// separate host. Requests beyond the capacity are rejected with 429
// instead of queueing.
type Handler struct {
	runner         Runner
	capacity       int32
	currentLoad    atomic.Int32
	runtimeVersion string
	startTime      time.Time
	mux            *http.ServeMux
}

// NewHandler creates a Handler for runner. capacity defaults to 4 and
// python names the interpreter reported by /health.
func NewHandler(runner Runner, capacity int, python string) *Handler {
	if capacity <= 0 {
		capacity = defaultMaxConcurrent
	}
	if python == "" {
		python = defaultPython
	}
	h := &Handler{
		runner:         runner,
		capacity:       int32(capacity),
		runtimeVersion: detectRuntimeVersion(python),
		startTime:      time.Now(),
		mux:            http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /execute", h.handleExecute)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	current := h.currentLoad.Add(1)
	defer h.currentLoad.Add(-1)

	if current > h.capacity {
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("at capacity (%d/%d concurrent executions)", current, h.capacity))
		return
	}

	var req ExecuteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	if req.Dataset != nil {
		req.Dataset.RestoreNumbers()
		req.Dataset.Fill()
	}

	debug.Log("sandbox", "execute request",
		"code", debug.Truncate(req.Code, 120),
		"timeout", req.TimeoutSeconds,
		"rows", req.Dataset.Len())

	timeout := time.Duration(req.TimeoutSeconds * float64(time.Second))
	res := h.runner.Run(r.Context(), req.Code, req.Dataset, timeout)

	slog.Info("execute complete", "status", res.Status, "reason", res.Reason)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:         "healthy",
		Mode:           "python",
		RuntimeVersion: h.runtimeVersion,
		Capacity:       int(h.capacity),
		CurrentLoad:    int(h.currentLoad.Load()),
		UptimeSecs:     int64(time.Since(h.startTime).Seconds()),
	})
}

// detectRuntimeVersion returns the first line of "<python> --version", or
// "unknown" when the interpreter cannot be run.
func detectRuntimeVersion(python string) string {
	output, err := exec.Command(python, "--version").CombinedOutput()
	if err != nil {
		return "unknown"
	}
	version := strings.TrimSpace(string(output))
	if idx := strings.Index(version, "\n"); idx > 0 {
		version = version[:idx]
	}
	return version
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
