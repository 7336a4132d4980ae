// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the dataagent service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for model inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// ExecBuckets covers interpreter runs from a near-instant script up to the
// default one minute timeout.
var ExecBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataagent_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// InflightRequests tracks the number of HTTP requests being served.
	InflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataagent_requests_inflight",
			Help: "In-flight requests",
		},
	)

	// ProviderRequestsTotal counts requests sent to the generator backend.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ProviderLatency records generator latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataagent_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ProviderTokensTotal counts tokens processed by direction (input/output).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)

	// ToolExecutionsTotal counts tool executions by name and outcome.
	ToolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_tool_executions_total",
			Help: "Tool executions",
		},
		[]string{"tool_name", "status"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dataagent_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)

	// SandboxExecutionsTotal counts sandbox runs by outcome: success or one of
	// the failure reasons (parse, exit, timeout, spawn, cancelled).
	SandboxExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_sandbox_executions_total",
			Help: "Sandbox executions",
		},
		[]string{"outcome"},
	)

	// SandboxDuration records wall time of sandbox runs in seconds.
	SandboxDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataagent_sandbox_duration_seconds",
			Help:    "Sandbox execution duration",
			Buckets: ExecBuckets,
		},
	)

	// SandboxActive tracks the number of interpreter processes currently running.
	SandboxActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataagent_sandbox_active",
			Help: "Active sandbox executions",
		},
	)

	// FetchTotal counts dataset fetches by detected format and status.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_fetch_total",
			Help: "Dataset fetches",
		},
		[]string{"format", "status"},
	)

	// FetchDuration records dataset fetch and normalize time in seconds.
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataagent_fetch_duration_seconds",
			Help:    "Dataset fetch duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	// ContractFailuresTotal counts generator outputs that did not satisfy the
	// JSON output contract, by kind (parse or missing_code).
	ContractFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataagent_contract_failures_total",
			Help: "Output contract failures",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InflightRequests,
		ProviderRequestsTotal,
		ProviderLatency,
		ProviderTokensTotal,
		ToolExecutionsTotal,
		RateLimitRejectedTotal,
		SandboxExecutionsTotal,
		SandboxDuration,
		SandboxActive,
		FetchTotal,
		FetchDuration,
		ContractFailuresTotal,
	)
}
