package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/debug"
	"github.com/Janani-6874/dataagent/pkg/observability"
)

const (
	defaultPython        = "python3"
	defaultTimeout       = 60 * time.Second
	defaultMaxConcurrent = 4

	// waitDelay bounds how long Wait blocks on output pipes still held by
	// descendants after the interpreter itself has exited or been killed.
	waitDelay = 2 * time.Second
)

// Runner executes generated code, optionally against a dataset. Failures
// are reported in the result, never as a Go error.
type Runner interface {
	Run(ctx context.Context, code string, ds *api.Dataset, timeout time.Duration) *api.ExecutionResult
}

// Options configures an Executor.
type Options struct {
	// Python is the interpreter command. Defaults to "python3".
	Python string

	// TempDir holds script and dataset files. Empty uses os.TempDir().
	TempDir string

	// Timeout applies when a request does not set one. Defaults to 60s.
	Timeout time.Duration

	// MaxConcurrent bounds simultaneous interpreter processes. Defaults to 4.
	MaxConcurrent int

	// Libraries overrides DefaultLibraries in every script.
	Libraries []string
}

// Request is a single execution.
type Request struct {
	Code string

	// DatasetPath is a staged Parquet file. The execution takes ownership
	// and removes it when done.
	DatasetPath string

	// Columns is the original column order of the staged dataset.
	Columns []string

	// Timeout bounds the interpreter's wall-clock time.
	Timeout time.Duration
}

// Executor runs scripts in local interpreter processes. It is safe for
// concurrent use; executions share nothing but the concurrency limit.
type Executor struct {
	opts Options
	sem  *semaphore.Weighted
}

var _ Runner = (*Executor)(nil)

// NewExecutor creates an Executor, filling unset options with defaults.
func NewExecutor(opts Options) *Executor {
	if opts.Python == "" {
		opts.Python = defaultPython
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	return &Executor{
		opts: opts,
		sem:  semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// Run stages ds (if it has columns) and executes code against it.
func (e *Executor) Run(ctx context.Context, code string, ds *api.Dataset, timeout time.Duration) *api.ExecutionResult {
	req := Request{Code: code, Timeout: timeout}
	if ds != nil && len(ds.Columns) > 0 {
		path, err := StageDataset(e.opts.TempDir, ds)
		if err != nil {
			return record(api.Failed(api.FailureSpawn, err.Error()), time.Now())
		}
		req.DatasetPath = path
		req.Columns = ds.Columns
	}
	return e.Execute(ctx, req)
}

// Execute writes the script for req, runs it, and maps the outcome. The
// script file and req.DatasetPath are removed on every path.
func (e *Executor) Execute(ctx context.Context, req Request) *api.ExecutionResult {
	start := time.Now()
	if req.DatasetPath != "" {
		defer removeFile(req.DatasetPath)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.Timeout
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return record(api.Failed(api.FailureTimeout, "Execution timed out: request deadline exceeded"), start)
		}
		return record(api.Failed(api.FailureCancelled, "execution cancelled"), start)
	}
	defer e.sem.Release(1)

	observability.SandboxActive.Inc()
	defer observability.SandboxActive.Dec()

	scriptPath, err := e.writeScript(req)
	if err != nil {
		return record(api.Failed(api.FailureSpawn, err.Error()), start)
	}
	defer removeFile(scriptPath)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.opts.Python, scriptPath)
	cmd.Dir = filepath.Dir(scriptPath)
	cmd.Env = append(os.Environ(), "MPLBACKEND=Agg", "PYTHONDONTWRITEBYTECODE=1")
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	debug.Log("sandbox", "starting interpreter",
		"python", e.opts.Python, "script", scriptPath, "dataset", req.DatasetPath, "timeout", timeout)

	runErr := cmd.Run()
	killProcessGroup(cmd)

	res := classify(ctx, runCtx, runErr, timeout, stdout.String(), stderr.String())

	debug.Log("sandbox", "interpreter finished",
		"status", res.Status, "reason", res.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout", debug.Truncate(stdout.String(), 200))
	if res.Reason == api.FailureTimeout {
		slog.Warn("sandbox execution timed out", "timeout", timeout)
	}
	return record(res, start)
}

func (e *Executor) writeScript(req Request) (string, error) {
	f, err := os.CreateTemp(e.opts.TempDir, "dataagent-*.py")
	if err != nil {
		return "", fmt.Errorf("creating script file: %w", err)
	}
	script := BuildScript(ScriptOptions{
		Code:        req.Code,
		DatasetPath: req.DatasetPath,
		Columns:     req.Columns,
		Libraries:   e.opts.Libraries,
	})
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		removeFile(f.Name())
		return "", fmt.Errorf("writing script file: %w", err)
	}
	if err := f.Close(); err != nil {
		removeFile(f.Name())
		return "", fmt.Errorf("closing script file: %w", err)
	}
	return f.Name(), nil
}

// classify maps the process outcome onto an ExecutionResult. Deadlines
// are checked before the exit status because a killed process also exits
// non-zero. A caller deadline counts as a timeout; only an explicit
// cancellation is reported as cancelled.
func classify(parent, runCtx context.Context, runErr error, timeout time.Duration, stdout, stderr string) *api.ExecutionResult {
	// A zero exit whose stray descendants kept the pipes open past
	// waitDelay still produced its output.
	if runErr == nil || errors.Is(runErr, exec.ErrWaitDelay) {
		return ParseOutput(stdout)
	}

	if errors.Is(parent.Err(), context.Canceled) {
		return api.Failed(api.FailureCancelled, "execution cancelled")
	}
	if errors.Is(parent.Err(), context.DeadlineExceeded) {
		return api.Failed(api.FailureTimeout, "Execution timed out: request deadline exceeded")
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return api.Failed(api.FailureTimeout,
			fmt.Sprintf("Execution timed out after %s seconds", strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)))
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if stderr != "" {
			return api.Failed(api.FailureExit, stderr)
		}
		return api.Failed(api.FailureExit, exitErr.Error())
	}
	return api.Failed(api.FailureSpawn, runErr.Error())
}

// envelope is the line the script prints last.
type envelope struct {
	Status string         `json:"status"`
	Result map[string]any `json:"result"`
}

// ParseOutput decodes the last non-empty stdout line as the result
// envelope. Earlier lines are output printed by the generated code.
func ParseOutput(stdout string) *api.ExecutionResult {
	line := lastLine(stdout)

	var env envelope
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return api.Failed(api.FailureParse, "Failed to parse execution output: "+err.Error())
	}
	if dec.More() {
		return api.Failed(api.FailureParse, "Failed to parse execution output: trailing data after envelope")
	}
	if env.Status != string(api.StatusSuccess) {
		return api.Failed(api.FailureParse,
			fmt.Sprintf("Failed to parse execution output: unexpected status %q", env.Status))
	}
	for k, v := range env.Result {
		env.Result[k] = api.RestoreNumber(v)
	}
	return api.Succeeded(env.Result)
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("sandbox cleanup failed", "path", path, "error", err)
	}
}

// record updates the sandbox metrics for a finished execution.
func record(res *api.ExecutionResult, start time.Time) *api.ExecutionResult {
	outcome := string(api.StatusSuccess)
	if !res.OK() {
		outcome = string(res.Reason)
	}
	observability.SandboxExecutionsTotal.WithLabelValues(outcome).Inc()
	observability.SandboxDuration.Observe(time.Since(start).Seconds())
	return res
}
