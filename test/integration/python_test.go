package integration

import (
	"context"
	"os/exec"
	"testing"

	"github.com/Janani-6874/dataagent/pkg/sandbox"
)

// requirePython skips unless python3 can import the default libraries and
// read Parquet.
func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	check := exec.Command("python3", "-c", "import pandas, numpy, matplotlib, pyarrow")
	if err := check.Run(); err != nil {
		t.Skip("python3 lacks pandas, numpy, matplotlib, or pyarrow")
	}
}

func TestAnalyze_RealInterpreter(t *testing.T) {
	requirePython(t)

	eng, err := newEngine(testEnv.MockBackend.URL, sandbox.NewExecutor(sandbox.Options{TempDir: t.TempDir()}), testEnv.Registry)
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}

	res, err := eng.Analyze(context.Background(), "what is the total population?")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.OK() {
		t.Fatalf("execution failed: %s (%s)", res.Message, res.Reason)
	}
	// The interpreter and the stub must agree.
	if res.Result["rows"] != int64(2) || res.Result["total"] != int64(985000) {
		t.Errorf("result = %v", res.Result)
	}
}
