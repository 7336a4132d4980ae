package sandbox

import (
	"strings"
	"testing"
)

func TestBuildScriptDefault(t *testing.T) {
	script := BuildScript(ScriptOptions{Code: "results['x'] = 1"})

	for _, want := range []string{
		"import json, base64\n",
		"from io import BytesIO\n",
		"import pandas as pd\n",
		"matplotlib.use('Agg')\n",
		"def plot_to_base64():\n",
		"results = {}\n",
		"results['x'] = 1\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Contains(script, "read_parquet") {
		t.Error("script without dataset must not load one")
	}

	lines := strings.Split(strings.TrimRight(script, "\n"), "\n")
	if last := lines[len(lines)-1]; last != resultLine {
		t.Errorf("last line = %q, want %q", last, resultLine)
	}

	// The preamble precedes the body, and the body precedes the result line.
	iPre := strings.Index(script, "import json, base64")
	iRes := strings.Index(script, "results = {}")
	iBody := strings.Index(script, "results['x'] = 1")
	if !(iPre < iRes && iRes < iBody) {
		t.Errorf("sections out of order: preamble=%d results=%d body=%d", iPre, iRes, iBody)
	}
}

func TestBuildScriptDeterministic(t *testing.T) {
	opts := ScriptOptions{Code: "x = 1", DatasetPath: "/tmp/d.parquet", Columns: []string{"b", "a"}}
	if BuildScript(opts) != BuildScript(opts) {
		t.Error("BuildScript is not deterministic")
	}
}

func TestBuildScriptDataset(t *testing.T) {
	script := BuildScript(ScriptOptions{
		Code:        "results['n'] = len(data)",
		DatasetPath: `/tmp/it's "here".parquet`,
		Columns:     []string{"name", "Population[1]"},
	})

	for _, want := range []string{
		`df = pd.read_parquet("/tmp/it's \"here\".parquet")` + "\n",
		`df = df[["name","Population[1]"]]` + "\n",
		"data = df.to_dict(orient='records')\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Index(script, "read_parquet") > strings.Index(script, "results['n']") {
		t.Error("dataset must be loaded before the body runs")
	}
}

func TestBuildScriptCustomLibraries(t *testing.T) {
	script := BuildScript(ScriptOptions{Code: "pass", Libraries: []string{}})
	if strings.Contains(script, "pandas") || strings.Contains(script, "numpy") {
		t.Errorf("empty library list still imports libraries:\n%s", script)
	}

	script = BuildScript(ScriptOptions{Code: "pass", Libraries: []string{"import statistics"}})
	if !strings.Contains(script, "import statistics\n") {
		t.Errorf("custom library missing:\n%s", script)
	}
}

func TestBuildScriptBodyVerbatim(t *testing.T) {
	body := "for i in range(3):\n    results[str(i)] = i\n"
	script := BuildScript(ScriptOptions{Code: body, Libraries: []string{}})
	if !strings.Contains(script, body) {
		t.Errorf("body not embedded verbatim:\n%s", script)
	}
}
