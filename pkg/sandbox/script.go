// Package sandbox runs generated Python analysis code in a short-lived
// interpreter process.
//
// Each execution owns a script file and, optionally, a Parquet dataset
// file. The interpreter runs in its own process group so a timeout can kill
// everything it spawned. Both files are removed when the execution ends,
// whatever the outcome. The script reports its result as one JSON line on
// stdout, which is decoded into an api.ExecutionResult.
package sandbox

import (
	"encoding/json"
	"strings"
)

// DefaultLibraries is the import block placed after the fixed preamble
// when ScriptOptions.Libraries is nil.
var DefaultLibraries = []string{
	"import pandas as pd",
	"import numpy as np",
	"import matplotlib",
	"matplotlib.use('Agg')",
	"import matplotlib.pyplot as plt",
}

// ScriptOptions describes one synthesized script.
type ScriptOptions struct {
	// Code is the generated body, inserted verbatim.
	Code string

	// DatasetPath, when set, is a Parquet file loaded into df and data.
	DatasetPath string

	// Columns restores the original column order after loading.
	Columns []string

	// Libraries replaces DefaultLibraries. An empty, non-nil slice emits
	// no library imports.
	Libraries []string
}

const plotHelper = `def plot_to_base64():
    from matplotlib import pyplot as _plt
    buf = BytesIO()
    _plt.savefig(buf, format='png', bbox_inches='tight')
    _plt.close()
    buf.seek(0)
    return base64.b64encode(buf.read()).decode('ascii')
`

const resultLine = `print(json.dumps({'status': 'success', 'result': results}, default=str))`

// BuildScript assembles the Python program for opts. The output depends
// only on opts.
func BuildScript(opts ScriptOptions) string {
	var b strings.Builder

	b.WriteString("import json, base64\n")
	b.WriteString("from io import BytesIO\n")

	libs := opts.Libraries
	if libs == nil {
		libs = DefaultLibraries
	}
	for _, l := range libs {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if opts.DatasetPath != "" {
		b.WriteString("import pandas as pd\n")
		b.WriteString("df = pd.read_parquet(" + pyString(opts.DatasetPath) + ")\n")
		if len(opts.Columns) > 0 {
			b.WriteString("df = df[" + pyStrings(opts.Columns) + "]\n")
		}
		b.WriteString("data = df.to_dict(orient='records')\n")
		b.WriteByte('\n')
	}

	b.WriteString(plotHelper)
	b.WriteByte('\n')
	b.WriteString("results = {}\n")
	b.WriteByte('\n')

	b.WriteString(opts.Code)
	if !strings.HasSuffix(opts.Code, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(resultLine)
	b.WriteByte('\n')
	return b.String()
}

// pyString renders s as a Python string literal. A JSON string is a valid
// Python literal with the same value.
func pyString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// pyStrings renders a Python list of string literals.
func pyStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}
