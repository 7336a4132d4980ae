package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// flattenJSON turns a JSON object, or an array of objects, into a table.
// Nested objects become dotted column names; arrays stay list values.
// Scalars and arrays holding non-objects are rejected so the caller can
// fall back to a text dataset.
func flattenJSON(body []byte) (*api.Dataset, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(body)

	t := &flatTable{index: map[string]bool{}}
	switch {
	case root.IsObject():
		t.addRecord(root)
	case root.IsArray():
		var err error
		root.ForEach(func(_, v gjson.Result) bool {
			if !v.IsObject() {
				err = fmt.Errorf("array element of type %s is not an object", v.Type)
				return false
			}
			t.addRecord(v)
			return true
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("top-level JSON %s is not an object or array", root.Type)
	}

	ds := &api.Dataset{Columns: t.columns, Data: t.rows}
	if ds.Columns == nil {
		ds.Columns = []string{}
	}
	if ds.Data == nil {
		ds.Data = []map[string]any{}
	}
	ds.Fill()
	return ds, nil
}

// flatTable accumulates records while tracking columns in first-seen order.
type flatTable struct {
	columns []string
	index   map[string]bool
	rows    []map[string]any
}

func (t *flatTable) addRecord(obj gjson.Result) {
	rec := map[string]any{}
	t.flatten("", obj, rec)
	t.rows = append(t.rows, rec)
}

func (t *flatTable) flatten(prefix string, obj gjson.Result, rec map[string]any) {
	obj.ForEach(func(k, v gjson.Result) bool {
		key := prefix + k.String()
		if v.IsObject() {
			t.flatten(key+".", v, rec)
			return true
		}
		if !t.index[key] {
			t.index[key] = true
			t.columns = append(t.columns, key)
		}
		rec[key] = jsonValue(v)
		return true
	})
}

// jsonValue converts a gjson leaf into a Go value, keeping integers as int64.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				return n
			}
		}
		return sanitizeValue(v.Num)
	case gjson.String:
		return v.String()
	default:
		if v.IsArray() {
			var out []any
			v.ForEach(func(_, e gjson.Result) bool {
				out = append(out, jsonValue(e))
				return true
			})
			if out == nil {
				out = []any{}
			}
			return out
		}
		return sanitizeValue(v.Value())
	}
}
