package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/Janani-6874/dataagent/pkg/api"
)

// pandasIndexPrefix marks index columns that pandas stores alongside data.
const pandasIndexPrefix = "__index_level_"

type leafInfo struct {
	name     string
	repeated bool
	convert  func(parquet.Value) any
	skip     bool
}

// ReadParquet decodes a Parquet file into a dataset. Nested leaf columns
// are named by their dotted path; repeated leaves become list values.
func ReadParquet(r io.ReaderAt, size int64) (*api.Dataset, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	schema := f.Schema()
	paths := schema.Columns()
	leaves := make([]leafInfo, len(paths))
	var columns []string
	for i, p := range paths {
		name := strings.Join(p, ".")
		leaves[i] = leafInfo{name: name, convert: plainValue}
		if strings.HasPrefix(name, pandasIndexPrefix) {
			leaves[i].skip = true
			continue
		}
		if leaf, ok := schema.Lookup(p...); ok {
			leaves[i].repeated = leaf.MaxRepetitionLevel > 0
			leaves[i].convert = leafConverter(leaf.Node)
		}
		columns = append(columns, name)
	}
	if columns == nil {
		columns = []string{}
	}

	data := []map[string]any{}
	buf := make([]parquet.Row, 128)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				data = append(data, rowRecord(row, leaves))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("read rows: %w", err)
			}
		}
		rows.Close()
	}

	ds := &api.Dataset{Columns: columns, Data: data}
	ds.Fill()
	return ds, nil
}

func rowRecord(row parquet.Row, leaves []leafInfo) map[string]any {
	rec := make(map[string]any, len(leaves))
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= len(leaves) || leaves[col].skip {
			continue
		}
		leaf := leaves[col]
		if !leaf.repeated {
			if v.IsNull() {
				rec[leaf.name] = nil
			} else {
				rec[leaf.name] = leaf.convert(v)
			}
			continue
		}
		list, _ := rec[leaf.name].([]any)
		if list == nil {
			list = []any{}
		}
		if !v.IsNull() {
			list = append(list, leaf.convert(v))
		}
		rec[leaf.name] = list
	}
	return rec
}

// leafConverter returns a value decoder honoring timestamp and date
// annotations. Other leaves decode by physical type.
func leafConverter(node parquet.Node) func(parquet.Value) any {
	lt := node.Type().LogicalType()
	switch {
	case lt != nil && lt.Timestamp != nil:
		unit := lt.Timestamp.Unit
		return func(v parquet.Value) any {
			n := v.Int64()
			var t time.Time
			switch {
			case unit.Nanos != nil:
				t = time.Unix(0, n)
			case unit.Micros != nil:
				t = time.UnixMicro(n)
			default:
				t = time.UnixMilli(n)
			}
			return sanitizeValue(t)
		}
	case lt != nil && lt.Date != nil:
		return func(v parquet.Value) any {
			return time.Unix(int64(v.Int32())*86400, 0).UTC().Format(time.DateOnly)
		}
	}
	return plainValue
}

func plainValue(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return sanitizeValue(float64(v.Float()))
	case parquet.Double:
		return sanitizeValue(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

// storedKind is the Parquet physical type chosen for a dataset column.
type storedKind int

const (
	storedString storedKind = iota
	storedBool
	storedInt
	storedDouble
)

func (k storedKind) node() parquet.Node {
	switch k {
	case storedBool:
		return parquet.Leaf(parquet.BooleanType)
	case storedInt:
		return parquet.Int(64)
	case storedDouble:
		return parquet.Leaf(parquet.DoubleType)
	default:
		return parquet.String()
	}
}

func (k storedKind) value(v any) parquet.Value {
	switch k {
	case storedBool:
		return parquet.BooleanValue(v.(bool))
	case storedInt:
		n, _ := toInt64(v)
		return parquet.Int64Value(n)
	case storedDouble:
		f, _ := toFloat64(v)
		return parquet.DoubleValue(f)
	default:
		return parquet.ByteArrayValue([]byte(cellString(v)))
	}
}

// WriteParquet encodes ds as a single row group. Each column is stored as
// an optional leaf typed from its non-nil values: boolean, int64, double,
// or string. Lists, maps, and mixed columns are stored as JSON text.
//
// Parquet groups order their fields by name, so readers that care about
// column order must reapply ds.Columns.
func WriteParquet(w io.Writer, ds *api.Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return fmt.Errorf("dataset has no columns")
	}

	kinds := make(map[string]storedKind, len(ds.Columns))
	group := parquet.Group{}
	for _, c := range ds.Columns {
		k := columnStoredKind(ds, c)
		kinds[c] = k
		group[c] = parquet.Optional(k.node())
	}
	schema := parquet.NewSchema("dataset", group)
	order := schema.Columns()

	rows := make([]parquet.Row, 0, len(ds.Data))
	for _, rec := range ds.Data {
		row := make(parquet.Row, len(order))
		for i, p := range order {
			name := p[0]
			v := rec[name]
			if v == nil {
				row[i] = parquet.NullValue().Level(0, 0, i)
				continue
			}
			row[i] = kinds[name].value(v).Level(0, 1, i)
		}
		rows = append(rows, row)
	}

	pw := parquet.NewWriter(w, schema)
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return pw.Close()
}

func columnStoredKind(ds *api.Dataset, col string) storedKind {
	allBool, allInt, allNum := true, true, true
	seen := false
	for _, rec := range ds.Data {
		v := rec[col]
		if v == nil {
			continue
		}
		seen = true
		if _, ok := v.(bool); !ok {
			allBool = false
		}
		if _, ok := toInt64(v); !ok {
			allInt = false
		}
		if _, ok := toFloat64(v); !ok {
			allNum = false
		}
	}
	switch {
	case !seen:
		return storedString
	case allBool:
		return storedBool
	case allInt:
		return storedInt
	case allNum:
		return storedDouble
	default:
		return storedString
	}
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
