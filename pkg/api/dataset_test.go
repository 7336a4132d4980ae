package api

import "testing"

func TestNewTextDataset(t *testing.T) {
	ds := NewTextDataset("hello")
	if len(ds.Columns) != 1 || ds.Columns[0] != TextColumn {
		t.Fatalf("Columns = %v, want [text]", ds.Columns)
	}
	if ds.Len() != 1 || ds.Data[0][TextColumn] != "hello" {
		t.Errorf("Data = %v", ds.Data)
	}
	if err := ds.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDatasetFill(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"a", "b"},
		Data: []map[string]any{
			{"a": 1},
			{"a": 2, "b": 3, "stray": true},
		},
	}
	ds.Fill()

	if err := ds.Validate(); err != nil {
		t.Fatalf("Validate after Fill: %v", err)
	}
	if v, ok := ds.Data[0]["b"]; !ok || v != nil {
		t.Errorf("Data[0][b] = %v (present=%v), want explicit nil", v, ok)
	}
	if _, ok := ds.Data[1]["stray"]; ok {
		t.Error("stray key should be dropped")
	}
}

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      *Dataset
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", &Dataset{}, false},
		{"ok", &Dataset{Columns: []string{"a"}, Data: []map[string]any{{"a": nil}}}, false},
		{"duplicate column", &Dataset{Columns: []string{"a", "a"}}, true},
		{"missing key", &Dataset{Columns: []string{"a", "b"}, Data: []map[string]any{{"a": 1, "c": 2}}}, true},
		{"extra key", &Dataset{Columns: []string{"a"}, Data: []map[string]any{{"a": 1, "b": 2}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeDataset([]byte(`{"columns":["a","b","c"],"data":[{"a":1,"b":2.5,"c":[3,{"d":4}]},{"a":9007199254740993}]}`))
	if err != nil {
		t.Fatalf("DecodeDataset: %v", err)
	}
	if ds.Data[0]["a"] != int64(1) || ds.Data[0]["b"] != 2.5 {
		t.Errorf("numbers not restored: %#v", ds.Data[0])
	}
	nested := ds.Data[0]["c"].([]any)
	if nested[0] != int64(3) || nested[1].(map[string]any)["d"] != int64(4) {
		t.Errorf("nested numbers not restored: %#v", nested)
	}
	if ds.Data[1]["a"] != int64(9007199254740993) {
		t.Errorf("large integer lost precision: %v", ds.Data[1]["a"])
	}
	if err := ds.Validate(); err != nil {
		t.Errorf("ragged record not filled: %v", err)
	}

	if _, err := DecodeDataset([]byte(`{"columns":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestDecodeDatasetNullRecord(t *testing.T) {
	ds, err := DecodeDataset([]byte(`{"columns":["a","b"],"data":[null,{"a":1}]}`))
	if err != nil {
		t.Fatalf("DecodeDataset: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ds.Len())
	}
	if v, ok := ds.Data[0]["a"]; !ok || v != nil {
		t.Errorf("null record = %#v, want an all-nil row", ds.Data[0])
	}
	if err := ds.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
