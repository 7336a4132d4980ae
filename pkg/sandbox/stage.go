package sandbox

import (
	"fmt"
	"os"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/dataset"
)

// StageDataset writes ds as Parquet to a new file in dir and returns its
// path. The caller owns the file; Execute removes it when passed as
// Request.DatasetPath.
func StageDataset(dir string, ds *api.Dataset) (string, error) {
	if err := ds.Validate(); err != nil {
		return "", fmt.Errorf("staging dataset: %w", err)
	}

	f, err := os.CreateTemp(dir, "dataagent-*.parquet")
	if err != nil {
		return "", fmt.Errorf("staging dataset: %w", err)
	}
	if err := dataset.WriteParquet(f, ds); err != nil {
		f.Close()
		removeFile(f.Name())
		return "", fmt.Errorf("staging dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		removeFile(f.Name())
		return "", fmt.Errorf("staging dataset: %w", err)
	}
	return f.Name(), nil
}
