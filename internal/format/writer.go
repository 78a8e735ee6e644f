package format

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSONL writes samples to a JSONL file, creating parent directories.
// Returns the number of samples written.
func WriteJSONL(samples []Sample, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	count := 0
	for _, sample := range samples {
		if err := Append(sample, f); err != nil {
			f.Close()
			return count, err
		}
		count++
	}

	if err := f.Close(); err != nil {
		return count, fmt.Errorf("close: %w", err)
	}
	return count, nil
}

// Append writes a single sample as one JSON line.
func Append(sample Sample, w io.Writer) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}
