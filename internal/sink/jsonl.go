// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// JSONLines writes one JSON object per record per line. The format is
// append-friendly and is what the metrics stage reads back as input.
type JSONLines struct {
	file *os.File
	enc  *json.Encoder
}

// NewJSONLines creates (or truncates) the output file at path.
func NewJSONLines(path string) (*JSONLines, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating JSON output: %w", err)
	}
	return &JSONLines{file: f, enc: json.NewEncoder(f)}, nil
}

// WriteRecords appends one line per record. Writes go straight to the file
// so each batch is durable once this returns.
func (j *JSONLines) WriteRecords(records []types.Record) error {
	for _, r := range records {
		if err := j.enc.Encode(r); err != nil {
			return fmt.Errorf("writing JSON record: %w", err)
		}
	}
	return nil
}

// Close closes the file.
func (j *JSONLines) Close() error {
	return j.file.Close()
}

// ReadJSONLines reads records back from a JSON lines file produced by a
// previous run.
func ReadJSONLines(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []types.Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var r types.Record
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("parsing records file %s: %w", path, err)
		}
		records = append(records, r)
	}
	return records, nil
}
