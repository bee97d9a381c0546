// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// CSV writes records as rows in the stable column order, header first.
type CSV struct {
	file        *os.File
	w           *csv.Writer
	wroteHeader bool
}

// NewCSV creates (or truncates) the output file at path.
func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating CSV output: %w", err)
	}
	return &CSV{file: f, w: csv.NewWriter(f)}, nil
}

// WriteRecords appends one row per record and flushes. The header row is
// written before the first batch.
func (c *CSV) WriteRecords(records []types.Record) error {
	if !c.wroteHeader {
		if err := c.w.Write(types.Columns()); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		c.wroteHeader = true
	}

	for _, r := range records {
		if err := c.w.Write(r.Values()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// Close flushes remaining rows and closes the file. A file with no records
// still carries the header row.
func (c *CSV) Close() error {
	if !c.wroteHeader {
		if err := c.w.Write(types.Columns()); err != nil {
			c.file.Close()
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return c.file.Close()
}
