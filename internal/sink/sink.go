// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sink persists normalized records. Every sink flushes each batch
// before returning, so output written for one page survives a failure on a
// later page.
package sink

import (
	"errors"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Sink appends normalized records to an output destination. WriteRecords
// must leave the batch durable before returning; sinks perform no
// deduplication of their own.
type Sink interface {
	WriteRecords(records []types.Record) error
	Close() error
}

// Multi fans writes out to several sinks.
type Multi []Sink

// WriteRecords writes the batch to every sink, stopping at the first error.
func (m Multi) WriteRecords(records []types.Record) error {
	for _, s := range m {
		if err := s.WriteRecords(records); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the combined errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
