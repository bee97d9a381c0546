// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/elsevier-harvest/internal/metrics"
	"github.com/pdiddy/elsevier-harvest/internal/sink"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Annotate records with PlumX news and policy metrics",
	Long: `Metrics fetches PlumX news-mention and policy-citation counts for each
record of a previous search output (--input) or for explicit DOIs (--doi),
ranks the records by impact, and writes the annotated set. Records the
PlumX API has no data for keep the n/a marker.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("input", "", "JSON lines file from a previous search run")
	metricsCmd.Flags().String("doi", "", "DOIs to annotate directly (comma-separated)")
	metricsCmd.Flags().String("output-dir", "", "output directory (default: results/search_queries)")
	metricsCmd.Flags().Bool("csv", true, "also write CSV output")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	records, err := metricsInput(cmd)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no input records: provide --input or --doi")
	}

	client, err := buildClient()
	if err != nil {
		return err
	}
	outDir, err := outputDir(cmd)
	if err != nil {
		return err
	}

	annotator := &metrics.Annotator{Client: client, Log: logger}
	summary, err := annotator.Annotate(context.Background(), records)
	if err != nil {
		return err
	}
	metrics.Rank(records)

	wantCSV, _ := cmd.Flags().GetBool("csv")
	if err := writeRecordSet(records, outDir, "plumx_output", wantCSV); err != nil {
		return err
	}

	fmt.Printf("\nMetrics summary: %d annotated, %d without data, %d failed (total: %d)\n",
		summary.Annotated, summary.NoData, summary.Failed, len(records))
	return nil
}

// metricsInput loads records from --input or builds bare records from --doi.
func metricsInput(cmd *cobra.Command) ([]types.Record, error) {
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		return sink.ReadJSONLines(input)
	}

	var records []types.Record
	for _, doi := range splitList(cmd, "doi") {
		records = append(records, types.Record{
			Source:          "doi",
			ID:              doi,
			DOI:             doi,
			Title:           types.NotAvailable,
			Publication:     types.NotAvailable,
			CoverDate:       types.NotAvailable,
			Creator:         types.NotAvailable,
			NewsMentions:    types.NotAvailable,
			PolicyCitations: types.NotAvailable,
		})
	}
	return records, nil
}

// writeRecordSet writes a complete record set to timestamped JSON lines
// (and optionally CSV) files under dir.
func writeRecordSet(records []types.Record, dir, prefix string, wantCSV bool) error {
	stamp := timestamp()

	jsonSink, err := sink.NewJSONLines(filepath.Join(dir, fmt.Sprintf("%s_%s.jsonl", prefix, stamp)))
	if err != nil {
		return err
	}
	sinks := sink.Multi{jsonSink}

	if wantCSV {
		csvSink, err := sink.NewCSV(filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, stamp)))
		if err != nil {
			sinks.Close()
			return err
		}
		sinks = append(sinks, csvSink)
	}

	if err := sinks.WriteRecords(records); err != nil {
		sinks.Close()
		return err
	}
	return sinks.Close()
}
