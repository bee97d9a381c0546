// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/internal/normalize"
	"github.com/pdiddy/elsevier-harvest/internal/search"
	"github.com/pdiddy/elsevier-harvest/internal/sink"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search ScienceDirect or Scopus for articles",
	Long: `Search pages through a ScienceDirect or Scopus query under rate-limit
control, normalizes the entries into flat records, and writes them
incrementally to a JSON lines file (plus CSV and a SQLite archive on
request). Each page is persisted before the next is fetched, so a failing
page never loses earlier pages.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	addOutputFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the shared search criteria flags.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("keywords", "", "title keywords (comma-separated, AND-joined)")
	cmd.Flags().String("subjects", "", "Scopus subject area codes (comma-separated, OR-joined)")
	cmd.Flags().String("authors", "", "author names (comma-separated, OR-joined)")
	cmd.Flags().String("author-ids", "", "Scopus author IDs (comma-separated, OR-joined)")
	cmd.Flags().String("date-range", "", "publication year range, e.g. 2020-2025")
	cmd.Flags().String("source", "sciencedirect", "source API: sciencedirect or scopus")
	cmd.Flags().Int("max-records", 50, "maximum records to fetch (0 for all)")
	cmd.Flags().Int("page-size", 50, "entries requested per page")
}

// addOutputFlags registers the shared persistence flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-dir", "", "output directory (default: results/search_queries)")
	cmd.Flags().Bool("csv", false, "also write CSV output")
	cmd.Flags().String("archive", "", "SQLite archive database path")
}

func runSearch(cmd *cobra.Command, args []string) error {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	client, err := buildClient()
	if err != nil {
		return err
	}

	records, fetchErr := runSearchPipeline(cmd, client, criteria)
	fmt.Printf("\nSearch summary: %d records (%s)\n", len(records), criteria.Source)
	return fetchErr
}

// runSearchPipeline drives fetch → normalize → sinks and returns the
// normalized records. Output files for pages that completed survive a
// returned error.
func runSearchPipeline(cmd *cobra.Command, client *elsevier.Client, criteria elsevier.Criteria) ([]types.Record, error) {
	outDir, err := outputDir(cmd)
	if err != nil {
		return nil, err
	}

	stamp := timestamp()
	jsonPath := filepath.Join(outDir, fmt.Sprintf("%s_search_%s.jsonl", criteria.Source, stamp))
	outputs := []string{jsonPath}

	jsonSink, err := sink.NewJSONLines(jsonPath)
	if err != nil {
		return nil, err
	}
	sinks := sink.Multi{jsonSink}

	if wantCSV, _ := cmd.Flags().GetBool("csv"); wantCSV {
		csvPath := filepath.Join(outDir, fmt.Sprintf("%s_search_%s.csv", criteria.Source, stamp))
		csvSink, err := sink.NewCSV(csvPath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, csvSink)
		outputs = append(outputs, csvPath)
	}

	query, _ := criteria.QueryString()
	if archivePath, _ := cmd.Flags().GetString("archive"); archivePath != "" {
		archive, err := sink.OpenArchive(archivePath)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		if err := archive.BeginRun(criteria.Source, query); err != nil {
			archive.Close()
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, archive)
		outputs = append(outputs, archivePath)
	}

	started := time.Now()
	norm := normalize.New(logger)
	fetcher := &search.Fetcher{Client: client, Log: logger}

	var records []types.Record
	fetchErr := fetcher.FetchAll(context.Background(), criteria, func(p search.Page) error {
		recs := norm.Page(criteria.Source, p.Entries)
		if len(recs) == 0 {
			return nil
		}
		records = append(records, recs...)
		return sinks.WriteRecords(recs)
	})

	if err := sinks.Close(); err != nil {
		logger.Warn().Err(err).Msg("closing sinks")
	}

	manifest := sink.Manifest{
		Source:    criteria.Source,
		Query:     query,
		StartedAt: started,
		Records:   len(records),
		Skipped:   norm.Skipped(),
		Requests:  client.Limiter.Requests(),
		Outputs:   outputs,
	}
	manifestPath := filepath.Join(outDir, fmt.Sprintf("%s_search_%s.yaml", criteria.Source, stamp))
	if err := sink.WriteManifest(manifest, manifestPath); err != nil {
		logger.Warn().Err(err).Msg("writing run manifest")
	}

	return records, fetchErr
}
