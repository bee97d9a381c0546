// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/elsevier-harvest/internal/metrics"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search and annotate with PlumX metrics end to end",
	Long: `Harvest runs the full pipeline: a paginated search, incremental
persistence of the normalized records, then PlumX annotation and impact
ranking of the result set. Search output for completed pages is kept even
if a later stage fails. All requests share one rate limiter.`,
	RunE: runHarvest,
}

func init() {
	addQueryFlags(harvestCmd)
	addOutputFlags(harvestCmd)
	harvestCmd.Flags().Bool("skip-metrics", false, "stop after the search stage")
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	client, err := buildClient()
	if err != nil {
		return err
	}

	records, fetchErr := runSearchPipeline(cmd, client, criteria)
	fmt.Printf("Search stage: %d records (%s)\n", len(records), criteria.Source)
	if fetchErr != nil {
		return fetchErr
	}
	if len(records) == 0 {
		fmt.Println("No records found.")
		return nil
	}

	if skip, _ := cmd.Flags().GetBool("skip-metrics"); skip {
		return nil
	}

	annotator := &metrics.Annotator{Client: client, Log: logger}
	summary, err := annotator.Annotate(context.Background(), records)
	if err != nil {
		return err
	}
	metrics.Rank(records)

	outDir, err := outputDir(cmd)
	if err != nil {
		return err
	}
	wantCSV, _ := cmd.Flags().GetBool("csv")
	if err := writeRecordSet(records, outDir, "plumx_output", wantCSV); err != nil {
		return err
	}

	fmt.Printf("Metrics stage: %d annotated, %d without data, %d failed\n",
		summary.Annotated, summary.NoData, summary.Failed)
	fmt.Printf("\nHarvest complete: %d records, %d requests issued\n",
		len(records), client.Limiter.Requests())
	return nil
}
