// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/elsevier-harvest/internal/objects"
	"github.com/pdiddy/elsevier-harvest/internal/sink"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Download article figure graphics and author manuscripts",
	Long: `Objects retrieves the high-resolution figure graphics embedded in
articles, identified by DOI, and optionally their author manuscript PDFs.
DOIs come from --doi or from a previous search output (--input).`,
	RunE: runObjects,
}

func init() {
	objectsCmd.Flags().String("doi", "", "article DOIs (comma-separated)")
	objectsCmd.Flags().String("input", "", "JSON lines file from a previous search run")
	objectsCmd.Flags().String("output-dir", "", "output directory (default: results/objects)")
	objectsCmd.Flags().Bool("manuscripts", false, "also download author manuscript PDFs")
	rootCmd.AddCommand(objectsCmd)
}

func runObjects(cmd *cobra.Command, args []string) error {
	dois, err := objectDOIs(cmd)
	if err != nil {
		return err
	}
	if len(dois) == 0 {
		return fmt.Errorf("no DOIs: provide --doi or --input")
	}

	client, err := buildClient()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = viper.GetString("objects.output_dir")
	}
	saveManuscripts, _ := cmd.Flags().GetBool("manuscripts")

	cfg := types.ObjectsConfig{
		OutputDir:       dir,
		SaveManuscripts: saveManuscripts,
	}

	retriever := &objects.Retriever{Client: client, Log: logger}
	batch := retriever.RetrieveBatch(context.Background(), dois, cfg)

	fmt.Printf("\nObjects summary: %d articles, %d graphics, %d manuscripts, %d failed\n",
		batch.Articles, batch.Graphics, batch.Manuscripts, batch.Failed)
	return nil
}

// objectDOIs collects DOIs from the --doi flag or from a search output
// file, skipping records without a DOI.
func objectDOIs(cmd *cobra.Command) ([]string, error) {
	dois := splitList(cmd, "doi")

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		records, err := sink.ReadJSONLines(input)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.DOI != "" && r.DOI != types.NotAvailable {
				dois = append(dois, r.DOI)
			}
		}
	}
	return dois, nil
}
