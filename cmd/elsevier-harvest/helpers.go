// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// buildClient constructs the shared API client from config and the
// resolved credentials. One client (and so one rate limiter) serves the
// whole invocation.
func buildClient() (*elsevier.Client, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("no API key: create .secrets/elsevier-api-key or set ELSEVIER_API_KEY")
	}

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
	rateCfg := types.RateLimitConfig{
		MinInterval:    viper.GetDuration("rate.min_interval"),
		Multiplier:     viper.GetFloat64("rate.multiplier"),
		Ceiling:        viper.GetDuration("rate.ceiling"),
		MaxRetries:     viper.GetInt("rate.max_retries"),
		NetworkRetries: viper.GetInt("rate.network_retries"),
	}
	return elsevier.NewClient(httpCfg, rateCfg, creds.APIKey, creds.InstToken), nil
}

// criteriaFromFlags builds search criteria from the shared query flags.
func criteriaFromFlags(cmd *cobra.Command) (elsevier.Criteria, error) {
	source, _ := cmd.Flags().GetString("source")
	normalized, err := elsevier.NormalizeSource(source)
	if err != nil {
		return elsevier.Criteria{}, err
	}

	maxRecords, _ := cmd.Flags().GetInt("max-records")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	dateRange, _ := cmd.Flags().GetString("date-range")

	c := elsevier.Criteria{
		Keywords:   splitList(cmd, "keywords"),
		Subjects:   splitList(cmd, "subjects"),
		Authors:    splitList(cmd, "authors"),
		AuthorIDs:  splitList(cmd, "author-ids"),
		DateRange:  dateRange,
		Source:     normalized,
		MaxRecords: maxRecords,
		PageSize:   pageSize,
	}
	if err := c.Validate(); err != nil {
		return elsevier.Criteria{}, err
	}
	return c, nil
}

// splitList reads a comma-separated flag into trimmed items.
func splitList(cmd *cobra.Command, name string) []string {
	raw, _ := cmd.Flags().GetString(name)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}

// outputDir resolves the output directory flag, falling back to config,
// and creates it.
func outputDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = viper.GetString("output.dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return dir, nil
}

// timestamp returns the filename timestamp for this run.
func timestamp() string {
	return time.Now().Format("20060102_150405")
}
