// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package objects retrieves embedded article objects: high-resolution
// figure graphics and, optionally, author manuscript PDFs.
package objects

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// objectBase is the object retrieval endpoint. Declared as a var so tests
// can substitute an httptest server.
var objectBase = "https://api.elsevier.com/content/object/doi/"

const (
	graphicsDir    = "graphics"
	manuscriptsDir = "manuscripts"
)

// objectList is the rendition listing for one article.
type objectList struct {
	Choices struct {
		Choice []objectRef `json:"choice"`
	} `json:"choices"`
}

type objectRef struct {
	Ref  string `json:"@ref"`
	Type string `json:"@type"`
	URL  string `json:"$"`
}

// Retriever downloads article objects through the shared client.
type Retriever struct {
	Client *elsevier.Client
	Log    zerolog.Logger
}

// Result summarizes one article's retrieval.
type Result struct {
	Graphics    int
	Manuscripts int
	Failed      int
}

// BatchResult summarizes a multi-DOI run.
type BatchResult struct {
	Articles    int
	Graphics    int
	Manuscripts int
	Failed      int
}

// Retrieve lists an article's renditions and downloads its graphics to
// OutputDir/graphics, and author manuscripts to OutputDir/manuscripts when
// enabled. Per-object failures are logged and skipped.
func (r *Retriever) Retrieve(ctx context.Context, doi string, cfg types.ObjectsConfig) (Result, error) {
	var result Result

	refs, err := r.list(ctx, doi)
	if err != nil {
		return result, err
	}

	graphics := graphicRefs(refs)
	if len(graphics) == 0 {
		r.Log.Info().Str("doi", doi).Msg("no graphic renditions found")
	}

	dirs := []string{filepath.Join(cfg.OutputDir, graphicsDir)}
	if cfg.SaveManuscripts {
		dirs = append(dirs, filepath.Join(cfg.OutputDir, manuscriptsDir))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	stamp := time.Now().Format("20060102")
	for _, ref := range graphics {
		srcURL := objectBase + url.PathEscape(doi) + "/ref/" + ref + "/high"
		name := fmt.Sprintf("%s_%s_%s.jpg", strings.ReplaceAll(doi, "/", "."), ref, stamp)
		dest := filepath.Join(cfg.OutputDir, graphicsDir, name)

		if err := r.download(ctx, srcURL, dest); err != nil {
			result.Failed++
			r.Log.Warn().Str("doi", doi).Str("ref", ref).Err(err).Msg("graphic download failed")
			continue
		}
		result.Graphics++
	}

	if cfg.SaveManuscripts {
		for i, manURL := range manuscriptURLs(refs) {
			name := fmt.Sprintf("manuscript_%s_%d.pdf", strings.ReplaceAll(doi, "/", "."), i+1)
			dest := filepath.Join(cfg.OutputDir, manuscriptsDir, name)

			if err := r.download(ctx, manURL, dest); err != nil {
				result.Failed++
				r.Log.Warn().Str("doi", doi).Err(err).Msg("manuscript download failed")
				continue
			}
			result.Manuscripts++
		}
	}

	return result, nil
}

// RetrieveBatch processes multiple DOIs, continuing after individual
// failures.
func (r *Retriever) RetrieveBatch(ctx context.Context, dois []string, cfg types.ObjectsConfig) BatchResult {
	var batch BatchResult
	for _, doi := range dois {
		res, err := r.Retrieve(ctx, doi, cfg)
		batch.Graphics += res.Graphics
		batch.Manuscripts += res.Manuscripts
		batch.Failed += res.Failed
		if err != nil {
			batch.Failed++
			r.Log.Warn().Str("doi", doi).Err(err).Msg("object retrieval failed")
			continue
		}
		batch.Articles++
	}
	return batch
}

// list fetches the rendition listing for one DOI.
func (r *Retriever) list(ctx context.Context, doi string) ([]objectRef, error) {
	reqURL := objectBase + url.PathEscape(doi)

	resp, err := r.Client.Get(ctx, reqURL, nil, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &elsevier.RequestFailedError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	var list objectList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing object listing: %w", err)
	}
	return list.Choices.Choice, nil
}

// download fetches srcURL to destPath via a temporary file renamed on
// success, so a partial download never leaves a truncated file behind.
func (r *Retriever) download(ctx context.Context, srcURL, destPath string) error {
	resp, err := r.Client.Get(ctx, srcURL, nil, "*/*")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, srcURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".object-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// graphicRefs returns the sorted unique rendition refs that are figure
// graphics ("gr" refs).
func graphicRefs(refs []objectRef) []string {
	seen := make(map[string]struct{})
	for _, o := range refs {
		if strings.Contains(o.Ref, "gr") {
			seen[o.Ref] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for ref := range seen {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

// manuscriptURLs returns the unique download URLs of author manuscript
// ("am") renditions of PDF type.
func manuscriptURLs(refs []objectRef) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range refs {
		if !strings.Contains(strings.ToLower(o.Ref), "am") {
			continue
		}
		if !strings.Contains(strings.ToLower(o.Type), "pdf") {
			continue
		}
		if o.URL == "" {
			continue
		}
		if _, dup := seen[o.URL]; dup {
			continue
		}
		seen[o.URL] = struct{}{}
		out = append(out, o.URL)
	}
	return out
}
