// Package inventory scans the output directory and rebuilds the local
// side of the sync state from each file's front matter.
package inventory

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/adrg/frontmatter"

	"github.com/starford/notedown/internal/apperr"
	"github.com/starford/notedown/internal/models"
	"github.com/starford/notedown/internal/storage"
)

// meta is the subset of front-matter keys the sync round-trips.
type meta struct {
	NotionID       string `yaml:"notion_id"`
	LastSyncedTime string `yaml:"last_synced_time"`
}

// Result pairs one file with its parse outcome. A nil Err with an empty
// Post.NotionID means the file carries no sync identity and is foreign.
type Result struct {
	Path string
	Post models.LocalPost
	Err  error
}

// ScanAll enumerates the Markdown files directly in the output directory
// and parses each one's front matter. Per-file failures are reported in
// the Result, never aborting the scan; only the directory listing itself
// can fail.
func ScanAll(store storage.Provider) ([]Result, error) {
	names, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, scanFile(store, name))
	}
	return results, nil
}

func scanFile(store storage.Provider, name string) Result {
	data, err := store.Read(name)
	if err != nil {
		return Result{Path: name, Err: err}
	}

	var m meta
	if _, err := frontmatter.Parse(bytes.NewReader(data), &m); err != nil {
		return Result{Path: name, Err: fmt.Errorf("%w: %s: %v", apperr.ErrCorruptFrontMatter, name, err)}
	}

	return Result{
		Path: name,
		Post: models.LocalPost{
			Path:       name,
			NotionID:   m.NotionID,
			LastSynced: m.LastSyncedTime,
		},
	}
}

// Scan builds the identifier → record mapping the reconciler diffs
// against. Files without a notion_id are foreign (hand-written or from
// another tool) and are silently ignored; unparseable front matter is
// logged per file and skipped.
func Scan(store storage.Provider, logger *slog.Logger) (map[string]models.LocalPost, error) {
	results, err := ScanAll(store)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.LocalPost, len(results))
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("inventory: skipping file",
				slog.String("path", r.Path),
				slog.String("error", r.Err.Error()))
			continue
		}
		if r.Post.NotionID == "" {
			continue
		}
		out[r.Post.NotionID] = r.Post
	}
	return out, nil
}
