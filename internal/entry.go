// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/notedown/internal/assemble"
	"github.com/starford/notedown/internal/images"
	"github.com/starford/notedown/internal/journal"
	"github.com/starford/notedown/internal/models"
	"github.com/starford/notedown/internal/notion"
	"github.com/starford/notedown/internal/reconcile"
	"github.com/starford/notedown/internal/storage"
)

// Run performs one sync run with the given options. The returned error is
// non-nil when the remote listing failed or any plan item failed, which
// the CLI maps to a non-zero exit status.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("posts_dir", cfg.Posts.Dir),
		slog.String("database_id", cfg.Notion.DatabaseID),
		slog.Int("workers", cfg.App.Workers),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the posts directory exists.
	if err := os.MkdirAll(cfg.Posts.Dir, 0o755); err != nil {
		return fmt.Errorf("create posts dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Posts.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	client := notion.NewClient(cfg.Notion.ClientConfig())
	assembler := assemble.New(cfg.Posts.TimeSuffix)
	rec := reconcile.New(client, store, assembler, logger, cfg.App.Workers)

	started := time.Now()
	summary, err := rec.Run(ctx)
	if err != nil {
		logger.Error("Sync aborted", slog.String("error", err.Error()))
		return err
	}
	finished := time.Now()

	logger.Info("Sync finished",
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("deleted", summary.Deleted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Duration("took", finished.Sub(started)))

	if cfg.Journal.Path != "" {
		if err := recordRun(cfg.Journal.Path, started, finished, summary); err != nil {
			// The journal is observational; a failure here never fails the
			// sync itself.
			logger.Warn("Journal write failed", slog.String("error", err.Error()))
		}
	}

	if !summary.OK() {
		return fmt.Errorf("sync completed with %d failed item(s)", summary.Failed)
	}
	return nil
}

func recordRun(path string, started, finished time.Time, summary models.Summary) error {
	db, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Record(started, finished, summary)
	return err
}

// RunImages executes the image localization pass over dir, optionally
// staying alive and re-running on file changes.
func RunImages(ctx context.Context, cfg *Config, dir string, watch bool) error {
	logger := newLogger(cfg)
	loc := images.NewLocalizer(cfg.Images.LocalizerConfig(), logger)

	if watch {
		return loc.Watch(ctx, dir)
	}
	return loc.Run(dir)
}

// RunHistory prints the most recent sync runs, and the per-item outcomes
// of one run when runID is non-zero.
func RunHistory(cfg *Config, limit int, runID int64, out io.Writer) error {
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal is disabled (journal.path is empty)")
	}
	db, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID != 0 {
		items, err := db.Items(runID)
		if err != nil {
			return err
		}
		for _, it := range items {
			line := fmt.Sprintf("%-8s %-36s %s", it.Action, it.NotionID, it.Path)
			if it.Error != "" {
				line += "  ERROR: " + it.Error
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}

	runs, err := db.Recent(limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "run %-4d %s  created=%d updated=%d deleted=%d skipped=%d failed=%d\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.Created, r.Updated, r.Deleted, r.Skipped, r.Failed)
	}
	return nil
}

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}
