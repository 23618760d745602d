// Package reconcile diffs the remote page snapshot against the local
// inventory and applies the resulting create/update/delete plan.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notedown/internal/apperr"
	"github.com/starford/notedown/internal/assemble"
	"github.com/starford/notedown/internal/inventory"
	"github.com/starford/notedown/internal/models"
	"github.com/starford/notedown/internal/storage"
)

// Fetcher is the remote side of the sync: listing published pages and
// fetching one page's block content.
type Fetcher interface {
	ListPublished(ctx context.Context) ([]models.Page, error)
	FetchBlocks(ctx context.Context, pageID string) ([]models.Block, error)
}

// Reconciler drives one sync run.
type Reconciler struct {
	fetcher   Fetcher
	store     storage.Provider
	assembler *assemble.Assembler
	logger    *slog.Logger
	workers   int
}

// New creates a Reconciler. workers bounds concurrent create/update items;
// values below 1 mean sequential.
func New(fetcher Fetcher, store storage.Provider, assembler *assemble.Assembler, logger *slog.Logger, workers int) *Reconciler {
	if workers < 1 {
		workers = 1
	}
	return &Reconciler{
		fetcher:   fetcher,
		store:     store,
		assembler: assembler,
		logger:    logger,
		workers:   workers,
	}
}

// BuildPlan computes the minimal action set from a remote snapshot and the
// local inventory. Every remote identifier lands in exactly one of
// create/update/unchanged; every local identifier absent remotely lands in
// delete. A page is an update only when its remote last-edited instant is
// strictly newer than the recorded last-synced instant (ISO-8601 strings
// in UTC order lexically).
func BuildPlan(pages []models.Page, inv map[string]models.LocalPost) models.Plan {
	var plan models.Plan

	remote := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		remote[p.ID] = struct{}{}
		local, ok := inv[p.ID]
		switch {
		case !ok:
			plan.Create = append(plan.Create, p)
		case p.LastEdited > local.LastSynced:
			plan.Update = append(plan.Update, models.UpdateItem{Page: p, Prior: local})
		}
	}

	for id, local := range inv {
		if _, ok := remote[id]; !ok {
			plan.Delete = append(plan.Delete, local)
		}
	}
	// Map iteration order is random; keep deletions stable for logs and
	// tests.
	sort.Slice(plan.Delete, func(i, j int) bool {
		return plan.Delete[i].Path < plan.Delete[j].Path
	})

	return plan
}

// Run performs one full sync: scan local inventory, list the remote
// snapshot, diff, apply. A listing failure aborts before any destructive
// action; per-item failures during apply are isolated and aggregated in
// the returned Summary.
func (r *Reconciler) Run(ctx context.Context) (models.Summary, error) {
	inv, err := inventory.Scan(r.store, r.logger)
	if err != nil {
		return models.Summary{}, err
	}

	pages, err := r.fetcher.ListPublished(ctx)
	if err != nil {
		// No plan from a partial snapshot: an empty remote set is
		// indistinguishable from "everything unpublished" and would delete
		// every local file.
		return models.Summary{}, fmt.Errorf("reconcile: list remote: %w", err)
	}

	plan := BuildPlan(pages, inv)
	r.logger.Info("reconcile: plan ready",
		slog.Int("remote", len(pages)),
		slog.Int("local", len(inv)),
		slog.Int("create", len(plan.Create)),
		slog.Int("update", len(plan.Update)),
		slog.Int("delete", len(plan.Delete)))

	return r.Apply(ctx, plan), nil
}

// Apply executes a plan: deletions first, then creations and updates with
// up to workers items in flight. Each item is independently fallible.
func (r *Reconciler) Apply(ctx context.Context, plan models.Plan) models.Summary {
	var (
		mu      sync.Mutex
		summary models.Summary
	)
	record := func(res models.ItemResult) {
		mu.Lock()
		summary.Add(res)
		mu.Unlock()
		r.logItem(res)
	}

	// Deletions run to completion before any write so a freed filename can
	// be reused within the same run.
	for _, local := range plan.Delete {
		res := models.ItemResult{NotionID: local.NotionID, Action: models.ActionDelete, Path: local.Path}
		if err := r.store.Delete(local.Path); err != nil {
			res.Err = fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
		}
		record(res)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	writeItem := func(page models.Page, action models.Action, priorPath string) {
		g.Go(func() error {
			record(r.writePage(gctx, page, action, priorPath))
			// Item failures are isolated; never cancel siblings.
			return nil
		})
	}
	for _, p := range plan.Create {
		writeItem(p, models.ActionCreate, "")
	}
	for _, u := range plan.Update {
		writeItem(u.Page, models.ActionUpdate, u.Prior.Path)
	}
	_ = g.Wait()

	return summary
}

// writePage fetches a page's blocks, assembles the document, and writes
// it. priorPath, when set, is the filename the item previously occupied;
// it is removed once the new file is in place so a retitled or redated
// page does not leave its old filename behind.
func (r *Reconciler) writePage(ctx context.Context, page models.Page, action models.Action, priorPath string) models.ItemResult {
	res := models.ItemResult{NotionID: page.ID, Action: action}

	blocks, err := r.fetcher.FetchBlocks(ctx, page.ID)
	if err != nil {
		res.Err = err
		return res
	}

	path, content, err := r.assembler.Assemble(page, blocks)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyDocument) {
			res.Action = models.ActionSkip
			return res
		}
		res.Err = err
		return res
	}
	res.Path = path

	if err := r.store.Write(path, content); err != nil {
		res.Err = fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
		return res
	}

	if priorPath != "" && priorPath != path {
		if err := r.store.Delete(priorPath); err != nil {
			res.Err = fmt.Errorf("%w: remove superseded %s: %v", apperr.ErrWriteFailure, priorPath, err)
		}
	}
	return res
}

func (r *Reconciler) logItem(res models.ItemResult) {
	attrs := []any{
		slog.String("notion_id", res.NotionID),
		slog.String("action", string(res.Action)),
	}
	if res.Path != "" {
		attrs = append(attrs, slog.String("path", res.Path))
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("error", res.Err.Error()))
		r.logger.Error("reconcile: item failed", attrs...)
		return
	}
	r.logger.Info("reconcile: item done", attrs...)
}
