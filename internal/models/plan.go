package models

// Action classifies what a sync run did (or tried to do) with one page.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// UpdateItem pairs a remotely edited page with the local record it
// supersedes. The prior record matters when a title or date edit changes
// the derived filename: the rewrite must also remove the old file, or the
// stale path survives every subsequent run.
type UpdateItem struct {
	Page  Page
	Prior LocalPost
}

// Plan is the derived, ephemeral result of diffing the remote snapshot
// against the local inventory. The three identifier sets are disjoint;
// identifiers present on both sides with an unchanged timestamp appear in
// none of them.
type Plan struct {
	// Create holds pages present remotely but not locally.
	Create []Page
	// Update holds pages whose remote last-edited instant is strictly
	// newer than the local last-synced instant, paired with the local
	// record each one replaces.
	Update []UpdateItem
	// Delete holds local records whose identifier no longer appears in
	// the remote set.
	Delete []LocalPost
}

// Empty reports whether the plan requires no work.
func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// ItemResult is the outcome of applying one plan item.
type ItemResult struct {
	NotionID string
	Action   Action
	Path     string
	// Err is non-nil when the item failed. Empty-document skips carry
	// ActionSkip and a nil Err.
	Err error
}

// Summary aggregates a run's item results.
type Summary struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Failed  int
	Items   []ItemResult
}

// Add records one item outcome and bumps the matching counter.
func (s *Summary) Add(r ItemResult) {
	s.Items = append(s.Items, r)
	if r.Err != nil {
		s.Failed++
		return
	}
	switch r.Action {
	case ActionCreate:
		s.Created++
	case ActionUpdate:
		s.Updated++
	case ActionDelete:
		s.Deleted++
	case ActionSkip:
		s.Skipped++
	}
}

// OK reports whether every item in the run succeeded.
func (s *Summary) OK() bool {
	return s.Failed == 0
}
