// Package models defines the domain types for notedown.
package models

// Page is an immutable snapshot of one published page in the remote
// content database, as returned by a listing call. Block content is
// fetched separately.
type Page struct {
	ID string `json:"id"`
	// Title is the concatenated plain text of the page's title property,
	// "Untitled" when the property is empty.
	Title string `json:"title"`
	// Tags holds all multi-select option names in remote order.
	Tags []string `json:"tags,omitempty"`
	// Date is the publication date in YYYY-MM-DD form: the start value of
	// the first date property, falling back to the creation date.
	Date string `json:"date"`
	// LastEdited is the remote last-modified instant as an ISO-8601 string.
	// ISO-8601 strings in UTC compare chronologically when compared
	// lexically, which is what the reconciler relies on.
	LastEdited string `json:"last_edited"`
}

// LocalPost is a generated file tracked in the output directory. It is
// produced by the inventory scanner from a file's front matter.
type LocalPost struct {
	Path string `json:"path"`
	// NotionID is the remote identifier round-tripped through front matter.
	// Files without one are foreign and never tracked.
	NotionID string `json:"notion_id"`
	// LastSynced is the remote last-edited instant recorded when the file
	// was last written. Empty means "oldest", so any remote edit wins.
	LastSynced string `json:"last_synced"`
}
