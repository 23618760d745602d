// Package assemble builds the front-mattered Markdown document for one
// remote page and derives its output filename.
package assemble

import (
	"fmt"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/starford/notedown/internal/apperr"
	"github.com/starford/notedown/internal/models"
	"github.com/starford/notedown/internal/render"
)

const (
	// DefaultTimeSuffix is appended to the publish date in front matter:
	// fixed time-of-day and UTC offset for the site generator.
	DefaultTimeSuffix = "12:00:00 +0800"

	defaultTitle = "Untitled"
	defaultSlug  = "untitled"
)

// frontMatter is the generated-file header contract. notion_id and
// last_synced_time are round-tripped by the inventory scanner; the other
// keys belong to the downstream site generator.
type frontMatter struct {
	Layout         string   `yaml:"layout"`
	Title          string   `yaml:"title"`
	Slug           string   `yaml:"slug"`
	Date           string   `yaml:"date"`
	NotionID       string   `yaml:"notion_id"`
	LastSyncedTime string   `yaml:"last_synced_time"`
	Tags           []string `yaml:"tags,omitempty"`
}

// Assembler turns a page and its blocks into a complete file.
type Assembler struct {
	timeSuffix string
}

// New creates an Assembler. timeSuffix may be empty to use the default.
func New(timeSuffix string) *Assembler {
	if timeSuffix == "" {
		timeSuffix = DefaultTimeSuffix
	}
	return &Assembler{timeSuffix: timeSuffix}
}

// Assemble returns the output filename (relative to the posts directory)
// and the full file content for a page. A page with zero blocks returns
// ErrEmptyDocument and nothing is written for it.
//
// Filename collisions (same date, same slug) are not de-duplicated: the
// last writer wins.
func (a *Assembler) Assemble(page models.Page, blocks []models.Block) (string, []byte, error) {
	if len(blocks) == 0 {
		return "", nil, fmt.Errorf("page %s: %w", page.ID, apperr.ErrEmptyDocument)
	}

	title := page.Title
	if title == "" {
		title = defaultTitle
	}

	s := slug.Make(title)
	if s == "" {
		s = defaultSlug
	}

	fm := frontMatter{
		Layout:         "post",
		Title:          title,
		Slug:           s,
		Date:           page.Date + " " + a.timeSuffix,
		NotionID:       page.ID,
		LastSyncedTime: page.LastEdited,
		Tags:           page.Tags,
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", nil, fmt.Errorf("assemble %s: marshal front matter: %w", page.ID, err)
	}

	body := render.Blocks(blocks)
	content := append([]byte("---\n"), head...)
	content = append(content, []byte("---\n\n")...)
	content = append(content, []byte(body)...)

	return fmt.Sprintf("%s-%s.md", page.Date, s), content, nil
}
