package assemble

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/notedown/internal/apperr"
	"github.com/starford/notedown/internal/models"
)

func TestAssemble_Basic(t *testing.T) {
	a := New("")
	page := models.Page{
		ID:         "p1",
		Title:      "Hello World",
		Date:       "2024-01-10",
		LastEdited: "2024-02-01T00:00:00.000Z",
	}
	blocks := []models.Block{{Kind: models.BlockParagraph, Text: "Hi"}}

	path, content, err := a.Assemble(page, blocks)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if path != "2024-01-10-hello-world.md" {
		t.Errorf("path = %q", path)
	}

	text := string(content)
	if !strings.HasPrefix(text, "---\n") {
		t.Errorf("missing opening delimiter: %q", text)
	}
	for _, want := range []string{
		"layout: post",
		"title: Hello World",
		"slug: hello-world",
		"notion_id: p1",
		"last_synced_time:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("front matter missing %q in:\n%s", want, text)
		}
	}
	if !strings.HasSuffix(text, "---\n\nHi\n\n") {
		t.Errorf("body = %q, want front matter then blank line then Hi", text)
	}
}

func TestAssemble_DateSuffix(t *testing.T) {
	a := New("09:00:00 +0000")
	page := models.Page{ID: "p1", Title: "T", Date: "2024-01-10", LastEdited: "x"}
	_, content, err := a.Assemble(page, []models.Block{{Kind: models.BlockParagraph, Text: "b"}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(string(content), "2024-01-10 09:00:00 +0000") {
		t.Errorf("date line missing configured suffix:\n%s", content)
	}
}

func TestAssemble_EmptyDocument(t *testing.T) {
	a := New("")
	_, _, err := a.Assemble(models.Page{ID: "p1", Title: "T"}, nil)
	if !errors.Is(err, apperr.ErrEmptyDocument) {
		t.Fatalf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestAssemble_UntitledDefault(t *testing.T) {
	a := New("")
	page := models.Page{ID: "p1", Date: "2024-01-10", LastEdited: "x"}
	path, content, err := a.Assemble(page, []models.Block{{Kind: models.BlockParagraph, Text: "b"}})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if path != "2024-01-10-untitled.md" {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(string(content), "title: Untitled") {
		t.Errorf("missing default title:\n%s", content)
	}
}

func TestAssemble_SlugTransliteration(t *testing.T) {
	a := New("")
	cases := []struct {
		title string
		want  string // slug portion of the filename
	}{
		{"Hello World", "hello-world"},
		{"Göteborg Notes", "goteborg-notes"},
		{"C'est déjà l'été", "c-est-deja-l-ete"},
	}
	for _, tc := range cases {
		page := models.Page{ID: "p", Title: tc.title, Date: "2024-01-10", LastEdited: "x"}
		path, _, err := a.Assemble(page, []models.Block{{Kind: models.BlockParagraph, Text: "b"}})
		if err != nil {
			t.Fatalf("Assemble(%q): %v", tc.title, err)
		}
		want := "2024-01-10-" + tc.want + ".md"
		if path != want {
			t.Errorf("path for %q = %q, want %q", tc.title, path, want)
		}
	}
}

func TestAssemble_TagsOmittedWhenEmpty(t *testing.T) {
	a := New("")
	page := models.Page{ID: "p1", Title: "T", Date: "2024-01-10", LastEdited: "x"}
	blocks := []models.Block{{Kind: models.BlockParagraph, Text: "b"}}

	_, content, _ := a.Assemble(page, blocks)
	if strings.Contains(string(content), "tags:") {
		t.Errorf("tags key present for tagless page:\n%s", content)
	}

	page.Tags = []string{"go", "notes"}
	_, content, _ = a.Assemble(page, blocks)
	text := string(content)
	if !strings.Contains(text, "tags:") || !strings.Contains(text, "- go") || !strings.Contains(text, "- notes") {
		t.Errorf("tags list missing:\n%s", text)
	}
}
