// Package images rewrites remote-hosted image links inside generated
// Markdown files into locally downloaded copies.
package images

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/starford/notedown/internal/checksum"
	"github.com/starford/notedown/internal/storage"
)

// DefaultPrefixes lists the URL prefixes the remote system serves page
// images from.
var DefaultPrefixes = []string{
	"https://s3.us-west-2.amazonaws.com/secure.notion-static.com/",
	"https://prod-files-secure.s3.us-west-2.amazonaws.com/",
}

const defaultExt = ".png"

// Config controls where downloads land and which links are rewritten.
type Config struct {
	// Dir is the local directory downloaded images are stored in.
	Dir string
	// PublicPath is the root-relative URL prefix written into the Markdown.
	PublicPath string
	// Prefixes is the URL allowlist; only matching image links are
	// localized.
	Prefixes []string
	// Timeout bounds each download.
	Timeout time.Duration
}

// Localizer scans Markdown files for remote-hosted images, downloads them,
// and rewrites the links in place.
type Localizer struct {
	dir        string
	publicPath string
	prefixes   []string
	http       *http.Client
	logger     *slog.Logger
}

// NewLocalizer builds a Localizer, filling in defaults for anything unset.
func NewLocalizer(cfg Config, logger *slog.Logger) *Localizer {
	dir := cfg.Dir
	if dir == "" {
		dir = "images"
	}
	publicPath := cfg.PublicPath
	if publicPath == "" {
		publicPath = "/images"
	}
	prefixes := cfg.Prefixes
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Localizer{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		prefixes:   prefixes,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Run localizes every Markdown file under dir (recursive). Per-file and
// per-image failures are logged and skipped; only the directory walk
// itself can fail.
func (l *Localizer) Run(dir string) error {
	store, err := storage.NewFS(dir)
	if err != nil {
		return err
	}

	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if _, err := l.LocalizeFile(store, rel); err != nil {
			l.logger.Warn("images: file skipped",
				slog.String("path", rel),
				slog.String("error", err.Error()))
		}
		return nil
	})
}

// LocalizeFile processes one Markdown file (path relative to the store
// root) and reports whether the file was rewritten.
func (l *Localizer) LocalizeFile(store storage.Provider, relPath string) (bool, error) {
	data, err := store.Read(relPath)
	if err != nil {
		return false, err
	}

	links := imageLinks(data, l.prefixes)
	if len(links) == 0 {
		return false, nil
	}
	l.logger.Info("images: found remote images",
		slog.String("path", relPath),
		slog.Int("count", len(links)))

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return false, fmt.Errorf("images: mkdir %s: %w", l.dir, err)
	}

	stem := strings.TrimSuffix(filepath.Base(relPath), ".md")
	content := string(data)
	changed := false
	for _, link := range links {
		name := localName(stem, link)
		if err := l.download(link, filepath.Join(l.dir, name)); err != nil {
			// Leave the original link untouched; the next pass retries.
			l.logger.Warn("images: download failed",
				slog.String("url", link),
				slog.String("error", err.Error()))
			continue
		}
		content = strings.ReplaceAll(content, link, l.publicPath+"/"+name)
		changed = true
	}

	if !changed {
		return false, nil
	}
	if err := store.Write(relPath, []byte(content)); err != nil {
		return false, err
	}
	l.logger.Info("images: links rewritten", slog.String("path", relPath))
	return true, nil
}

// imageLinks parses source as Markdown and returns the image destinations
// matching one of the allowlisted prefixes, deduplicated in document
// order.
func imageLinks(source []byte, prefixes []string) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	seen := make(map[string]struct{})
	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if !matchesPrefix(dest, prefixes) {
			return ast.WalkContinue, nil
		}
		if _, dup := seen[dest]; dup {
			return ast.WalkContinue, nil
		}
		seen[dest] = struct{}{}
		out = append(out, dest)
		return ast.WalkContinue, nil
	})
	return out
}

func matchesPrefix(dest string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(dest, p) {
			return true
		}
	}
	return false
}

// localName derives a stable filename for a downloaded image: the post's
// file stem plus a short digest of the URL, keeping re-runs idempotent.
func localName(stem, link string) string {
	ext := defaultExt
	if u, err := url.Parse(link); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("%s-%s%s", stem, checksum.Short(link, 8), ext)
}

// download fetches link into dest, skipping work when dest already exists.
func (l *Localizer) download(link, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	res, err := l.http.Get(link)
	if err != nil {
		return fmt.Errorf("images: get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("images: get %s: status %d", link, res.StatusCode)
	}

	tmp, err := os.CreateTemp(l.dir, ".img-tmp-*")
	if err != nil {
		return fmt.Errorf("images: create temp: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, res.Body); err != nil {
		return fmt.Errorf("images: copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("images: close temp: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("images: rename: %w", err)
	}
	success = true
	return nil
}
