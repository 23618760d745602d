package images

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/notedown/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// imageServer serves fake image bytes and records requested paths.
func imageServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		_, _ = w.Write([]byte("png-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv, &requested
}

func testLocalizer(t *testing.T, srv *httptest.Server) (*Localizer, string, string) {
	t.Helper()
	postsDir := t.TempDir()
	imagesDir := filepath.Join(t.TempDir(), "images")
	l := NewLocalizer(Config{
		Dir:        imagesDir,
		PublicPath: "/images",
		Prefixes:   []string{srv.URL + "/"},
	}, discardLogger())
	return l, postsDir, imagesDir
}

func TestRun_DownloadsAndRewrites(t *testing.T) {
	srv, requested := imageServer(t)
	l, postsDir, imagesDir := testLocalizer(t, srv)

	remote := srv.URL + "/assets/pic.png"
	post := "---\nnotion_id: p1\n---\n\nText\n\n![Image](" + remote + ")\n"
	path := filepath.Join(postsDir, "2024-01-10-post.md")
	if err := os.WriteFile(path, []byte(post), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := l.Run(postsDir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(*requested) != 1 || (*requested)[0] != "/assets/pic.png" {
		t.Errorf("requested = %v", *requested)
	}

	data, _ := os.ReadFile(path)
	text := string(data)
	if strings.Contains(text, remote) {
		t.Errorf("remote link not rewritten:\n%s", text)
	}
	if !strings.Contains(text, "![Image](/images/2024-01-10-post-") || !strings.Contains(text, ".png)") {
		t.Errorf("local link missing:\n%s", text)
	}

	entries, err := os.ReadDir(imagesDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("images dir = %v, %v", entries, err)
	}
	img, _ := os.ReadFile(filepath.Join(imagesDir, entries[0].Name()))
	if string(img) != "png-bytes" {
		t.Errorf("image content = %q", img)
	}
}

func TestRun_Idempotent(t *testing.T) {
	srv, requested := imageServer(t)
	l, postsDir, _ := testLocalizer(t, srv)

	remote := srv.URL + "/a.png"
	path := filepath.Join(postsDir, "post.md")
	_ = os.WriteFile(path, []byte("![Image]("+remote+")\n"), 0o644)

	if err := l.Run(postsDir); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := l.Run(postsDir); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(*requested) != 1 {
		t.Errorf("downloads = %d, want 1 (second pass must be a no-op)", len(*requested))
	}
}

func TestRun_IgnoresForeignHosts(t *testing.T) {
	srv, requested := imageServer(t)
	l, postsDir, _ := testLocalizer(t, srv)

	post := "![Image](https://elsewhere.example/pic.png)\n"
	path := filepath.Join(postsDir, "post.md")
	_ = os.WriteFile(path, []byte(post), 0o644)

	if err := l.Run(postsDir); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*requested) != 0 {
		t.Errorf("no downloads expected, got %v", *requested)
	}
	data, _ := os.ReadFile(path)
	if string(data) != post {
		t.Errorf("file must be untouched:\n%s", data)
	}
}

func TestLocalizeFile_DownloadFailureKeepsLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	postsDir := t.TempDir()
	l := NewLocalizer(Config{
		Dir:      filepath.Join(t.TempDir(), "images"),
		Prefixes: []string{srv.URL + "/"},
	}, discardLogger())

	remote := srv.URL + "/missing.png"
	post := "![Image](" + remote + ")\n"
	_ = os.WriteFile(filepath.Join(postsDir, "post.md"), []byte(post), 0o644)

	store, err := storage.NewFS(postsDir)
	if err != nil {
		t.Fatal(err)
	}
	changed, err := l.LocalizeFile(store, "post.md")
	if err != nil {
		t.Fatalf("LocalizeFile: %v", err)
	}
	if changed {
		t.Error("file must not change when every download fails")
	}
	data, _ := os.ReadFile(filepath.Join(postsDir, "post.md"))
	if !strings.Contains(string(data), remote) {
		t.Errorf("original link lost:\n%s", data)
	}
}

func TestImageLinks_Dedup(t *testing.T) {
	src := []byte("![a](https://h/x.png)\n\n![b](https://h/x.png)\n\n![c](https://h/y.jpg)\n")
	links := imageLinks(src, []string{"https://h/"})
	if len(links) != 2 || links[0] != "https://h/x.png" || links[1] != "https://h/y.jpg" {
		t.Errorf("links = %v", links)
	}
}

func TestLocalName(t *testing.T) {
	a := localName("post", "https://h/a.jpg")
	if !strings.HasPrefix(a, "post-") || !strings.HasSuffix(a, ".jpg") {
		t.Errorf("name = %q", a)
	}
	// No extension falls back to .png.
	b := localName("post", "https://h/raw")
	if !strings.HasSuffix(b, ".png") {
		t.Errorf("name = %q", b)
	}
	// Same URL, same name; different URL, different name.
	if localName("post", "https://h/a.jpg") != a {
		t.Error("names must be stable")
	}
	if localName("post", "https://h/b.jpg") == a {
		t.Error("names must differ per URL")
	}
}
