package images

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, l *Localizer, dir string) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Watch(ctx, dir) }()
	// Give the watcher time to register dir before mutating it.
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func TestWatch_NewFileLocalized(t *testing.T) {
	srv, _ := imageServer(t)
	l, postsDir, _ := testLocalizer(t, srv)

	cancel, done := startWatch(t, l, postsDir)
	defer cancel()

	remote := srv.URL + "/pic.png"
	path := filepath.Join(postsDir, "2024-01-10-post.md")
	_ = os.WriteFile(path, []byte("![Image]("+remote+")\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "/images/")
	}, "new file not localized by watcher")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	srv, _ := imageServer(t)
	l, postsDir, _ := testLocalizer(t, srv)

	cancel, _ := startWatch(t, l, postsDir)
	defer cancel()

	subDir := filepath.Join(postsDir, "drafts")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	remote := srv.URL + "/deep.png"
	path := filepath.Join(subDir, "deep.md")
	_ = os.WriteFile(path, []byte("![Image]("+remote+")\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "/images/")
	}, "file in new subdir not localized by watcher")
}

// A burst of writes collapses into one debounced pass; the image is only
// fetched once.
func TestWatch_DebouncedSinglePass(t *testing.T) {
	srv, requested := imageServer(t)
	l, postsDir, _ := testLocalizer(t, srv)

	cancel, _ := startWatch(t, l, postsDir)
	defer cancel()

	remote := srv.URL + "/burst.png"
	path := filepath.Join(postsDir, "post.md")
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(path, []byte("![Image]("+remote+")\n"), 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "/images/")
	}, "burst of writes not localized by watcher")

	if len(*requested) != 1 {
		t.Errorf("downloads = %d, want 1 (url digest keeps repeat passes no-op)", len(*requested))
	}
}
