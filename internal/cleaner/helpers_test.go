package cleaner

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/settings"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFS is the real file system with injectable failures.
type fakeFS struct {
	filesystem.OS

	hidden      map[string]bool // paths Exists reports as missing
	failMkdirAt int             // fail the nth MkdirAll call (1-based)
	mkdirCalls  int
	failDelete  map[string]bool
	failRename  bool
	failCopy    bool
	links       map[string]int
}

func (f *fakeFS) Exists(path string) bool {
	if f.hidden[path] {
		return false
	}
	return f.OS.Exists(path)
}

func (f *fakeFS) MkdirAll(path string) error {
	f.mkdirCalls++
	if f.failMkdirAt > 0 && f.mkdirCalls >= f.failMkdirAt {
		return errors.New("permission denied")
	}
	return f.OS.MkdirAll(path)
}

func (f *fakeFS) Delete(path string) error {
	if f.failDelete[path] {
		return errors.New("device busy")
	}
	return f.OS.Delete(path)
}

func (f *fakeFS) Rename(oldPath, newPath string) error {
	if f.failRename {
		return errors.New("invalid cross-device link")
	}
	return f.OS.Rename(oldPath, newPath)
}

func (f *fakeFS) Copy(src, dst string) error {
	if f.failCopy {
		return errors.New("no space left on device")
	}
	return f.OS.Copy(src, dst)
}

func (f *fakeFS) LinkCount(path string) (int, error) {
	if n, ok := f.links[path]; ok {
		return n, nil
	}
	return f.OS.LinkCount(path)
}

type fakePrompter struct {
	confirm       bool
	confirmCalls  int
	failures      []string
	failureErrors []error
}

func (p *fakePrompter) ConfirmDestinationSetup() bool {
	p.confirmCalls++
	return p.confirm
}

func (p *fakePrompter) ReportMoveFailure(title string, err error) {
	p.failures = append(p.failures, title)
	p.failureErrors = append(p.failureErrors, err)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Size()
}

func deleteSettings() settings.Settings {
	s := settings.Defaults()
	s.CleaningType = settings.Delete
	return s
}

func moveSettings(holding string) settings.Settings {
	s := settings.Defaults()
	s.CleaningType = settings.Move
	s.HoldingFolder = holding
	return s
}

