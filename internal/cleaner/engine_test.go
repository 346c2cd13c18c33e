package cleaner

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/stack"
)

func newEngine(fs filesystem.FileSystem, rc RunContext) *Engine {
	rc.FS = fs
	rc.Logger = testLogger()
	return NewEngine(rc)
}

func TestDelete_Plain(t *testing.T) {
	p := filepath.Join(t.TempDir(), "Foo.mkv")
	writeFile(t, p, 10)

	res, err := newEngine(filesystem.OS{}, RunContext{Settings: deleteSettings()}).Act(p, "Foo")
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !res.Succeeded || !slices.Equal(res.Affected, []string{p}) {
		t.Errorf("result = %+v", res)
	}
	if exists(p) {
		t.Error("file still exists")
	}
}

func TestDelete_AnyElementIsEnough(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "Movie cd1.avi")
	b := filepath.Join(dir, "Movie cd2.avi")
	writeFile(t, a, 10)

	res, err := newEngine(filesystem.OS{}, RunContext{Settings: deleteSettings()}).Act(stack.Join([]string{a, b}), "Movie")
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !res.Succeeded {
		t.Fatal("expected success when one element was deleted")
	}
	if !slices.Equal(res.Affected, []string{a, b}) {
		t.Errorf("affected = %v, want both stack paths", res.Affected)
	}
	if exists(a) {
		t.Error("first element still exists")
	}
}

func TestDelete_NothingDeleted(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "Foo.mkv")
	writeFile(t, p, 10)
	fs := &fakeFS{failDelete: map[string]bool{p: true}}

	res, err := newEngine(fs, RunContext{Settings: deleteSettings()}).Act(p, "Foo")
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if res.Succeeded || len(res.Affected) != 0 {
		t.Errorf("result = %+v, want failure", res)
	}
}

func TestDelete_SweepsAndReaps(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Foo (2020)")
	p := filepath.Join(dir, "Foo.mkv")
	writeFile(t, p, 10)
	writeFile(t, filepath.Join(dir, "Foo.en.srt"), 1)
	writeFile(t, filepath.Join(dir, "folder.jpg"), 1)

	s := deleteSettings()
	s.CleanRelated = true
	s.DeleteFolders = true
	if _, err := newEngine(filesystem.OS{}, RunContext{Settings: s}).Act(p, "Foo"); err != nil {
		t.Fatal(err)
	}
	if exists(dir) {
		t.Error("folder should have been removed: subtitle swept, jpg ignored")
	}
}

func TestMove_PerTitleFolder(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	src := filepath.Join(root, "library", "Foo", "Foo.mkv")
	writeFile(t, src, 10)
	writeFile(t, filepath.Join(root, "library", "Foo", "Foo.nfo"), 1)

	s := moveSettings(holding)
	s.CleanRelated = true
	s.DeleteFolders = true
	res, err := newEngine(filesystem.OS{}, RunContext{Settings: s}).Act(src, `Foo: The "Movie"?`)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	dest := filepath.Join(holding, "Foo_ The _Movie_")
	if !res.Succeeded || res.Destination != dest {
		t.Fatalf("result = %+v", res)
	}
	if !exists(filepath.Join(dest, "Foo.mkv")) || !exists(filepath.Join(dest, "Foo.nfo")) {
		t.Error("video or sidecar missing at destination")
	}
	if exists(filepath.Join(root, "library", "Foo")) {
		t.Error("source folder not reaped")
	}
}

func TestMove_FlatHoldingFolder(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	src := filepath.Join(root, "Foo.mkv")
	writeFile(t, src, 10)

	s := moveSettings(holding)
	s.CreateSubdirs = false
	if _, err := newEngine(filesystem.OS{}, RunContext{Settings: s}).Act(src, "Foo"); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !exists(filepath.Join(holding, "Foo.mkv")) {
		t.Error("file not moved into holding folder")
	}
}

func TestMove_NoDestinationAborts(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Foo.mkv")
	writeFile(t, src, 10)

	for _, confirm := range []bool{true, false} {
		p := &fakePrompter{confirm: confirm}
		_, err := newEngine(filesystem.OS{}, RunContext{Settings: moveSettings(""), Prompter: p}).Act(src, "Foo")
		if !errors.Is(err, ErrNoDestination) {
			t.Errorf("confirm=%v: err = %v, want ErrNoDestination", confirm, err)
		}
		if p.confirmCalls != 1 {
			t.Errorf("confirm=%v: prompter asked %d times", confirm, p.confirmCalls)
		}
	}
	if !exists(src) {
		t.Error("source touched without a destination")
	}
}

func TestMove_StrictWhenDestinationCreationFails(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	dir := filepath.Join(root, "library")
	a := filepath.Join(dir, "Movie cd1.avi")
	b := filepath.Join(dir, "Movie cd2.avi")
	writeFile(t, a, 10)
	writeFile(t, b, 10)
	writeFile(t, filepath.Join(dir, "Movie.nfo"), 1)

	dest := filepath.Join(holding, "Movie")
	// The destination "disappears" after the first element, so the second
	// element has to create it again and fails.
	fs := &fakeFS{hidden: map[string]bool{dest: true}, failMkdirAt: 2}

	s := moveSettings(holding)
	s.CleanRelated = true
	s.DeleteFolders = true
	s.IgnoreExtensions = ".nfo, .avi"
	res, err := newEngine(fs, RunContext{Settings: s}).Act(stack.Join([]string{a, b}), "Movie")
	if !errors.Is(err, ErrDestinationUnavailable) {
		t.Fatalf("err = %v, want ErrDestinationUnavailable", err)
	}
	if res.Succeeded {
		t.Error("partial move reported as success")
	}
	if !exists(filepath.Join(dest, "Movie cd1.avi")) {
		t.Error("first element should have been moved")
	}
	if !exists(b) {
		t.Error("second element should still be in place")
	}
	if !exists(filepath.Join(dir, "Movie.nfo")) {
		t.Error("related files swept after a failed move")
	}
	if !exists(dir) {
		t.Error("source folder reaped after a failed move")
	}
}

func TestMove_MissingElementFails(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "Movie cd1.avi")
	writeFile(t, a, 10)

	_, err := newEngine(filesystem.OS{}, RunContext{Settings: moveSettings(filepath.Join(root, "holding"))}).
		Act(stack.Join([]string{a, filepath.Join(root, "Movie cd2.avi")}), "Movie")
	if !errors.Is(err, ErrIncompleteMove) {
		t.Fatalf("err = %v, want ErrIncompleteMove", err)
	}
}

func TestMove_Collision(t *testing.T) {
	tests := []struct {
		name        string
		srcSize     int
		dstSize     int
		wantDstSize int64
	}{
		{"larger source replaces destination", 100, 50, 100},
		{"smaller source is discarded", 50, 100, 100},
		{"equal source is discarded", 70, 70, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			holding := filepath.Join(root, "holding")
			src := filepath.Join(root, "library", "Foo.mkv")
			dst := filepath.Join(holding, "Foo.mkv")
			writeFile(t, src, tt.srcSize)
			writeFile(t, dst, tt.dstSize)

			s := moveSettings(holding)
			s.CreateSubdirs = false
			res, err := newEngine(filesystem.OS{}, RunContext{Settings: s}).Act(src, "Foo")
			if err != nil {
				t.Fatalf("Act: %v", err)
			}
			if !res.Succeeded {
				t.Fatal("collision should count as moved")
			}
			if exists(src) {
				t.Error("source still exists")
			}
			if got := fileSize(t, dst); got != tt.wantDstSize {
				t.Errorf("destination size = %d, want %d", got, tt.wantDstSize)
			}
		})
	}
}

func TestMove_CollisionDeleteFailureIsHard(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	src := filepath.Join(root, "Foo.mkv")
	dst := filepath.Join(holding, "Foo.mkv")
	writeFile(t, src, 100)
	writeFile(t, dst, 50)
	fs := &fakeFS{failDelete: map[string]bool{dst: true}}

	s := moveSettings(holding)
	s.CreateSubdirs = false
	if _, err := newEngine(fs, RunContext{Settings: s}).Act(src, "Foo"); !errors.Is(err, ErrCollision) {
		t.Fatalf("err = %v, want ErrCollision", err)
	}
}

func TestMove_CopyFallback(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	src := filepath.Join(root, "Foo.mkv")
	writeFile(t, src, 10)

	s := moveSettings(holding)
	s.CreateSubdirs = false
	res, err := newEngine(&fakeFS{failRename: true}, RunContext{Settings: s}).Act(src, "Foo")
	if err != nil || !res.Succeeded {
		t.Fatalf("Act = %+v, %v", res, err)
	}
	if exists(src) || !exists(filepath.Join(holding, "Foo.mkv")) {
		t.Error("copy fallback did not relocate the file")
	}
}

func TestMove_CopyFailureIsHard(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Foo.mkv")
	writeFile(t, src, 10)

	s := moveSettings(filepath.Join(root, "holding"))
	_, err := newEngine(&fakeFS{failRename: true, failCopy: true}, RunContext{Settings: s}).Act(src, "Foo")
	if !errors.Is(err, ErrCopyFailed) {
		t.Fatalf("err = %v, want ErrCopyFailed", err)
	}
	if !exists(src) {
		t.Error("source lost after failed copy")
	}
}

func TestMove_OrphanedSourceStillCounts(t *testing.T) {
	root := t.TempDir()
	holding := filepath.Join(root, "holding")
	src := filepath.Join(root, "Foo.mkv")
	writeFile(t, src, 10)
	fs := &fakeFS{failRename: true, failDelete: map[string]bool{src: true}}

	s := moveSettings(holding)
	s.CreateSubdirs = false
	res, err := newEngine(fs, RunContext{Settings: s}).Act(src, "Foo")
	if err != nil || !res.Succeeded {
		t.Fatalf("Act = %+v, %v", res, err)
	}
	if !exists(src) {
		t.Error("expected the undeletable source to remain")
	}
	if _, err := os.Stat(filepath.Join(holding, "Foo.mkv")); err != nil {
		t.Errorf("copy missing at destination: %v", err)
	}
}
