package cleaner

import (
	"path/filepath"
	"testing"

	"github.com/sydlexius/janitor/internal/filesystem"
	"github.com/sydlexius/janitor/internal/stack"
)

func TestSweep_DeletePlain(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "Foo.mkv")
	for _, f := range []string{"Foo.nfo", "Foo.en.srt", "Foo-poster.jpg", "Bar.nfo"} {
		writeFile(t, filepath.Join(dir, f), 1)
	}

	NewSweeper(filesystem.OS{}, true, testLogger()).Sweep(video, "")

	for _, f := range []string{"Foo.nfo", "Foo.en.srt", "Foo-poster.jpg"} {
		if exists(filepath.Join(dir, f)) {
			t.Errorf("%s not swept", f)
		}
	}
	if !exists(filepath.Join(dir, "Bar.nfo")) {
		t.Error("unrelated file swept")
	}
}

func TestSweep_StackedPrefix(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "Movie.cd1.avi")
	b := filepath.Join(dir, "Movie.cd2.avi")
	writeFile(t, a, 1)
	writeFile(t, b, 1)
	writeFile(t, filepath.Join(dir, "Movie.nfo"), 1)
	writeFile(t, filepath.Join(dir, "Other.nfo"), 1)

	NewSweeper(filesystem.OS{}, true, testLogger()).Sweep(stack.Join([]string{a, b}), "")

	if exists(filepath.Join(dir, "Movie.nfo")) {
		t.Error("Movie.nfo not swept")
	}
	if !exists(a) || !exists(b) {
		t.Error("stack elements must be left to the engine")
	}
	if !exists(filepath.Join(dir, "Other.nfo")) {
		t.Error("unrelated file swept")
	}
}

func TestSweep_Move(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "library")
	dest := filepath.Join(root, "holding")
	writeFile(t, filepath.Join(dir, "Foo.nfo"), 1)
	writeFile(t, filepath.Join(dir, "Foo.srt"), 1)
	writeFile(t, filepath.Join(dest, ".keep"), 0)

	NewSweeper(filesystem.OS{}, true, testLogger()).Sweep(filepath.Join(dir, "Foo.mkv"), dest)

	for _, f := range []string{"Foo.nfo", "Foo.srt"} {
		if exists(filepath.Join(dir, f)) || !exists(filepath.Join(dest, f)) {
			t.Errorf("%s not moved", f)
		}
	}
}

func TestSweep_MoveFallsBackToCopy(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "library")
	dest := filepath.Join(root, "holding")
	writeFile(t, filepath.Join(dir, "Foo.nfo"), 1)
	writeFile(t, filepath.Join(dest, ".keep"), 0)

	NewSweeper(&fakeFS{failRename: true}, true, testLogger()).Sweep(filepath.Join(dir, "Foo.mkv"), dest)

	if exists(filepath.Join(dir, "Foo.nfo")) || !exists(filepath.Join(dest, "Foo.nfo")) {
		t.Error("Foo.nfo not relocated")
	}
}

func TestSweep_Disabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Foo.nfo"), 1)

	NewSweeper(filesystem.OS{}, false, testLogger()).Sweep(filepath.Join(dir, "Foo.mkv"), "")

	if !exists(filepath.Join(dir, "Foo.nfo")) {
		t.Error("disabled sweeper deleted a file")
	}
}

func TestSweep_EmptyPrefixDoesNothing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "cd1.avi")
	b := filepath.Join(dir, "cd2.avi")
	writeFile(t, filepath.Join(dir, "anything.nfo"), 1)

	NewSweeper(filesystem.OS{}, true, testLogger()).Sweep(stack.Join([]string{a, b}), "")

	if !exists(filepath.Join(dir, "anything.nfo")) {
		t.Error("empty prefix swept the whole folder")
	}
}
