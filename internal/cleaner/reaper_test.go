package cleaner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sydlexius/janitor/internal/filesystem"
)

func TestReap_IgnoredExtensions(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		wantRemoved bool
	}{
		{"only ignored files", []string{"movie.nfo", "tvshow.nfo"}, true},
		{"extensionless file", []string{"movie.nfo", "README"}, true},
		{"subtitle keeps folder", []string{"movie.nfo", "movie.srt"}, false},
		{"ignore list is case-insensitive", []string{"MOVIE.NFO"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "Movie")
			for _, f := range tt.files {
				writeFile(t, filepath.Join(dir, f), 1)
			}
			for _, sub := range []string{"extrafanart", "extrathumbs"} {
				if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
					t.Fatal(err)
				}
			}

			r := NewReaper(filesystem.OS{}, true, []string{".nfo"}, testLogger())
			if got := r.Reap(dir); got != tt.wantRemoved {
				t.Errorf("Reap = %v, want %v", got, tt.wantRemoved)
			}
			if exists(dir) == tt.wantRemoved {
				t.Errorf("folder exists = %v after Reap", exists(dir))
			}
			if !tt.wantRemoved {
				for _, f := range tt.files {
					if !exists(filepath.Join(dir, f)) {
						t.Errorf("%s deleted from a folder that was kept", f)
					}
				}
			}
		})
	}
}

func TestReap_Disabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Movie")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if NewReaper(filesystem.OS{}, false, nil, testLogger()).Reap(dir) {
		t.Error("disabled reaper reported removal")
	}
	if !exists(dir) {
		t.Error("disabled reaper removed the folder")
	}
}

func TestReap_NestedNonEmptyKeepsEverything(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Show")
	writeFile(t, filepath.Join(dir, "tvshow.nfo"), 1)
	writeFile(t, filepath.Join(dir, "Season 2", "S02E01.mkv"), 1)

	if NewReaper(filesystem.OS{}, true, []string{".nfo"}, testLogger()).Reap(dir) {
		t.Error("removed a folder holding a video")
	}
	if !exists(filepath.Join(dir, "tvshow.nfo")) {
		t.Error("ignored file deleted although the folder was kept")
	}
}

func TestReap_MissingFolder(t *testing.T) {
	r := NewReaper(filesystem.OS{}, true, nil, testLogger())
	if r.Reap(filepath.Join(t.TempDir(), "gone")) {
		t.Error("reaped a folder that does not exist")
	}
}

func TestReap_DeleteErrorStopsBranch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Movie")
	nfo := filepath.Join(dir, "movie.nfo")
	writeFile(t, nfo, 1)
	fs := &fakeFS{failDelete: map[string]bool{nfo: true}}

	if NewReaper(fs, true, []string{".nfo"}, testLogger()).Reap(dir) {
		t.Error("reported removal despite a delete error")
	}
	if !exists(dir) {
		t.Error("folder removed despite a delete error")
	}
}

func TestReap_VisitsEverySubfolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Show")
	writeFile(t, filepath.Join(dir, "tvshow.nfo"), 1)
	writeFile(t, filepath.Join(dir, "A", "S01E01.mkv"), 1)
	empty := filepath.Join(dir, "B")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	if NewReaper(filesystem.OS{}, true, []string{".nfo"}, testLogger()).Reap(dir) {
		t.Error("removed a folder holding a video")
	}
	if exists(empty) {
		t.Error("empty sibling folder left behind")
	}
	if !exists(filepath.Join(dir, "A", "S01E01.mkv")) || !exists(filepath.Join(dir, "tvshow.nfo")) {
		t.Error("files of a kept folder deleted")
	}
}
