// Package filesystem is the file-system boundary of the cleaner. Every
// destructive operation goes through FileSystem so the engine can be
// exercised against fakes.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileSystem is the set of per-path operations the cleaning engine needs.
// Failures are reported as errors and handled by the caller; none of the
// operations take a context because an in-flight action must run to
// completion.
type FileSystem interface {
	Exists(path string) bool
	Size(path string) (int64, error)
	LinkCount(path string) (int, error)
	Delete(path string) error
	Rename(oldPath, newPath string) error
	Copy(src, dst string) error
	MkdirAll(path string) error
	RemoveDir(path string) error
	// List returns the names (not paths) of the subdirectories and files
	// directly inside dir, each sorted.
	List(dir string) (dirs, files []string, err error)
}

// OS implements FileSystem on the local operating system.
type OS struct{}

var _ FileSystem = OS{}

// Exists reports whether anything is present at path.
func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the size in bytes of the file at path.
func (OS) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// LinkCount returns the number of hard links to the file at path.
func (OS) LinkCount(path string) (int, error) {
	return linkCount(path)
}

// Delete removes a single file.
func (OS) Delete(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return os.Remove(path)
}

// Rename moves oldPath to newPath. It does not fall back to copying.
func (OS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Copy copies the file at src to dst, flushing dst to disk.
func (OS) Copy(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// MkdirAll creates path and any missing parents.
func (OS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755) //nolint:gosec // G301: media folders must stay readable by the media center
}

// RemoveDir removes an empty directory.
func (OS) RemoveDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return os.Remove(path)
}

// List returns the subdirectory and file names directly inside dir.
func (OS) List(dir string) ([]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var dirs, files []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(dirs)
	sort.Strings(files)
	return dirs, files, nil
}

// illegalChars matches runs of characters that are not allowed in folder
// names on at least one supported platform.
var illegalChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// LegalName replaces every run of \ / : * ? " < > | in name with a single
// underscore so it can be used as a folder name. A name made only of dots
// becomes "_".
func LegalName(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	if name != "" && strings.Trim(name, ".") == "" {
		return "_"
	}
	return name
}

// IsNotExist reports whether err says a path is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Ext returns the extension of name including the leading dot, or "" for
// names without one. Dot files such as ".hidden" have no extension.
func Ext(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}
