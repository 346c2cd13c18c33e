package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces the contents of target without ever leaving a
// truncated file behind. Data goes to <target>.tmp first; the old file is
// parked at <target>.bak until the new one is in place.
func WriteFileAtomic(target string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmpPath := target + ".tmp"
	bakPath := target + ".bak"

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	hadTarget := false
	if _, err := os.Stat(target); err == nil {
		if err := renameOrCopy(target, bakPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up existing file: %w", err)
		}
		hadTarget = true
	}

	if err := renameOrCopy(tmpPath, target); err != nil {
		if hadTarget {
			_ = renameOrCopy(bakPath, target)
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", target, err)
	}

	_ = os.Remove(bakPath)
	return nil
}

// renameOrCopy renames oldPath to newPath, copying and deleting when the
// rename crosses devices.
func renameOrCopy(oldPath, newPath string) error {
	err := os.Rename(oldPath, newPath)
	if err == nil {
		return nil
	}
	if copyErr := copyFile(oldPath, newPath); copyErr != nil {
		return fmt.Errorf("copy fallback: %w (rename error: %w)", copyErr, err)
	}
	_ = os.Remove(oldPath)
	return nil
}

// copyFile copies src to dst and syncs dst before closing it.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: paths come from the media library
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst) //nolint:gosec // G304: paths come from the media library
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
