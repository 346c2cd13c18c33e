//go:build unix

package filesystem

import "golang.org/x/sys/unix"

func linkCount(path string) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, err
	}
	return int(st.Nlink), nil //nolint:gosec // G115: link counts fit in int
}
