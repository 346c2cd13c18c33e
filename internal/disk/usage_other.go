//go:build !linux && !darwin

package disk

import "errors"

func usage(string) (uint64, uint64, error) {
	return 0, 0, errors.New("free space is not supported on this platform")
}
