// Package disk reports free space on the volume holding a path.
package disk

import "log/slog"

// FreePercent returns the percentage of the volume holding path that is
// available to unprivileged users. When the volume cannot be queried it
// returns 100 so that low disk space never triggers a cleaning by mistake.
func FreePercent(path string, logger *slog.Logger) float64 {
	avail, total, err := usage(path)
	if err != nil {
		logger.Warn("could not determine free disk space", slog.String("path", path), slog.Any("error", err))
		return 100
	}
	if total == 0 {
		return 100
	}
	return float64(avail) / float64(total) * 100
}
