// Package stack handles Kodi stacked paths. A stacked path joins the
// physical files of one logical video (for example a two-disc rip) as
// "stack://a.avi , b.avi", doubling any literal comma inside an element.
package stack

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	scheme    = "stack://"
	separator = " , "
)

// trailingToken matches a stacking indicator left at the end of the common
// prefix of a stack's basenames, e.g. "Movie.cd" or "Movie - part".
var trailingToken = regexp.MustCompile(`(?:^|[ _.-]+)(?:part|pt|cd|dvd|disk|disc)[ _.-]*$`)

// IsStacked reports whether path uses the stack:// convention.
func IsStacked(path string) bool {
	return strings.HasPrefix(path, scheme)
}

// Split returns the element paths of a stacked path. A plain path yields a
// single-element slice containing the path itself.
func Split(path string) []string {
	if !IsStacked(path) {
		return []string{path}
	}
	parts := strings.Split(strings.TrimPrefix(path, scheme), separator)
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, ",,", ",")
	}
	return parts
}

// Join builds a stacked path from its elements. A single element is
// returned unchanged so that Split(Join(paths)) always equals paths.
func Join(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	escaped := make([]string, len(paths))
	for i, p := range paths {
		escaped[i] = strings.ReplaceAll(p, ",", ",,")
	}
	return scheme + strings.Join(escaped, separator)
}

// Dir returns the directory holding the video. All elements of a stack
// share a directory, so the first one is used.
func Dir(path string) string {
	return filepath.Dir(Split(path)[0])
}

// CommonPrefix returns the longest common prefix of the elements'
// basenames with any trailing stacking token and separators removed.
func CommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := filepath.Base(paths[0])
	for _, p := range paths[1:] {
		name := filepath.Base(p)
		n := 0
		for n < len(prefix) && n < len(name) && prefix[n] == name[n] {
			n++
		}
		prefix = prefix[:n]
	}
	return trailingToken.ReplaceAllString(prefix, "")
}

// RelatedPrefix returns the name prefix shared by a video and its sidecar
// files: the stack's common prefix, or the basename without extension.
func RelatedPrefix(path string) string {
	if IsStacked(path) {
		return CommonPrefix(Split(path))
	}
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
