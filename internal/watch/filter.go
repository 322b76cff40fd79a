// Package watch provides the event-source side of the conversion pipeline:
// path filtering, change debouncing, and the two interchangeable sources of
// file-change notifications (fsnotify and polling).
package watch

import (
	"path/filepath"
	"strings"
)

// tempPrefixes are filename prefixes used by editors and office suites for
// lock files and in-progress saves.
var tempPrefixes = []string{".~", "~$", "."}

// tempSuffixes are filename suffixes used for incomplete downloads and
// scratch files.
var tempSuffixes = []string{".tmp", ".partial", ".part", ".crdownload"}

// IsCSV reports whether the path has a .csv extension (case-insensitive).
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// IsTempArtifact reports whether the filename looks like an editor lock
// file, an in-progress save, or a partial download. Such files are never
// converted even when they carry a .csv extension.
func IsTempArtifact(path string) bool {
	name := filepath.Base(path)
	for _, p := range tempPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, s := range tempSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// Eligible reports whether a path should enter the conversion pipeline.
func Eligible(path string) bool {
	return IsCSV(path) && !IsTempArtifact(path)
}
