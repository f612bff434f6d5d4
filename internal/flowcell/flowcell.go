// Package flowcell recognises PromethION flow cell naming conventions.
//
// Flow cell data directories are named by MinKNOW as five underscore
// separated tokens, e.g. "20240513_0829_1A_PAW15419_465bb23f":
// an eight digit datestamp, a four digit time, the instrument position
// (digit plus uppercase letter), the flow cell ID and a short hash.
package flowcell

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var nameRe = regexp.MustCompile(`^([0-9]{8})_([0-9]{4})_([0-9][A-Z])_([A-Z]{3}[0-9]+)_([a-z0-9]+)$`)

// IsFlowCellName reports whether name looks like a flow cell
// directory name. Partial matches are rejected.
func IsFlowCellName(name string) bool {
	return nameRe.MatchString(name)
}

// ID extracts the flow cell ID token (e.g. "PAW15419") from a flow
// cell name. Returns "" if the name does not match the convention.
func ID(name string) string {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[4]
}

// Datestamp extracts the datestamp token (e.g. "20240513") from a
// flow cell name. Returns "" if the name does not match the convention.
func Datestamp(name string) string {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// BarcodeDirs returns the sorted names of "barcode*" subdirectories
// of dir. A missing or unreadable directory yields an empty list.
func BarcodeDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var barcodes []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "barcode") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		barcodes = append(barcodes, entry.Name())
	}
	sort.Strings(barcodes)
	return barcodes
}
