// Package report extracts basecalling metadata from MinKNOW report
// files found in PromethION flow cell and basecalls directories.
//
// Two report formats are handled: HTML reports carrying a JSON
// document embedded in a script literal, and standalone JSON reports.
// The same logical fields appear under different key names and nesting
// depending on the MinKNOW version that produced the report, so field
// lookups are tolerant: a key missing from one schema version leaves
// the field unset rather than failing the parse.
package report

import (
	"fmt"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// Metadata holds data about a set of basecalls, populated from at
// most one HTML and one JSON report. Nil fields mean "not reported"
// as distinct from an empty value, so downstream formatting can tell
// "not applicable" from "missing".
type Metadata struct {
	FlowCellID          *string
	FlowCellType        *string
	Kit                 *string
	Basecalling         *string
	ModifiedBasecalling *string // "On" or "Off"; nil when not reported
	Modifications       *string // only set when modified basecalling is "On"
	TrimBarcodes        *string
	SoftwareVersions    map[string]string
	BasecallingModel    *string
	BasecallingConfig   *string
}

// LoadFromReport populates fields from a report file, dispatching on
// the file extension. Fields already set by an earlier report are
// never overwritten, so an HTML/JSON report pair can be merged in
// either order with the same result.
func (m *Metadata) LoadFromReport(path string) error {
	const op = errors.Op("report.LoadFromReport")
	switch {
	case strings.HasSuffix(path, ".html"):
		return m.loadFromHTML(path)
	case strings.HasSuffix(path, ".json"):
		return m.loadFromJSON(path)
	default:
		return errors.E(op, errors.KindFormat,
			fmt.Sprintf("%s: unsupported report file type", path))
	}
}

// setIfUnset assigns value to *field only when the field is still nil.
func setIfUnset(field **string, value *string) {
	if *field == nil && value != nil {
		*field = value
	}
}

// lookup returns the value for key from a normalised section mapping,
// or nil if the key is absent.
func lookup(section map[string]string, key string) *string {
	if v, ok := section[key]; ok {
		return &v
	}
	return nil
}

// lookupFirst tries candidate keys in order and returns the first hit.
// Schema versions differ only in which keys are present, not in any
// explicit version field, so callers list the known variants.
func lookupFirst(section map[string]string, keys ...string) *string {
	for _, key := range keys {
		if v := lookup(section, key); v != nil {
			return v
		}
	}
	return nil
}
