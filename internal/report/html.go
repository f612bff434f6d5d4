package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// Markers for the script line embedding the report JSON. MinKNOW has
// shipped two variants: the newer one assigns to reportDataJson and
// terminates with a semicolon, the older one assigns to reportData
// with no terminator.
const (
	markerReportDataJSON = "const reportDataJson = "
	markerReportData     = "const reportData="
)

// sectionItem is one entry of an HTML report section, an ordered list
// of title/value pairs.
type sectionItem struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// htmlReportData is the subset of the embedded JSON document that
// carries basecalling metadata.
type htmlReportData struct {
	RunSetup         []sectionItem `json:"run_setup"`
	RunSettings      []sectionItem `json:"run_settings"`
	SoftwareVersions []sectionItem `json:"software_versions"`
}

// extractEmbeddedJSON scans an HTML report line by line for the
// script assignment embedding the report JSON and decodes it.
func extractEmbeddedJSON(path string) (*htmlReportData, error) {
	const op = errors.Op("report.extractEmbeddedJSON")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	var fragment string
	found := false
	scanner := bufio.NewScanner(f)
	// The embedded JSON is a single line that can run to megabytes.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, markerReportDataJSON+"{") {
			fragment = strings.TrimSuffix(line[len(markerReportDataJSON):], ";")
			found = true
			break
		}
		if strings.HasPrefix(line, markerReportData+"{") {
			fragment = line[len(markerReportData):]
			found = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(op, errors.KindIO, fmt.Sprintf("%s: reading report", path), err)
	}
	if !found {
		return nil, errors.E(op, errors.KindParse,
			fmt.Sprintf("%s: unable to extract JSON data", path))
	}

	var data htmlReportData
	if err := json.Unmarshal([]byte(fragment), &data); err != nil {
		return nil, errors.E(op, errors.KindParse,
			fmt.Sprintf("%s: embedded JSON", path), err)
	}
	return &data, nil
}

// sectionMap converts a section's title/value list into a lookup
// mapping. Titles are normalised to keys: lower case, spaces and
// hyphens become underscores, periods are dropped (so "Pore scan
// freq." becomes "pore_scan_freq").
func sectionMap(items []sectionItem) map[string]string {
	section := make(map[string]string, len(items))
	for _, item := range items {
		key := strings.ToLower(item.Title)
		key = strings.ReplaceAll(key, " ", "_")
		key = strings.ReplaceAll(key, "-", "_")
		key = strings.ReplaceAll(key, ".", "")
		section[key] = item.Value
	}
	return section
}

// loadFromHTML populates metadata from an HTML report: flow cell
// identity and kit from the run setup section, basecalling settings
// from the run settings section, and the software version table.
func (m *Metadata) loadFromHTML(path string) error {
	data, err := extractEmbeddedJSON(path)
	if err != nil {
		return err
	}

	setup := sectionMap(data.RunSetup)
	setIfUnset(&m.FlowCellID, lookup(setup, "flow_cell_id"))
	setIfUnset(&m.FlowCellType, lookup(setup, "flow_cell_type"))
	setIfUnset(&m.Kit, lookup(setup, "kit_type"))

	settings := sectionMap(data.RunSettings)
	setIfUnset(&m.Basecalling, lookup(settings, "basecalling"))
	setIfUnset(&m.ModifiedBasecalling, lookup(settings, "modified_basecalling"))
	if m.ModifiedBasecalling != nil && *m.ModifiedBasecalling == "On" {
		// The modification description key varies across versions.
		setIfUnset(&m.Modifications,
			lookupFirst(settings, "modifications", "modified_base_context"))
	}
	setIfUnset(&m.TrimBarcodes, lookup(settings, "trim_barcodes"))

	if m.SoftwareVersions == nil && data.SoftwareVersions != nil {
		m.SoftwareVersions = sectionMap(data.SoftwareVersions)
	}
	return nil
}
