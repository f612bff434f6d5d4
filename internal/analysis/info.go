// Package analysis creates and manages the analysis directory
// associated with a PromethION project: a place holding normalised
// metadata (project info, sample sheet, flow cell summary) plus
// copies of the vendor reports.
package analysis

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// unsetMarker is written for project info fields with no value.
const unsetMarker = "."

// projectInfoFields fixes the on-disk field order of project.info.
var projectInfoFields = []string{
	"name",
	"id",
	"datestamp",
	"platform",
	"user",
	"PI",
	"application",
	"organism",
	"data_dir",
	"comments",
}

// ProjectInfo holds top-level metadata about a project, persisted as
// ordered tab-delimited key/value lines. Empty fields mean "unset"
// and round-trip as the unset marker.
type ProjectInfo struct {
	Name        string
	ID          string
	Datestamp   string
	Platform    string
	User        string
	PI          string
	Application string
	Organism    string
	DataDir     string
	Comments    string
}

func (pi *ProjectInfo) fieldRef(key string) *string {
	switch key {
	case "name":
		return &pi.Name
	case "id":
		return &pi.ID
	case "datestamp":
		return &pi.Datestamp
	case "platform":
		return &pi.Platform
	case "user":
		return &pi.User
	case "PI":
		return &pi.PI
	case "application":
		return &pi.Application
	case "organism":
		return &pi.Organism
	case "data_dir":
		return &pi.DataDir
	case "comments":
		return &pi.Comments
	}
	return nil
}

// Load reads project info from path.
func (pi *ProjectInfo) Load(path string) error {
	const op = errors.Op("analysis.ProjectInfo.Load")
	f, err := os.Open(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		field := pi.fieldRef(key)
		if field == nil {
			continue
		}
		if value == unsetMarker {
			value = ""
		}
		*field = value
	}
	return errors.Wrap(op, scanner.Err())
}

// Save writes project info to path in the fixed field order.
func (pi *ProjectInfo) Save(path string) error {
	const op = errors.Op("analysis.ProjectInfo.Save")
	var b strings.Builder
	for _, key := range projectInfoFields {
		value := *pi.fieldRef(key)
		if value == "" {
			value = unsetMarker
		}
		fmt.Fprintf(&b, "%s\t%s\n", key, value)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}

// Sample associates a sample name with its barcode and flow cell IDs.
type Sample struct {
	Name     string
	Barcode  string
	FlowCell string
}

// SamplesInfo stores per-sample metadata, persisted as a TSV file
// with a commented header line. Entries are kept sorted by sample
// name (alphabetic prefix, then numeric index).
type SamplesInfo struct {
	samples []Sample
}

// Samples returns the entries in sorted order.
func (si *SamplesInfo) Samples() []Sample {
	return si.samples
}

// Len returns the number of samples.
func (si *SamplesInfo) Len() int {
	return len(si.samples)
}

// AddSample adds an entry; the sample name must be unique.
func (si *SamplesInfo) AddSample(name, barcode, flowCell string) error {
	const op = errors.Op("analysis.SamplesInfo.AddSample")
	for _, s := range si.samples {
		if s.Name == name {
			return errors.E(op, fmt.Sprintf("%q: sample already present", name))
		}
	}
	si.samples = append(si.samples, Sample{Name: name, Barcode: barcode, FlowCell: flowCell})
	si.sort()
	return nil
}

// UpdateSample updates the barcode and/or flow cell of an existing
// sample; empty arguments leave the current value alone.
func (si *SamplesInfo) UpdateSample(name, barcode, flowCell string) error {
	const op = errors.Op("analysis.SamplesInfo.UpdateSample")
	for i := range si.samples {
		if si.samples[i].Name != name {
			continue
		}
		if barcode != "" {
			si.samples[i].Barcode = barcode
		}
		if flowCell != "" {
			si.samples[i].FlowCell = flowCell
		}
		return nil
	}
	return errors.E(op, fmt.Sprintf("%q: sample not found", name))
}

func (si *SamplesInfo) sort() {
	sort.SliceStable(si.samples, func(i, j int) bool {
		pi, ni := splitSampleName(si.samples[i].Name)
		pj, nj := splitSampleName(si.samples[j].Name)
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

var sampleIndexRe = regexp.MustCompile(`^(.*?)([0-9]+)$`)

// splitSampleName splits a sample name into its alphabetic prefix and
// trailing numeric index, so "PG2" sorts before "PG10".
func splitSampleName(name string) (string, int) {
	m := sampleIndexRe.FindStringSubmatch(name)
	if m == nil {
		return name, 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return name, 0
	}
	return m[1], n
}

// Load reads samples from a TSV file.
func (si *SamplesInfo) Load(path string) error {
	const op = errors.Op("analysis.SamplesInfo.Load")
	f, err := os.Open(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	si.samples = nil
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		si.samples = append(si.samples, Sample{
			Name:     fields[0],
			Barcode:  fields[1],
			FlowCell: fields[2],
		})
	}
	si.sort()
	return errors.Wrap(op, scanner.Err())
}

// Save writes samples to a TSV file with a commented header.
func (si *SamplesInfo) Save(path string) error {
	const op = errors.Op("analysis.SamplesInfo.Save")
	var b strings.Builder
	b.WriteString("#Sample\tBarcode\tFlowcell\n")
	for _, s := range si.samples {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", s.Name, s.Barcode, s.FlowCell)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}

// LoadSamplesCSV reads sample information from a CSV file with an
// initial header line (ignored) followed by lines of either
// "sample,barcode,flowcell" or "sample,barcode"; a missing flow cell
// is carried forward from the previous line.
func LoadSamplesCSV(path string) ([]Sample, error) {
	const op = errors.Op("analysis.LoadSamplesCSV")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	defer f.Close()

	var samples []Sample
	var prevFlowCell string
	first := true
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, errors.E(op, errors.KindParse,
				fmt.Sprintf("%s: bad samples line %q", path, line))
		}
		sample := Sample{Name: fields[0], Barcode: fields[1]}
		if len(fields) > 2 && fields[2] != "" {
			sample.FlowCell = fields[2]
			prevFlowCell = fields[2]
		} else {
			sample.FlowCell = prevFlowCell
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	return samples, nil
}
