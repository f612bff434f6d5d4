// Package project discovers flow cell and basecalls directories
// within a PromethION project tree and assembles them into an
// in-memory project model.
//
// Directories are classified purely by filesystem naming conventions:
// a directory owning a "pass" child holds re-basecalled output, a
// directory owning a "pod5" or "*_pass" child is a flow cell data
// directory. Parent pool and run are inferred from path position, not
// read from any file.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
	"github.com/bcfcore/promion/internal/flowcell"
	"github.com/bcfcore/promion/internal/report"
)

// FlowCell represents one flow cell data directory.
type FlowCell struct {
	Path        string
	Name        string
	ID          string
	Datestamp   string
	Pool        string // immediate parent directory name
	Run         string // grandparent directory name; "" when absent
	Pod5        string // path to pod5 or pod5_pass subdir; "" when absent
	BamPass     string
	FastqPass   string
	Reports     []string // report_* file names
	SampleSheet string   // sample_sheet_* file name; "" when absent
	Metadata    report.Metadata
}

// FileTypes lists the data file types present ("pod5", "bam", "fastq").
func (fc *FlowCell) FileTypes() []string {
	var types []string
	if fc.Pod5 != "" {
		types = append(types, "pod5")
	}
	if fc.BamPass != "" {
		types = append(types, "bam")
	}
	if fc.FastqPass != "" {
		types = append(types, "fastq")
	}
	return types
}

// ReportTypes lists the report formats present ("html", "json").
func (fc *FlowCell) ReportTypes() []string {
	return reportTypes(fc.Reports)
}

// HTMLReport returns the path to the first HTML report, or "".
func (fc *FlowCell) HTMLReport() string {
	return reportWithSuffix(fc.Path, fc.Reports, ".html")
}

// JSONReport returns the path to the first JSON report, or "".
func (fc *FlowCell) JSONReport() string {
	return reportWithSuffix(fc.Path, fc.Reports, ".json")
}

func (fc *FlowCell) String() string {
	return fc.Pool + "/" + fc.Name
}

// BasecallsDir represents a directory of re-basecalled or alternate
// basecalling output, recognised by its "pass" subdirectory.
type BasecallsDir struct {
	Path        string
	Name        string
	Parent      string // immediate parent directory name
	Pool        string // inherited from a matching flow cell; "" when none
	Run         string
	PassDir     string // path to the pass subdir; "" when absent
	Reports     []string
	SampleSheet string
	Metadata    report.Metadata
}

// FileTypes lists the data file types present. A pass directory holds
// both BAMs and FASTQs.
func (bc *BasecallsDir) FileTypes() []string {
	if bc.PassDir == "" {
		return nil
	}
	return []string{"bam", "fastq"}
}

// ReportTypes lists the report formats present ("html", "json").
func (bc *BasecallsDir) ReportTypes() []string {
	return reportTypes(bc.Reports)
}

// HTMLReport returns the path to the first HTML report, or "".
func (bc *BasecallsDir) HTMLReport() string {
	return reportWithSuffix(bc.Path, bc.Reports, ".html")
}

// JSONReport returns the path to the first JSON report, or "".
func (bc *BasecallsDir) JSONReport() string {
	return reportWithSuffix(bc.Path, bc.Reports, ".json")
}

func (bc *BasecallsDir) String() string {
	return bc.Parent + "/" + bc.Name
}

// Project is the model of a scanned PromethION project directory.
// Entity lists are sorted by name; Diagnostics records non-fatal
// conditions (skipped reports, missing run directories) observed
// during the scan.
type Project struct {
	Path          string
	Name          string
	FlowCells     []*FlowCell
	BasecallsDirs []*BasecallsDir
	Diagnostics   []string
}

func reportTypes(reports []string) []string {
	var types []string
	for _, suffix := range []string{".html", ".json"} {
		for _, r := range reports {
			if strings.HasSuffix(r, suffix) {
				types = append(types, strings.TrimPrefix(suffix, "."))
				break
			}
		}
	}
	return types
}

func reportWithSuffix(dir string, reports []string, suffix string) string {
	for _, r := range reports {
		if strings.HasSuffix(r, suffix) {
			return filepath.Join(dir, r)
		}
	}
	return ""
}

// newFlowCell builds a FlowCell entity for a classified directory.
// The directory basename must satisfy the flow cell naming
// convention; anything else means the tree the walker was pointed at
// is malformed, which is fatal for the scan.
func newFlowCell(path, projectRoot string, diags *[]string) (*FlowCell, error) {
	const op = errors.Op("project.newFlowCell")
	name := filepath.Base(path)
	if !flowcell.IsFlowCellName(name) {
		return nil, errors.E(op, errors.KindNaming,
			fmt.Sprintf("%q: not a flow cell name?", name))
	}

	fc := &FlowCell{
		Path:      path,
		Name:      name,
		ID:        flowcell.ID(name),
		Datestamp: flowcell.Datestamp(name),
	}

	poolDir := filepath.Dir(path)
	fc.Pool = filepath.Base(poolDir)
	runDir := filepath.Dir(poolDir)
	if poolDir == projectRoot || runDir == projectRoot {
		*diags = append(*diags,
			fmt.Sprintf("%s: missing run or pool directories?", path))
	} else {
		fc.Run = filepath.Base(runDir)
	}

	for _, d := range []string{"pod5", "pod5_pass"} {
		if p := existingDir(filepath.Join(path, d)); p != "" {
			fc.Pod5 = p
			break
		}
	}
	fc.BamPass = existingDir(filepath.Join(path, "bam_pass"))
	fc.FastqPass = existingDir(filepath.Join(path, "fastq_pass"))

	fc.Reports, fc.SampleSheet = collectReports(path, &fc.Metadata, diags)
	return fc, nil
}

// newBasecallsDir builds a BasecallsDir entity; pool and run come
// from the flow cell whose pool name matched, or are left empty.
func newBasecallsDir(path, pool, run string, diags *[]string) *BasecallsDir {
	bc := &BasecallsDir{
		Path:    path,
		Name:    filepath.Base(path),
		Parent:  filepath.Base(filepath.Dir(path)),
		Pool:    pool,
		Run:     run,
		PassDir: existingDir(filepath.Join(path, "pass")),
	}
	bc.Reports, bc.SampleSheet = collectReports(path, &bc.Metadata, diags)
	return bc
}

// collectReports lists report_* files in dir, extracting metadata
// from each HTML/JSON report. A report that fails to parse is skipped
// with a diagnostic; it never aborts the scan. At most one
// sample_sheet_* file is recorded.
func collectReports(dir string, meta *report.Metadata, diags *[]string) (reports []string, sampleSheet string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		errors.LogAndContinueWith("listing directory", err, dir)
		*diags = append(*diags, fmt.Sprintf("%s: %v", dir, err))
		return nil, ""
	}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "report_"):
			reports = append(reports, name)
			if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".json") {
				if err := meta.LoadFromReport(filepath.Join(dir, name)); err != nil {
					errors.LogAndContinueWith("loading metadata from report", err, name)
					*diags = append(*diags,
						fmt.Sprintf("%s: failed to load metadata from file (ignored): %v", name, err))
				}
			}
		case strings.HasPrefix(name, "sample_sheet_"):
			if sampleSheet == "" {
				sampleSheet = name
			}
		}
	}
	return reports, sampleSheet
}

func existingDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return ""
}
