// Package export flattens scanned project entities into tabular
// records for persistence and reporting. This is the only point where
// the scanning core hands data to the metadata store.
package export

import (
	"path/filepath"
	"strings"

	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/report"
)

// Placeholder written for values a report should have supplied but
// did not.
const Placeholder = "?"

// Record is one flat row describing a flow cell or basecalls
// directory.
type Record struct {
	Run              string
	PoolName         string
	SubDir           string
	FlowCellID       string
	Reports          string
	Kit              string
	Modifications    string
	TrimBarcodes     string
	Minknow          string
	BasecallingModel string
	FileTypes        string
}

// Header returns the column names in output order.
func Header() []string {
	return []string{
		"Run",
		"PoolName",
		"SubDir",
		"FlowCellID",
		"Reports",
		"Kit",
		"Modifications",
		"TrimBarcodes",
		"Minknow",
		"BasecallingModel",
		"FileTypes",
	}
}

// Values returns the record's fields in column order.
func (r Record) Values() []string {
	return []string{
		r.Run,
		r.PoolName,
		r.SubDir,
		r.FlowCellID,
		r.Reports,
		r.Kit,
		r.Modifications,
		r.TrimBarcodes,
		r.Minknow,
		r.BasecallingModel,
		r.FileTypes,
	}
}

// FlowCellRecord maps a flow cell entity to a flat record.
func FlowCellRecord(p *project.Project, fc *project.FlowCell) Record {
	return Record{
		Run:              fmtString(fc.Run),
		PoolName:         fc.Pool,
		SubDir:           relPath(p.Path, fc.Path),
		FlowCellID:       fc.ID,
		Reports:          joinOrNone(fc.ReportTypes()),
		Kit:              fmtValue(fc.Metadata.Kit),
		Modifications:    fmtModifications(&fc.Metadata),
		TrimBarcodes:     fmtValue(fc.Metadata.TrimBarcodes),
		Minknow:          fmtVersion(fc.Metadata.SoftwareVersions, "minknow"),
		BasecallingModel: fmtModel(&fc.Metadata),
		FileTypes:        joinOrNone(fc.FileTypes()),
	}
}

// BasecallsRecord maps a basecalls directory entity to a flat record.
// The pool column carries the directory's own name; the flow cell ID
// comes from report metadata since it cannot be derived from the
// directory name.
func BasecallsRecord(p *project.Project, bc *project.BasecallsDir) Record {
	return Record{
		Run:              fmtString(bc.Run),
		PoolName:         bc.Name,
		SubDir:           relPath(p.Path, bc.Path),
		FlowCellID:       fmtValue(bc.Metadata.FlowCellID),
		Reports:          joinOrNone(bc.ReportTypes()),
		Kit:              fmtValue(bc.Metadata.Kit),
		Modifications:    fmtModifications(&bc.Metadata),
		TrimBarcodes:     fmtValue(bc.Metadata.TrimBarcodes),
		Minknow:          fmtVersion(bc.Metadata.SoftwareVersions, "minknow"),
		BasecallingModel: fmtModel(&bc.Metadata),
		FileTypes:        joinOrNone(bc.FileTypes()),
	}
}

// Records flattens every entity of a project, flow cells first, in
// the project model's (sorted) order.
func Records(p *project.Project) []Record {
	records := make([]Record, 0, len(p.FlowCells)+len(p.BasecallsDirs))
	for _, fc := range p.FlowCells {
		records = append(records, FlowCellRecord(p, fc))
	}
	for _, bc := range p.BasecallsDirs {
		records = append(records, BasecallsRecord(p, bc))
	}
	return records
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func fmtValue(v *string) string {
	if v == nil {
		return Placeholder
	}
	return *v
}

func fmtString(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ",")
}

func fmtModifications(m *report.Metadata) string {
	if m.ModifiedBasecalling != nil && *m.ModifiedBasecalling == "Off" {
		return "none"
	}
	return fmtValue(m.Modifications)
}

func fmtVersion(versions map[string]string, component string) string {
	if v, ok := versions[component]; ok {
		return v
	}
	return Placeholder
}

// fmtModel prefers the basecalling model, falling back to the
// basecalling config filename when no model was reported.
func fmtModel(m *report.Metadata) string {
	if m.BasecallingModel != nil {
		return *m.BasecallingModel
	}
	return fmtValue(m.BasecallingConfig)
}
