package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
	"github.com/bcfcore/promion/internal/export"
	"github.com/bcfcore/promion/internal/project"
)

const (
	infoFile    = "project.info"
	samplesFile = "samples.tsv"
	reportsDir  = "reports"
	readmeFile  = "README"
)

// projectIDRe matches the facility project naming convention the
// project ID is derived from.
var projectIDRe = regexp.MustCompile(`^PromethION_Project_([0-9]+)_(.+)$`)

// MakeProjectID derives the canonical project ID from a project
// directory name, e.g. "PromethION_Project_123_Smith" gives
// "PROMETHION#123". Returns "" when the name doesn't follow the
// convention.
func MakeProjectID(name string) string {
	m := projectIDRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return "PROMETHION#" + m[1]
}

// AnalysisDir is a project analysis directory: the working area
// created alongside the primary data, holding project metadata, the
// flow cell summary table and copies of the vendor reports.
type AnalysisDir struct {
	Path    string
	Info    *ProjectInfo
	Samples *SamplesInfo
}

// CreateOptions carries the user-supplied metadata recorded when an
// analysis directory is first set up.
type CreateOptions struct {
	User        string
	PI          string
	Application string
	Organism    string
	Comments    string
	Samples     []Sample
	SamplesFile string // CSV file to load samples from; overrides Samples
}

// Create sets up a new analysis directory for a scanned project under
// topDir (next to the project directory when topDir is empty). It
// refuses to overwrite an existing directory.
func Create(p *project.Project, topDir string, opts CreateOptions) (*AnalysisDir, error) {
	const op = errors.Op("analysis.Create")

	if topDir == "" {
		topDir = filepath.Dir(p.Path)
	}
	path := filepath.Join(topDir, p.Name+"_analysis")
	if _, err := os.Stat(path); err == nil {
		return nil, errors.E(op, fmt.Sprintf("%s: analysis directory already exists", path))
	}

	samples := opts.Samples
	if opts.SamplesFile != "" {
		loaded, err := LoadSamplesCSV(opts.SamplesFile)
		if err != nil {
			return nil, errors.Wrap(op, err)
		}
		samples = loaded
	}

	for _, d := range []string{path, filepath.Join(path, "logs"), filepath.Join(path, "ScriptCode")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, errors.E(op, errors.KindIO, err)
		}
	}

	a := &AnalysisDir{
		Path: path,
		Info: &ProjectInfo{
			Name:        p.Name,
			ID:          MakeProjectID(p.Name),
			Datestamp:   earliestDatestamp(p),
			Platform:    "promethion",
			User:        opts.User,
			PI:          opts.PI,
			Application: opts.Application,
			Organism:    opts.Organism,
			DataDir:     p.Path,
			Comments:    opts.Comments,
		},
		Samples: &SamplesInfo{},
	}
	if err := a.Info.Save(filepath.Join(path, infoFile)); err != nil {
		return nil, errors.Wrap(op, err)
	}

	for _, s := range samples {
		if err := a.Samples.AddSample(s.Name, s.Barcode, s.FlowCell); err != nil {
			return nil, errors.Wrap(op, err)
		}
	}
	if a.Samples.Len() > 0 {
		if err := a.Samples.Save(filepath.Join(path, samplesFile)); err != nil {
			return nil, errors.Wrap(op, err)
		}
	}

	table := export.NewTable()
	for _, rec := range export.Records(p) {
		table.Append(rec)
	}
	if err := table.Save(filepath.Join(path, p.Name+".tsv")); err != nil {
		return nil, errors.Wrap(op, err)
	}

	if err := copyReports(p, filepath.Join(path, reportsDir)); err != nil {
		return nil, errors.Wrap(op, err)
	}

	if err := writeReadme(a, p); err != nil {
		return nil, errors.Wrap(op, err)
	}

	return a, nil
}

// Open loads an existing analysis directory. A missing samples file is
// fine; a missing info file is an error.
func Open(path string) (*AnalysisDir, error) {
	const op = errors.Op("analysis.Open")
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return nil, errors.E(op, errors.KindIO,
			fmt.Sprintf("%s: not an analysis directory", path))
	}
	a := &AnalysisDir{
		Path:    path,
		Info:    &ProjectInfo{},
		Samples: &SamplesInfo{},
	}
	if err := a.Info.Load(filepath.Join(path, infoFile)); err != nil {
		return nil, errors.Wrap(op, err)
	}
	samplesPath := filepath.Join(path, samplesFile)
	if _, err := os.Stat(samplesPath); err == nil {
		if err := a.Samples.Load(samplesPath); err != nil {
			return nil, errors.Wrap(op, err)
		}
	}
	return a, nil
}

// SaveInfo persists the project info back to disk.
func (a *AnalysisDir) SaveInfo() error {
	return a.Info.Save(filepath.Join(a.Path, infoFile))
}

// SaveSamples persists the sample metadata back to disk.
func (a *AnalysisDir) SaveSamples() error {
	return a.Samples.Save(filepath.Join(a.Path, samplesFile))
}

// Report renders the project metadata using a comma-separated field
// template. Mode "summary" gives one "field: value" line per field;
// mode "tsv" gives a single tab-delimited line. The pseudo-field
// "null" renders as an empty value.
func (a *AnalysisDir) Report(mode, fields string) (string, error) {
	const op = errors.Op("analysis.AnalysisDir.Report")
	var names []string
	var values []string
	for _, field := range strings.Split(fields, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := a.fieldValue(field)
		if err != nil {
			return "", errors.Wrap(op, err)
		}
		names = append(names, field)
		values = append(values, value)
	}

	switch mode {
	case "summary":
		var b strings.Builder
		for i, name := range names {
			if name == "null" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", name, values[i])
		}
		return b.String(), nil
	case "tsv":
		return strings.Join(values, "\t") + "\n", nil
	default:
		return "", errors.E(op, fmt.Sprintf("%q: unknown report mode", mode))
	}
}

func (a *AnalysisDir) fieldValue(field string) (string, error) {
	const op = errors.Op("analysis.AnalysisDir.fieldValue")
	switch field {
	case "null":
		return "", nil
	case "name":
		return a.Info.Name, nil
	case "id":
		return a.Info.ID, nil
	case "datestamp":
		return a.Info.Datestamp, nil
	case "platform":
		return a.Info.Platform, nil
	case "user":
		return a.Info.User, nil
	case "pi":
		return a.Info.PI, nil
	case "application":
		return a.Info.Application, nil
	case "organism":
		return a.Info.Organism, nil
	case "comments":
		return a.Info.Comments, nil
	case "primary_data":
		return a.Info.DataDir, nil
	case "analysis_dir":
		return a.Path, nil
	case "nsamples":
		return strconv.Itoa(a.Samples.Len()), nil
	case "samples":
		var names []string
		for _, s := range a.Samples.Samples() {
			names = append(names, s.Name)
		}
		return strings.Join(names, ","), nil
	}
	return "", errors.E(op, fmt.Sprintf("%q: unknown report field", field))
}

// earliestDatestamp returns the earliest flow cell datestamp in the
// project; YYYYMMDD strings order correctly as text.
func earliestDatestamp(p *project.Project) string {
	earliest := ""
	for _, fc := range p.FlowCells {
		if earliest == "" || fc.Datestamp < earliest {
			earliest = fc.Datestamp
		}
	}
	return earliest
}

// copyReports copies every HTML report into dest, prefixing the file
// name with enough path context to keep copies from different
// entities distinct.
func copyReports(p *project.Project, dest string) error {
	const op = errors.Op("analysis.copyReports")
	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	for _, fc := range p.FlowCells {
		src := fc.HTMLReport()
		if src == "" {
			continue
		}
		name := fmt.Sprintf("%s_%s_%s", fc.Pool, fc.ID, filepath.Base(src))
		if err := copyFile(src, filepath.Join(dest, name)); err != nil {
			return errors.Wrap(op, err)
		}
	}
	for _, bc := range p.BasecallsDirs {
		src := bc.HTMLReport()
		if src == "" {
			continue
		}
		// Parent, pool and flow cell ID keep copies from same-named
		// basecalls dirs in different runs distinct. Unset parts are
		// dropped from the name.
		parts := []string{bc.Parent}
		if bc.Pool != "" {
			parts = append(parts, bc.Pool)
		}
		if bc.Metadata.FlowCellID != nil && *bc.Metadata.FlowCellID != "" {
			parts = append(parts, *bc.Metadata.FlowCellID)
		}
		name := strings.Join(parts, "_") + "_" + filepath.Base(src)
		if err := copyFile(src, filepath.Join(dest, name)); err != nil {
			return errors.Wrap(op, err)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	const op = errors.Op("analysis.copyFile")
	in, err := os.Open(src)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.E(op, errors.KindIO, err)
	}
	return errors.Wrap(op, out.Close())
}

func writeReadme(a *AnalysisDir, p *project.Project) error {
	const op = errors.Op("analysis.writeReadme")
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis directory for %s\n\n", p.Name)
	fmt.Fprintf(&b, "Primary data: %s\n", p.Path)
	fmt.Fprintf(&b, "Flow cells:   %d\n", len(p.FlowCells))
	fmt.Fprintf(&b, "Basecalls:    %d\n\n", len(p.BasecallsDirs))
	b.WriteString("Contents:\n")
	fmt.Fprintf(&b, "  %s\t- project metadata\n", infoFile)
	fmt.Fprintf(&b, "  %s\t- sample metadata (if set up)\n", samplesFile)
	fmt.Fprintf(&b, "  %s.tsv\t- flow cell summary table\n", p.Name)
	fmt.Fprintf(&b, "  %s/\t- copies of the sequencing reports\n", reportsDir)
	b.WriteString("  logs/\t- processing logs\n")
	b.WriteString("  ScriptCode/\t- analysis scripts\n")
	if err := os.WriteFile(filepath.Join(a.Path, readmeFile), []byte(b.String()), 0644); err != nil {
		return errors.E(op, errors.KindIO, err)
	}
	return nil
}
