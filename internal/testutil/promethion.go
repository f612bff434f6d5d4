package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Embedded report JSON as produced by MinKNOW 24: modified
// basecalling on, with the modification description under
// "Modified base context".
const HTMLReportJSON24 = `{` +
	`"run_setup": [` +
	`{"title": "Flow cell type", "value": "FLO-PRO114M"},` +
	`{"title": "Flow cell type alias", "value": "FLO-PRO114M"},` +
	`{"title": "Flow cell ID", "value": "PAW15677"},` +
	`{"title": "Kit type", "value": "SQK-RBK114-24"}],` +
	`"run_settings": [` +
	`{"title": "Run limit", "value": "72 hrs"},` +
	`{"title": "Active channel selection", "value": "On"},` +
	`{"title": "Pore scan freq.", "value": "1.5 hrs"},` +
	`{"title": "Reserved pores", "value": "On"},` +
	`{"title": "Minimum read length", "value": "200 bp"},` +
	`{"title": "Basecalling", "value": "Super-accurate basecalling, 400 bps"},` +
	`{"title": "Modified basecalling", "value": "On"},` +
	`{"title": "Modified base context", "value": "5mC & 5hmC"},` +
	`{"title": "Trim barcodes", "value": "Off"},` +
	`{"title": "Mid-read barcode filtering", "value": "Off"},` +
	`{"title": "Min Q score", "value": "10"}],` +
	`"software_versions": [` +
	`{"title": "MinKNOW", "value": "24.02.19"},` +
	`{"title": "Bream", "value": "7.9.8"},` +
	`{"title": "Configuration", "value": "5.9.18"},` +
	`{"title": "Dorado", "value": "7.3.11"},` +
	`{"title": "MinKNOW Core", "value": "5.9.12"}]}`

// Embedded report JSON as produced by MinKNOW 25: modified
// basecalling off, no modification description keys at all.
const HTMLReportJSON25 = `{` +
	`"run_setup": [` +
	`{"title": "Flow cell type", "value": "FLO-PRO114M"},` +
	`{"title": "Flow cell type alias", "value": "FLO-PRO114M"},` +
	`{"title": "Flow cell ID", "value": "PBC32212"},` +
	`{"title": "Kit type", "value": "SQK-PCB114-24"}],` +
	`"run_settings": [` +
	`{"title": "Run limit", "value": "72 hrs"},` +
	`{"title": "Pore scan freq.", "value": "1.5 hrs"},` +
	`{"title": "Reserved pores", "value": "On"},` +
	`{"title": "Basecalling", "value": "High-accuracy model 400bps"},` +
	`{"title": "Modified basecalling", "value": "Off"},` +
	`{"title": "Trim barcodes", "value": "Off"},` +
	`{"title": "Min Q score", "value": "9"}],` +
	`"software_versions": [` +
	`{"title": "MinKNOW", "value": "25.03.7"},` +
	`{"title": "Bream", "value": "8.4.4"},` +
	`{"title": "Configuration", "value": "6.4.10"},` +
	`{"title": "Dorado", "value": "7.8.3"},` +
	`{"title": "MinKNOW Core", "value": "6.4.8"}]}`

// JSONReport is a minimal standalone JSON report carrying a
// basecalling model and config in its first acquisition.
const JSONReport = `{"acquisitions": [` +
	`{"acquisition_run_info": {"config_summary": {` +
	`"basecalling_model_version": "dna_r10.4.1_e8.2_400bps_sup@v4.3.0",` +
	`"basecalling_config_filename": "dna_r10.4.1_e8.2_400bps_sup.cfg"}}}]}`

// HTMLReport wraps embedded report JSON in the newer MinKNOW script
// assignment form.
func HTMLReport(embedded string) string {
	return fmt.Sprintf("<html>\n<body>\n<script>\nconst reportDataJson = %s;\n</script>\n</body>\n</html>\n", embedded)
}

// HTMLReportLegacy wraps embedded report JSON in the older script
// assignment form (no space around '=', no trailing semicolon).
func HTMLReportLegacy(embedded string) string {
	return fmt.Sprintf("<html>\n<body>\n<script>\nconst reportData=%s\n</script>\n</body>\n</html>\n", embedded)
}

// MockProjectDir builds directory trees that mimic PromethION
// project output for tests.
type MockProjectDir struct {
	Name      string
	flowCells []mockFlowCell
	basecalls []mockBasecallsDir
}

type mockFlowCell struct {
	name    string
	run     string
	pool    string
	minknow string
	noJSON  bool
}

type mockBasecallsDir struct {
	relPath      string
	flowCellName string
}

// NewMockProjectDir returns a builder for a mock project directory
// with the given name.
func NewMockProjectDir(name string) *MockProjectDir {
	return &MockProjectDir{Name: name}
}

// AddFlowCell registers a flow cell under run/pool (either may be
// empty to flatten the hierarchy). minknow selects the report
// payload ("24" or "25").
func (m *MockProjectDir) AddFlowCell(name, run, pool, minknow string) *MockProjectDir {
	m.flowCells = append(m.flowCells, mockFlowCell{name: name, run: run, pool: pool, minknow: minknow})
	return m
}

// AddFlowCellNoJSON registers a flow cell whose reports omit the
// standalone JSON report.
func (m *MockProjectDir) AddFlowCellNoJSON(name, run, pool, minknow string) *MockProjectDir {
	m.flowCells = append(m.flowCells, mockFlowCell{name: name, run: run, pool: pool, minknow: minknow, noJSON: true})
	return m
}

// AddBasecallsDir registers a basecalls directory at relPath below
// the project root; flowCellName names the report file if not empty.
func (m *MockProjectDir) AddBasecallsDir(relPath, flowCellName string) *MockProjectDir {
	m.basecalls = append(m.basecalls, mockBasecallsDir{relPath: relPath, flowCellName: flowCellName})
	return m
}

// Create materialises the mock project under topDir and returns the
// project path.
func (m *MockProjectDir) Create(t *testing.T, topDir string) string {
	t.Helper()
	projectDir := filepath.Join(topDir, m.Name)
	MkdirAll(t, projectDir)
	for _, fc := range m.flowCells {
		fcDir := projectDir
		if fc.run != "" {
			fcDir = filepath.Join(fcDir, fc.run)
		}
		if fc.pool != "" {
			fcDir = filepath.Join(fcDir, fc.pool)
		}
		fcDir = filepath.Join(fcDir, fc.name)
		for _, sub := range []string{"pod5", "pod5_skip", "bam_pass", "bam_fail", "fastq_pass", "fastq_fail"} {
			MkdirAll(t, filepath.Join(fcDir, sub))
			if sub != "pod5" && sub != "pod5_skip" {
				createBarcodeDirs(t, filepath.Join(fcDir, sub))
			}
		}
		embedded := HTMLReportJSON25
		if fc.minknow == "24" {
			embedded = HTMLReportJSON24
		}
		WriteFile(t, filepath.Join(fcDir, "report_"+fc.name+".html"), HTMLReport(embedded))
		if !fc.noJSON {
			WriteFile(t, filepath.Join(fcDir, "report_"+fc.name+".json"), JSONReport)
		}
		WriteFile(t, filepath.Join(fcDir, "sample_sheet_"+fc.name+".csv"), "flow_cell_id,kit\n")
	}
	for _, bc := range m.basecalls {
		bcDir := filepath.Join(projectDir, filepath.FromSlash(bc.relPath))
		MkdirAll(t, filepath.Join(bcDir, "pass"))
		createBarcodeDirs(t, filepath.Join(bcDir, "pass"))
		if bc.flowCellName != "" {
			WriteFile(t, filepath.Join(bcDir, "report_"+bc.flowCellName+".html"), HTMLReport(HTMLReportJSON25))
		}
	}
	return projectDir
}

func createBarcodeDirs(t *testing.T, dir string) {
	t.Helper()
	for n := 1; n <= 4; n++ {
		if err := os.Mkdir(filepath.Join(dir, fmt.Sprintf("barcode%02d", n)), 0755); err != nil {
			t.Fatalf("failed to create barcode dir: %v", err)
		}
	}
}
