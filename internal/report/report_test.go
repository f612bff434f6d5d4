package report

import (
	"path/filepath"
	"testing"

	"github.com/bcfcore/promion/internal/errors"
	"github.com/bcfcore/promion/internal/testutil"
)

func strValue(t *testing.T, field *string, name string) string {
	t.Helper()
	if field == nil {
		t.Fatalf("%s: field is unset", name)
	}
	return *field
}

func TestLoadFromHTMLReportMinKNOW24(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, testutil.HTMLReport(testutil.HTMLReportJSON24))

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}

	if got := strValue(t, m.FlowCellID, "FlowCellID"); got != "PAW15677" {
		t.Errorf("FlowCellID = %q, want PAW15677", got)
	}
	if got := strValue(t, m.FlowCellType, "FlowCellType"); got != "FLO-PRO114M" {
		t.Errorf("FlowCellType = %q, want FLO-PRO114M", got)
	}
	if got := strValue(t, m.Kit, "Kit"); got != "SQK-RBK114-24" {
		t.Errorf("Kit = %q, want SQK-RBK114-24", got)
	}
	if got := strValue(t, m.Basecalling, "Basecalling"); got != "Super-accurate basecalling, 400 bps" {
		t.Errorf("Basecalling = %q", got)
	}
	if got := strValue(t, m.ModifiedBasecalling, "ModifiedBasecalling"); got != "On" {
		t.Errorf("ModifiedBasecalling = %q, want On", got)
	}
	if got := strValue(t, m.Modifications, "Modifications"); got != "5mC & 5hmC" {
		t.Errorf("Modifications = %q, want 5mC & 5hmC", got)
	}
	if got := strValue(t, m.TrimBarcodes, "TrimBarcodes"); got != "Off" {
		t.Errorf("TrimBarcodes = %q, want Off", got)
	}
	if got := m.SoftwareVersions["minknow"]; got != "24.02.19" {
		t.Errorf("SoftwareVersions[minknow] = %q, want 24.02.19", got)
	}
	if got := m.SoftwareVersions["minknow_core"]; got != "5.9.12" {
		t.Errorf("SoftwareVersions[minknow_core] = %q, want 5.9.12", got)
	}
	if got := m.SoftwareVersions["dorado"]; got != "7.3.11" {
		t.Errorf("SoftwareVersions[dorado] = %q, want 7.3.11", got)
	}
	// JSON-only fields must stay unset after an HTML parse.
	if m.BasecallingModel != nil || m.BasecallingConfig != nil {
		t.Error("basecalling model/config should be unset after HTML parse")
	}
}

func TestLoadFromHTMLReportMinKNOW25(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, testutil.HTMLReport(testutil.HTMLReportJSON25))

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}

	if got := strValue(t, m.FlowCellID, "FlowCellID"); got != "PBC32212" {
		t.Errorf("FlowCellID = %q, want PBC32212", got)
	}
	if got := strValue(t, m.ModifiedBasecalling, "ModifiedBasecalling"); got != "Off" {
		t.Errorf("ModifiedBasecalling = %q, want Off", got)
	}
	if m.Modifications != nil {
		t.Errorf("Modifications = %q, want unset when modified basecalling is Off", *m.Modifications)
	}
	if got := m.SoftwareVersions["minknow"]; got != "25.03.7" {
		t.Errorf("SoftwareVersions[minknow] = %q, want 25.03.7", got)
	}
}

func TestLoadFromHTMLReportLegacyMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, testutil.HTMLReportLegacy(testutil.HTMLReportJSON24))

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}
	if got := strValue(t, m.FlowCellID, "FlowCellID"); got != "PAW15677" {
		t.Errorf("FlowCellID = %q, want PAW15677", got)
	}
}

func TestModificationsKeyVariant(t *testing.T) {
	// Some report versions use "Modifications" instead of
	// "Modified base context".
	embedded := `{` +
		`"run_setup": [{"title": "Flow cell ID", "value": "PAW00001"}],` +
		`"run_settings": [` +
		`{"title": "Modified basecalling", "value": "On"},` +
		`{"title": "Modifications", "value": "5mC"}],` +
		`"software_versions": []}`
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, testutil.HTMLReport(embedded))

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}
	if got := strValue(t, m.Modifications, "Modifications"); got != "5mC" {
		t.Errorf("Modifications = %q, want 5mC", got)
	}
	// Keys absent from this schema stay unset, not empty.
	if m.Kit != nil {
		t.Errorf("Kit = %q, want unset", *m.Kit)
	}
	if m.TrimBarcodes != nil {
		t.Errorf("TrimBarcodes = %q, want unset", *m.TrimBarcodes)
	}
}

func TestModifiedOnWithoutDescription(t *testing.T) {
	embedded := `{` +
		`"run_setup": [],` +
		`"run_settings": [{"title": "Modified basecalling", "value": "On"}],` +
		`"software_versions": []}`
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, testutil.HTMLReport(embedded))

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}
	if m.Modifications != nil {
		t.Errorf("Modifications = %q, want unset", *m.Modifications)
	}
}

func TestLoadFromHTMLReportNoMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, "<html><body>no data here</body></html>\n")

	var m Metadata
	err := m.LoadFromReport(path)
	if err == nil {
		t.Fatal("expected error for report without embedded JSON")
	}
	if !errors.IsKind(err, errors.KindParse) {
		t.Errorf("error kind = %v, want parse", errors.GetKind(err))
	}
}

func TestLoadFromHTMLReportBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.html")
	testutil.WriteFile(t, path, "const reportDataJson = {not json};\n")

	var m Metadata
	err := m.LoadFromReport(path)
	if !errors.IsKind(err, errors.KindParse) {
		t.Errorf("error kind = %v, want parse", errors.GetKind(err))
	}
}

func TestLoadFromJSONReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.json")
	testutil.WriteFile(t, path, testutil.JSONReport)

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}
	if got := strValue(t, m.BasecallingModel, "BasecallingModel"); got != "dna_r10.4.1_e8.2_400bps_sup@v4.3.0" {
		t.Errorf("BasecallingModel = %q", got)
	}
	if got := strValue(t, m.BasecallingConfig, "BasecallingConfig"); got != "dna_r10.4.1_e8.2_400bps_sup.cfg" {
		t.Errorf("BasecallingConfig = %q", got)
	}
	// HTML-only fields must stay unset after a JSON parse.
	if m.FlowCellID != nil || m.Kit != nil {
		t.Error("flow cell id/kit should be unset after JSON parse")
	}
}

func TestLoadFromJSONReportFirstValueWins(t *testing.T) {
	content := `{"acquisitions": [` +
		`{"acquisition_run_info": {"config_summary": {}}},` +
		`{"acquisition_run_info": {"config_summary": {"basecalling_model_version": "model-a"}}},` +
		`{"acquisition_run_info": {"config_summary": {` +
		`"basecalling_model_version": "model-b", "basecalling_config_filename": "config-b.cfg"}}}]}`
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.json")
	testutil.WriteFile(t, path, content)

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("LoadFromReport: %v", err)
	}
	if got := strValue(t, m.BasecallingModel, "BasecallingModel"); got != "model-a" {
		t.Errorf("BasecallingModel = %q, want model-a", got)
	}
	if got := strValue(t, m.BasecallingConfig, "BasecallingConfig"); got != "config-b.cfg" {
		t.Errorf("BasecallingConfig = %q, want config-b.cfg", got)
	}
}

func TestLoadFromJSONReportMissingSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.json")
	testutil.WriteFile(t, path, `{"acquisitions": [{"other": 1}]}`)

	var m Metadata
	if err := m.LoadFromReport(path); err != nil {
		t.Fatalf("missing sections should be tolerated, got %v", err)
	}
	if m.BasecallingModel != nil || m.BasecallingConfig != nil {
		t.Error("basecalling model/config should stay unset")
	}
}

func TestLoadFromJSONReportInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.json")
	testutil.WriteFile(t, path, "not json at all")

	var m Metadata
	err := m.LoadFromReport(path)
	if !errors.IsKind(err, errors.KindParse) {
		t.Errorf("error kind = %v, want parse", errors.GetKind(err))
	}
}

func TestLoadFromReportUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_fc.pdf")
	testutil.WriteFile(t, path, "pdf")

	var m Metadata
	err := m.LoadFromReport(path)
	if !errors.IsKind(err, errors.KindFormat) {
		t.Errorf("error kind = %v, want format", errors.GetKind(err))
	}
}

func TestMergeHTMLAndJSONOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "report_fc.html")
	jsonPath := filepath.Join(dir, "report_fc.json")
	testutil.WriteFile(t, htmlPath, testutil.HTMLReport(testutil.HTMLReportJSON24))
	testutil.WriteFile(t, jsonPath, testutil.JSONReport)

	var htmlFirst, jsonFirst Metadata
	for _, p := range []string{htmlPath, jsonPath} {
		if err := htmlFirst.LoadFromReport(p); err != nil {
			t.Fatalf("LoadFromReport(%s): %v", p, err)
		}
	}
	for _, p := range []string{jsonPath, htmlPath} {
		if err := jsonFirst.LoadFromReport(p); err != nil {
			t.Fatalf("LoadFromReport(%s): %v", p, err)
		}
	}

	for _, m := range []*Metadata{&htmlFirst, &jsonFirst} {
		if got := strValue(t, m.FlowCellID, "FlowCellID"); got != "PAW15677" {
			t.Errorf("FlowCellID = %q, want PAW15677", got)
		}
		if got := strValue(t, m.Kit, "Kit"); got != "SQK-RBK114-24" {
			t.Errorf("Kit = %q, want SQK-RBK114-24", got)
		}
		if got := strValue(t, m.BasecallingModel, "BasecallingModel"); got != "dna_r10.4.1_e8.2_400bps_sup@v4.3.0" {
			t.Errorf("BasecallingModel = %q", got)
		}
		if got := strValue(t, m.ModifiedBasecalling, "ModifiedBasecalling"); got != "On" {
			t.Errorf("ModifiedBasecalling = %q, want On", got)
		}
	}
}

func TestRepeatedLoadsDoNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "report_a.html")
	second := filepath.Join(dir, "report_b.html")
	testutil.WriteFile(t, first, testutil.HTMLReport(testutil.HTMLReportJSON24))
	testutil.WriteFile(t, second, testutil.HTMLReport(testutil.HTMLReportJSON25))

	var m Metadata
	for _, p := range []string{first, second} {
		if err := m.LoadFromReport(p); err != nil {
			t.Fatalf("LoadFromReport(%s): %v", p, err)
		}
	}
	if got := strValue(t, m.FlowCellID, "FlowCellID"); got != "PAW15677" {
		t.Errorf("FlowCellID = %q, want value from first report", got)
	}
	if got := m.SoftwareVersions["minknow"]; got != "24.02.19" {
		t.Errorf("SoftwareVersions[minknow] = %q, want value from first report", got)
	}
}
