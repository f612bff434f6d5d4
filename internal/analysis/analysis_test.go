package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/testutil"
)

const fcName = "20240513_0829_1A_PAW15419_465bb23f"

func TestMakeProjectID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"PromethION_Project_123_Smith", "PROMETHION#123"},
		{"PromethION_Project_007_Jones_Lab", "PROMETHION#007"},
		{"Project_123_Smith", ""},
		{"PromethION_Project_Smith", ""},
	}
	for _, tt := range tests {
		if got := MakeProjectID(tt.name); got != tt.want {
			t.Errorf("MakeProjectID(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestProjectInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.info")

	info := &ProjectInfo{
		Name:      "PromethION_Project_123_Smith",
		ID:        "PROMETHION#123",
		Datestamp: "20240513",
		Platform:  "promethion",
		User:      "Ann Onymous",
		PI:        "Smith",
	}
	if err := info.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := &ProjectInfo{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *info {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, info)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Unset fields are written with the unset marker.
	if !strings.Contains(string(data), "organism\t.\n") {
		t.Errorf("unset field not written as marker:\n%s", data)
	}
}

func TestSamplesInfoSorting(t *testing.T) {
	si := &SamplesInfo{}
	for _, name := range []string{"PG10", "PG2", "AB1"} {
		if err := si.AddSample(name, "barcode01", "PAW15419"); err != nil {
			t.Fatalf("AddSample(%s): %v", name, err)
		}
	}
	got := si.Samples()
	want := []string{"AB1", "PG2", "PG10"}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("sample[%d] = %q, want %q", i, got[i].Name, w)
		}
	}
}

func TestSamplesInfoDuplicate(t *testing.T) {
	si := &SamplesInfo{}
	if err := si.AddSample("PG1", "barcode01", ""); err != nil {
		t.Fatal(err)
	}
	if err := si.AddSample("PG1", "barcode02", ""); err == nil {
		t.Error("expected error adding duplicate sample")
	}
}

func TestSamplesInfoUpdate(t *testing.T) {
	si := &SamplesInfo{}
	if err := si.AddSample("PG1", "barcode01", "PAW15419"); err != nil {
		t.Fatal(err)
	}
	if err := si.UpdateSample("PG1", "barcode03", ""); err != nil {
		t.Fatalf("UpdateSample: %v", err)
	}
	s := si.Samples()[0]
	if s.Barcode != "barcode03" {
		t.Errorf("Barcode = %q, want barcode03", s.Barcode)
	}
	if s.FlowCell != "PAW15419" {
		t.Errorf("FlowCell = %q, should be unchanged", s.FlowCell)
	}
	if err := si.UpdateSample("PG9", "barcode01", ""); err == nil {
		t.Error("expected error updating unknown sample")
	}
}

func TestLoadSamplesCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.csv")
	testutil.WriteFile(t, path,
		"sample,barcode,flowcell\n"+
			"PG1,barcode01,PAW15419\n"+
			"PG2,barcode02\n"+
			"PG3,barcode03,PAW15677\n")

	samples, err := LoadSamplesCSV(path)
	if err != nil {
		t.Fatalf("LoadSamplesCSV: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	// Flow cell carried forward from the previous line.
	if samples[1].FlowCell != "PAW15419" {
		t.Errorf("samples[1].FlowCell = %q, want PAW15419", samples[1].FlowCell)
	}
	if samples[2].FlowCell != "PAW15677" {
		t.Errorf("samples[2].FlowCell = %q, want PAW15677", samples[2].FlowCell)
	}
}

func TestCreateAnalysisDir(t *testing.T) {
	topDir := t.TempDir()
	projectDir := testutil.NewMockProjectDir("PromethION_Project_123_Smith").
		AddFlowCell(fcName, "run1", "poolA", "24").
		AddBasecallsDir("Rebasecalling/poolA_sup", fcName).
		Create(t, topDir)

	p, err := project.Scan(projectDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	a, err := Create(p, "", CreateOptions{
		User:        "Ann Onymous",
		PI:          "Smith",
		Application: "cDNA sequencing",
		Organism:    "Human",
		Samples: []Sample{
			{Name: "PG1", Barcode: "barcode01", FlowCell: "PAW15419"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	wantPath := filepath.Join(topDir, "PromethION_Project_123_Smith_analysis")
	if a.Path != wantPath {
		t.Errorf("Path = %q, want %q", a.Path, wantPath)
	}
	for _, f := range []string{
		"project.info",
		"samples.tsv",
		"PromethION_Project_123_Smith.tsv",
		"README",
	} {
		if _, err := os.Stat(filepath.Join(a.Path, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
	for _, d := range []string{"logs", "ScriptCode", "reports"} {
		info, err := os.Stat(filepath.Join(a.Path, d))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s", d)
		}
	}

	if a.Info.ID != "PROMETHION#123" {
		t.Errorf("ID = %q", a.Info.ID)
	}
	if a.Info.Datestamp != "20240513" {
		t.Errorf("Datestamp = %q", a.Info.Datestamp)
	}
	if a.Info.Platform != "promethion" {
		t.Errorf("Platform = %q", a.Info.Platform)
	}
	if a.Info.DataDir != p.Path {
		t.Errorf("DataDir = %q, want %q", a.Info.DataDir, p.Path)
	}

	// Flow cell and basecalls HTML reports are copied with renames.
	reports, err := os.ReadDir(filepath.Join(a.Path, "reports"))
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d report copies, want 2", len(reports))
	}
	var names []string
	for _, r := range reports {
		names = append(names, r.Name())
	}
	joined := strings.Join(names, " ")
	if !strings.Contains(joined, "poolA_PAW15419_report_"+fcName+".html") {
		t.Errorf("flow cell report copy missing from %v", names)
	}
	// Pool didn't match, so the copy name carries parent and the
	// report's flow cell ID only.
	if !strings.Contains(joined, "Rebasecalling_PBC32212_report_"+fcName+".html") {
		t.Errorf("basecalls report copy missing from %v", names)
	}

	// Summary table holds one row per entity.
	data, err := os.ReadFile(filepath.Join(a.Path, "PromethION_Project_123_Smith.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("summary table has %d lines, want header plus 2 rows:\n%s", len(lines), data)
	}
}

// A basecalls report copy is named from the parent directory, the
// inherited pool and the report's flow cell ID, so copies from
// same-named basecalls dirs under same-named parents in different
// runs stay distinct.
func TestBasecallsReportCopyName(t *testing.T) {
	topDir := t.TempDir()
	projectDir := testutil.NewMockProjectDir("PromethION_Project_123_Smith").
		AddFlowCell(fcName, "run1", "poolA", "25").
		AddBasecallsDir("run1/poolA/Rebasecalling/sup_calls", fcName).
		Create(t, topDir)

	p, err := project.Scan(projectDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	a, err := Create(p, "", CreateOptions{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	want := "Rebasecalling_poolA_PBC32212_report_" + fcName + ".html"
	if _, err := os.Stat(filepath.Join(a.Path, "reports", want)); err != nil {
		reports, _ := os.ReadDir(filepath.Join(a.Path, "reports"))
		var names []string
		for _, r := range reports {
			names = append(names, r.Name())
		}
		t.Errorf("missing report copy %q, have %v", want, names)
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	topDir := t.TempDir()
	projectDir := testutil.NewMockProjectDir("PromethION_Project_123_Smith").
		AddFlowCell(fcName, "run1", "poolA", "25").
		Create(t, topDir)

	p, err := project.Scan(projectDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, err := Create(p, "", CreateOptions{}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := Create(p, "", CreateOptions{}); err == nil {
		t.Fatal("expected error creating over existing analysis directory")
	}
}

func TestOpenAndReport(t *testing.T) {
	topDir := t.TempDir()
	projectDir := testutil.NewMockProjectDir("PromethION_Project_123_Smith").
		AddFlowCell(fcName, "run1", "poolA", "25").
		Create(t, topDir)

	p, err := project.Scan(projectDir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	created, err := Create(p, "", CreateOptions{
		User: "Ann Onymous",
		PI:   "Smith",
		Samples: []Sample{
			{Name: "PG1", Barcode: "barcode01"},
			{Name: "PG2", Barcode: "barcode02"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err := Open(created.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Info.User != "Ann Onymous" {
		t.Errorf("User = %q", a.Info.User)
	}
	if a.Samples.Len() != 2 {
		t.Errorf("Samples.Len = %d, want 2", a.Samples.Len())
	}

	summary, err := a.Report("summary", "name,id,null,nsamples,samples")
	if err != nil {
		t.Fatalf("Report(summary): %v", err)
	}
	if !strings.Contains(summary, "name: PromethION_Project_123_Smith\n") {
		t.Errorf("summary missing name line:\n%s", summary)
	}
	if !strings.Contains(summary, "nsamples: 2\n") {
		t.Errorf("summary missing nsamples line:\n%s", summary)
	}
	if !strings.Contains(summary, "samples: PG1,PG2\n") {
		t.Errorf("summary missing samples line:\n%s", summary)
	}
	if strings.Contains(summary, "null") {
		t.Errorf("summary should skip null fields:\n%s", summary)
	}

	tsv, err := a.Report("tsv", "id,null,user")
	if err != nil {
		t.Fatalf("Report(tsv): %v", err)
	}
	if tsv != "PROMETHION#123\t\tAnn Onymous\n" {
		t.Errorf("tsv = %q", tsv)
	}

	if _, err := a.Report("summary", "nope"); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := a.Report("wide", "name"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestOpenMissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope_analysis")); err == nil {
		t.Fatal("expected error opening missing analysis directory")
	}
}
