package project

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// Class is the classification of a directory during the walk.
type Class int

const (
	Unclassified Class = iota
	ClassFlowCell
	ClassBasecalls
)

// Classify tags a directory from its immediate child directory
// names. A "pass" child marks a basecalls directory and takes
// priority over the flow cell rules ("pod5" or "*_pass" children).
func Classify(childDirs []string) Class {
	for _, d := range childDirs {
		if d == "pass" {
			return ClassBasecalls
		}
	}
	for _, d := range childDirs {
		if d == "pod5" || strings.HasSuffix(d, "_pass") {
			return ClassFlowCell
		}
	}
	return Unclassified
}

// Scan walks a PromethION project tree and assembles the project
// model. Per-report parse failures are downgraded to diagnostics; a
// flow cell candidate with a malformed name aborts the scan.
func Scan(path string) (*Project, error) {
	const op = errors.Op("project.Scan")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	project := &Project{
		Path: abs,
		Name: filepath.Base(abs),
	}
	log.Printf("...scanning %s", abs)

	var flowCellDirs, basecallsDirs []string
	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == abs {
				return errors.E(op, errors.KindIO, err)
			}
			// A directory that disappeared or could not be read
			// mid-scan yields whatever the filesystem returned.
			errors.LogAndContinueWith("walking project tree", err, p)
			project.Diagnostics = append(project.Diagnostics,
				p+": "+err.Error())
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		switch Classify(childDirNames(p)) {
		case ClassBasecalls:
			basecallsDirs = append(basecallsDirs, p)
			return fs.SkipDir
		case ClassFlowCell:
			flowCellDirs = append(flowCellDirs, p)
			return fs.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(flowCellDirs)
	log.Printf("...located %d flow cell directories", len(flowCellDirs))
	for _, dir := range flowCellDirs {
		fc, err := newFlowCell(dir, abs, &project.Diagnostics)
		if err != nil {
			return nil, err
		}
		project.FlowCells = append(project.FlowCells, fc)
	}
	sort.Slice(project.FlowCells, func(i, j int) bool {
		return project.FlowCells[i].Name < project.FlowCells[j].Name
	})

	sort.Strings(basecallsDirs)
	log.Printf("...located %d basecalls directories", len(basecallsDirs))
	for _, dir := range basecallsDirs {
		// A basecalls directory inherits pool and run from the first
		// discovered flow cell whose pool name appears as one of its
		// path components; no match leaves both unset.
		var pool, run string
		components := strings.Split(dir, string(filepath.Separator))
		for _, fc := range project.FlowCells {
			if fc.Pool != "" && contains(components, fc.Pool) {
				pool, run = fc.Pool, fc.Run
				break
			}
		}
		project.BasecallsDirs = append(project.BasecallsDirs,
			newBasecallsDir(dir, pool, run, &project.Diagnostics))
	}
	sort.Slice(project.BasecallsDirs, func(i, j int) bool {
		return project.BasecallsDirs[i].Name < project.BasecallsDirs[j].Name
	})

	return project, nil
}

// childDirNames lists the immediate child directory names of dir.
// Unreadable directories classify as nothing.
func childDirNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
