// Package fetch builds and runs the rsync commands that pull a
// project directory, or selected slices of it, from the sequencer
// host to local storage.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bcfcore/promion/internal/errors"
)

// Mode selects which part of a project an rsync transfer covers.
type Mode string

const (
	// ModeAll transfers the complete project tree.
	ModeAll Mode = "all"
	// ModeBam transfers only basecalled BAM output and indexes.
	ModeBam Mode = "bam"
	// ModeReports transfers only sequencing reports and sample sheets.
	ModeReports Mode = "reports"
)

// bamIncludes filter a transfer down to the BAM files under the
// standard basecalling output directories, keeping the directory
// structure around them.
var bamIncludes = []string{
	"--include=*/",
	"--include=bam_pass/*/*.bam",
	"--include=bam_pass/*/*.bai",
	"--include=pass/*/*.bam",
	"--include=pass/*/*.bai",
	"--exclude=*",
}

// reportIncludes filter a transfer down to the report and sample
// sheet files.
var reportIncludes = []string{
	"--include=*/",
	"--include=report_*",
	"--include=sample_sheet_*",
	"--exclude=*",
}

// Options carries transfer settings, usually taken from the
// configuration file.
type Options struct {
	Rsync         string   // rsync executable; "rsync" when empty
	BwLimit       int      // KB/s; 0 = unlimited
	Chmod         string   // rsync --chmod spec applied to fetched data
	DryRun        bool
	ExtraIncludes []string // extra include patterns, before the final exclude
}

// Command builds the full rsync argument vector (executable first)
// for transferring src into dest. src may be a remote
// "host:/path" spec; any trailing slash is stripped so rsync creates
// the project directory itself inside dest rather than spilling its
// contents there.
func Command(mode Mode, src, dest string, opts Options) ([]string, error) {
	const op = errors.Op("fetch.Command")

	rsync := opts.Rsync
	if rsync == "" {
		rsync = "rsync"
	}

	args := []string{rsync, "-av", "--prune-empty-dirs"}
	if opts.DryRun {
		args = append(args, "--dry-run")
	}
	if opts.BwLimit > 0 {
		args = append(args, fmt.Sprintf("--bwlimit=%d", opts.BwLimit))
	}
	if opts.Chmod != "" {
		args = append(args, "--chmod="+opts.Chmod)
	}

	var includes []string
	switch mode {
	case ModeAll:
		// no filters
	case ModeBam:
		includes = bamIncludes
	case ModeReports:
		includes = reportIncludes
	default:
		return nil, errors.E(op, fmt.Sprintf("%q: unknown fetch mode", mode))
	}
	if len(includes) > 0 {
		// Extra includes go before the final catch-all exclude.
		args = append(args, includes[:len(includes)-1]...)
		for _, inc := range opts.ExtraIncludes {
			args = append(args, "--include="+inc)
		}
		args = append(args, includes[len(includes)-1])
	}

	args = append(args, strings.TrimRight(src, "/"), dest)
	return args, nil
}

// Run executes an rsync argument vector built by Command, streaming
// its output to the given writers.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	const op = errors.Op("fetch.Run")
	if len(argv) == 0 {
		return errors.E(op, "empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return errors.E(op, errors.KindIO,
			fmt.Errorf("%s: %w", strings.Join(argv, " "), err))
	}
	return nil
}
