package fetch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommandAll(t *testing.T) {
	argv, err := Command(ModeAll, "seq01:/data/project", "/archive", Options{})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{
		"rsync", "-av", "--prune-empty-dirs",
		"seq01:/data/project", "/archive",
	}
	assertArgs(t, argv, want)
}

// The source path must not end in a slash: with one, rsync would copy
// the project directory's contents straight into dest instead of
// creating dest/<project>, and fetching two projects into the same
// archive directory would interleave their files.
func TestCommandKeepsProjectDirectory(t *testing.T) {
	for _, src := range []string{
		"seq01:/data/PromethION_Project_123_Smith",
		"seq01:/data/PromethION_Project_123_Smith/",
	} {
		argv, err := Command(ModeAll, src, "/archive", Options{})
		if err != nil {
			t.Fatalf("Command(%q): %v", src, err)
		}
		got := argv[len(argv)-2]
		if got != "seq01:/data/PromethION_Project_123_Smith" {
			t.Errorf("src argument for %q = %q, want no trailing slash", src, got)
		}
	}
}

func TestCommandBam(t *testing.T) {
	argv, err := Command(ModeBam, "seq01:/data/project/", "/archive", Options{
		Rsync:   "/usr/local/bin/rsync",
		BwLimit: 10000,
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{
		"/usr/local/bin/rsync", "-av", "--prune-empty-dirs",
		"--dry-run", "--bwlimit=10000",
		"--include=*/",
		"--include=bam_pass/*/*.bam",
		"--include=bam_pass/*/*.bai",
		"--include=pass/*/*.bam",
		"--include=pass/*/*.bai",
		"--exclude=*",
		"seq01:/data/project", "/archive",
	}
	assertArgs(t, argv, want)
}

func TestCommandReports(t *testing.T) {
	argv, err := Command(ModeReports, "/data/project", "/archive", Options{})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	joined := strings.Join(argv, " ")
	for _, want := range []string{
		"--include=report_*",
		"--include=sample_sheet_*",
		"--exclude=*",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %q", want, joined)
		}
	}
}

func TestCommandExtraIncludesBeforeExclude(t *testing.T) {
	argv, err := Command(ModeBam, "/src", "/dest", Options{
		ExtraIncludes: []string{"pod5/*.pod5"},
	})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	extraIdx, excludeIdx := -1, -1
	for i, arg := range argv {
		switch arg {
		case "--include=pod5/*.pod5":
			extraIdx = i
		case "--exclude=*":
			excludeIdx = i
		}
	}
	if extraIdx == -1 {
		t.Fatalf("extra include missing from %v", argv)
	}
	if extraIdx > excludeIdx {
		t.Errorf("extra include after catch-all exclude: %v", argv)
	}
}

func TestCommandChmod(t *testing.T) {
	argv, err := Command(ModeAll, "/src", "/dest", Options{Chmod: "g+rwX,o-rwx"})
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if !strings.Contains(strings.Join(argv, " "), "--chmod=g+rwX,o-rwx") {
		t.Errorf("chmod flag missing from %v", argv)
	}
}

func TestCommandUnknownMode(t *testing.T) {
	if _, err := Command(Mode("everything"), "/src", "/dest", Options{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRunExecutes(t *testing.T) {
	// Stand in for rsync with a shell no-op so Run is exercised
	// without depending on rsync being installed.
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")

	var out bytes.Buffer
	err := Run(context.Background(),
		[]string{"/bin/sh", "-c", "echo done > " + marker}, &out, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("command did not run: %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), []string{"/bin/sh", "-c", "exit 3"}, &out, &out); err == nil {
		t.Fatal("expected error for failing command")
	}
	if err := Run(context.Background(), nil, &out, &out); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("argv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
