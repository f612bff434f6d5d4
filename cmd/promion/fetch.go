package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch SOURCE DEST",
	Short: "Fetch project data from the sequencer host with rsync",
	Long: `Transfer a PromethION project directory (or a slice of it) from the
sequencer host to local storage using rsync. SOURCE may be a local
path or a remote rsync spec such as seq01:/data/project.

Modes:
  all      the complete project tree
  bam      only basecalled BAM files and their indexes
  reports  only sequencing reports and sample sheets`,
	Example: `  promion fetch seq01:/data/PromethION_Project_123_Smith /archive
  promion fetch seq01:/data/PromethION_Project_123_Smith /archive --mode bam --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runFetch,
}

var (
	fetchMode    string
	fetchDryRun  bool
	fetchBwLimit int
)

func init() {
	fetchCmd.Flags().StringVar(&fetchMode, "mode", "all", "What to transfer (all|bam|reports)")
	fetchCmd.Flags().BoolVarP(&fetchDryRun, "dry-run", "n", false, "Show what would be transferred without doing it")
	fetchCmd.Flags().IntVar(&fetchBwLimit, "bwlimit", 0, "Bandwidth limit in KB/s (default: from config)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	bwLimit := fetchBwLimit
	if bwLimit == 0 {
		bwLimit = cfg.Transfer.BwLimit
	}

	argv, err := fetch.Command(fetch.Mode(fetchMode), args[0], args[1], fetch.Options{
		Rsync:         cfg.Transfer.Rsync,
		BwLimit:       bwLimit,
		Chmod:         cfg.Permissions.Mode,
		DryRun:        fetchDryRun,
		ExtraIncludes: cfg.Transfer.ExtraIncludes,
	})
	if err != nil {
		return err
	}
	printDebug("running: %s", strings.Join(argv, " "))

	// Let an interrupt kill the transfer cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fetch.Run(ctx, argv, os.Stdout, os.Stderr); err != nil {
		return err
	}
	if fetchDryRun {
		printInfo("dry run, nothing transferred")
	} else {
		printSuccess("transfer complete")
	}
	return nil
}
