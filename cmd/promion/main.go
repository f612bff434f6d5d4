package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	noColor bool
	quiet   bool
	verbose bool
	debug   bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "promion",
	Short: "PromethION sequencing data manager",
	Long: `promion examines, fetches and documents the output of PromethION
sequencing runs for a core facility.

It walks project directories delivered by the sequencer, identifies
flow cell and re-basecalling output by the facility's directory naming
conventions, and extracts run metadata from the MinKNOW report files
found alongside the data.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Summarise a project directory
  promion info /data/PromethION_Project_123_Smith

  # Dump flow cell metadata as TSV
  promion metadata /data/PromethION_Project_123_Smith

  # Set up an analysis directory
  promion setup /data/PromethION_Project_123_Smith --user "A User" --pi Smith

  # Fetch BAM files from the sequencer host
  promion fetch seq01:/data/PromethION_Project_123_Smith /archive --mode bam

  # Start the registry API server
  promion server --port 8080`,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	// Add commands to root
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serverCmd)

	// Add subcommands to db
	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbAddCmd)
	dbCmd.AddCommand(dbRmCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
