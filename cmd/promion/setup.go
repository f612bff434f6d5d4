package main

import (
	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/analysis"
	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup PROJECT_DIR",
	Short: "Set up an analysis directory for a project",
	Long: `Scan a PromethION project directory and create the matching analysis
directory next to it (or under --top-dir): project metadata, the flow
cell summary table, copies of the sequencing reports, and the working
subdirectories the facility's downstream pipelines expect.

An existing analysis directory is never overwritten.`,
	Example: `  promion setup /data/PromethION_Project_123_Smith \
      --user "A User" --pi Smith --application "cDNA sequencing" \
      --organism Human --samples samples.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSetup,
}

var (
	setupTopDir      string
	setupUser        string
	setupPI          string
	setupApplication string
	setupOrganism    string
	setupComments    string
	setupSamples     string
)

func init() {
	setupCmd.Flags().StringVar(&setupTopDir, "top-dir", "", "Directory to create the analysis directory in (default: next to the project)")
	setupCmd.Flags().StringVar(&setupUser, "user", "", "User the project belongs to")
	setupCmd.Flags().StringVar(&setupPI, "pi", "", "Principal investigator")
	setupCmd.Flags().StringVar(&setupApplication, "application", "", "Sequencing application")
	setupCmd.Flags().StringVar(&setupOrganism, "organism", "", "Organism(s) sequenced")
	setupCmd.Flags().StringVar(&setupComments, "comments", "", "Free-text comments")
	setupCmd.Flags().StringVar(&setupSamples, "samples", "", "CSV file with sample,barcode[,flowcell] lines")
}

func runSetup(cmd *cobra.Command, args []string) error {
	p, err := project.Scan(args[0])
	if err != nil {
		return err
	}
	printDiagnostics(p.Diagnostics)

	var a *analysis.AnalysisDir
	err = ui.WithSpinner("Setting up analysis directory", func() error {
		var err error
		a, err = analysis.Create(p, setupTopDir, analysis.CreateOptions{
			User:        setupUser,
			PI:          setupPI,
			Application: setupApplication,
			Organism:    setupOrganism,
			Comments:    setupComments,
			SamplesFile: setupSamples,
		})
		return err
	})
	if err != nil {
		return err
	}

	printSuccess("created %s", a.Path)
	if a.Info.ID == "" {
		printWarning("%q doesn't follow the PromethION_Project_<n>_<name> convention; no project ID assigned", p.Name)
	}
	return nil
}
