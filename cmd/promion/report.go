package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/analysis"
)

var reportCmd = &cobra.Command{
	Use:   "report ANALYSIS_DIR",
	Short: "Report project metadata from an analysis directory",
	Long: `Render the metadata recorded in an analysis directory using a
comma-separated field template, either as readable "field: value"
lines or as a single tab-delimited line for collation across
projects.

The template may be given inline with --fields, or by name with
--template to use one of the templates from the configuration file.`,
	Example: `  promion report /analysis/PromethION_Project_123_Smith_analysis
  promion report --mode tsv --template bcf /analysis/PromethION_Project_123_Smith_analysis
  promion report --fields name,id,nsamples /analysis/PromethION_Project_123_Smith_analysis`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportMode     string
	reportFields   string
	reportTemplate string
)

func init() {
	reportCmd.Flags().StringVar(&reportMode, "mode", "summary", "Output mode (summary|tsv)")
	reportCmd.Flags().StringVar(&reportFields, "fields", "", "Comma-separated list of fields to report")
	reportCmd.Flags().StringVar(&reportTemplate, "template", "", "Named field template from the configuration")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := analysis.Open(args[0])
	if err != nil {
		return err
	}

	fields := reportFields
	if fields == "" {
		name := reportTemplate
		if name == "" {
			name = "summary"
		}
		cfg := loadConfig()
		tpl, ok := cfg.Template(name)
		if !ok {
			return fmt.Errorf("unknown reporting template: %s", name)
		}
		fields = tpl
	}

	out, err := a.Report(reportMode, fields)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
