package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/analysis"
	"github.com/bcfcore/promion/internal/export"
	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info PROJECT_DIR",
	Short: "Summarise a PromethION project directory",
	Long: `Walk a PromethION project directory, identify the flow cell and
re-basecalling output it contains and print a human-readable summary
of the run metadata extracted from the MinKNOW reports.`,
	Example: `  promion info /data/PromethION_Project_123_Smith`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	spinner := ui.StartSpinner("Scanning project directory")
	p, err := project.Scan(args[0])
	if err != nil {
		spinner.Stop(false, "failed")
		return err
	}
	spinner.Stop(true, fmt.Sprintf("%d flow cells, %d basecalls dirs",
		len(p.FlowCells), len(p.BasecallsDirs)))

	printDiagnostics(p.Diagnostics)

	printHeading("Project: %s", p.Name)
	if id := analysis.MakeProjectID(p.Name); id != "" {
		printInfo("ID:      %s", id)
	}
	printInfo("Path:    %s", p.Path)

	if len(p.FlowCells) > 0 {
		fmt.Println()
		printHeading("Flow cells (%d):", len(p.FlowCells))
		for _, fc := range p.FlowCells {
			rec := export.FlowCellRecord(p, fc)
			fmt.Printf("  %s\n", colorize(colorBold, fc.String()))
			printRecord(rec)
		}
	}

	if len(p.BasecallsDirs) > 0 {
		fmt.Println()
		printHeading("Basecalls directories (%d):", len(p.BasecallsDirs))
		for _, bc := range p.BasecallsDirs {
			rec := export.BasecallsRecord(p, bc)
			fmt.Printf("  %s\n", colorize(colorBold, bc.String()))
			printRecord(rec)
		}
	}

	return nil
}

func printRecord(rec export.Record) {
	rows := []struct{ label, value string }{
		{"Run", rec.Run},
		{"Flow cell ID", rec.FlowCellID},
		{"Kit", rec.Kit},
		{"Modifications", rec.Modifications},
		{"Trim barcodes", rec.TrimBarcodes},
		{"MinKNOW", rec.Minknow},
		{"Basecalling model", rec.BasecallingModel},
		{"File types", rec.FileTypes},
		{"Reports", rec.Reports},
	}
	for _, row := range rows {
		fmt.Printf("    %-18s %s\n", row.label+":", row.value)
	}
}
