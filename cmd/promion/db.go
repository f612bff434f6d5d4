package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/analysis"
	"github.com/bcfcore/promion/internal/project"
	"github.com/bcfcore/promion/internal/registry"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the project registry",
	Long: `Query and maintain the facility's project registry: a local SQLite
database recording every scanned project and its flow cell metadata.`,
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE:  runDbList,
}

var dbInfoCmd = &cobra.Command{
	Use:   "info PROJECT_NAME",
	Short: "Show the registered records for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbInfo,
}

var dbAddCmd = &cobra.Command{
	Use:   "add PROJECT_DIR",
	Short: "Scan a project directory into the registry",
	Long: `Scan a PromethION project directory and record (or refresh) its flow
cell metadata in the registry. Rescanning a registered project
replaces its records wholesale.`,
	Args: cobra.ExactArgs(1),
	RunE: runDbAdd,
}

var dbRmCmd = &cobra.Command{
	Use:   "rm PROJECT_NAME",
	Short: "Remove a project from the registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbRm,
}

var dbPath string

func init() {
	dbCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Registry database path (default: from config)")
}

func openRegistry() (*registry.DB, error) {
	path := dbPath
	if path == "" {
		path = loadConfig().Registry.Path
	}
	printDebug("registry: %s", path)
	return registry.Initialize(path)
}

func runDbList(cmd *cobra.Command, args []string) error {
	db, err := openRegistry()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListProjects()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("no projects registered")
		return nil
	}
	fmt.Fprintf(os.Stdout, "#Name\tID\tFlowCells\tScannedAt\tPath\n")
	for _, e := range entries {
		id := e.ProjectID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\t%d\t%s\t%s\n",
			e.Name, id, e.FlowCells, e.ScannedAt.Format("2006-01-02 15:04"), e.Path)
	}
	return nil
}

func runDbInfo(cmd *cobra.Command, args []string) error {
	db, err := openRegistry()
	if err != nil {
		return err
	}
	defer db.Close()

	entry, err := db.GetProject(args[0])
	if err != nil {
		return err
	}
	printHeading("Project: %s", entry.Name)
	if entry.ProjectID != "" {
		printInfo("ID:      %s", entry.ProjectID)
	}
	printInfo("Path:    %s", entry.Path)
	printInfo("Scanned: %s", entry.ScannedAt.Format("2006-01-02 15:04"))

	records, err := db.GetRecords(entry.Name)
	if err != nil {
		return err
	}
	fmt.Println()
	for _, rec := range records {
		fmt.Printf("  %s\n", colorize(colorBold, rec.SubDir))
		printRecord(rec)
	}
	return nil
}

func runDbAdd(cmd *cobra.Command, args []string) error {
	p, err := project.Scan(args[0])
	if err != nil {
		return err
	}
	printDiagnostics(p.Diagnostics)

	db, err := openRegistry()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RecordProject(p, analysis.MakeProjectID(p.Name)); err != nil {
		return err
	}
	printSuccess("registered %s (%d flow cells, %d basecalls dirs)",
		p.Name, len(p.FlowCells), len(p.BasecallsDirs))
	return nil
}

func runDbRm(cmd *cobra.Command, args []string) error {
	db, err := openRegistry()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteProject(args[0]); err != nil {
		return err
	}
	printSuccess("removed %s", args[0])
	return nil
}
