// Package registry provides SQLite-backed storage for scanned
// projects and their flow cell records, so the facility can query
// what was sequenced without re-walking the project directories.
package registry

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bcfcore/promion/internal/errors"
	"github.com/bcfcore/promion/internal/export"
	"github.com/bcfcore/promion/internal/project"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
	path string
}

// ProjectEntry is one registered project.
type ProjectEntry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	ProjectID string    `json:"project_id,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
	FlowCells int       `json:"flow_cells"`
}

// Initialize creates and configures the database connection
func Initialize(path string) (*DB, error) {
	const op = errors.Op("registry.Initialize")
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000&_sync=NORMAL")
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase,
			fmt.Errorf("failed to open database: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",   // Write-ahead logging
		"PRAGMA synchronous = NORMAL", // Balanced safety/speed
		"PRAGMA busy_timeout = 10000", // 10 second timeout
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, errors.E(op, errors.KindDatabase,
				fmt.Errorf("failed to set pragma %s: %w", pragma, err))
		}
	}

	if err := createTables(db); err != nil {
		return nil, errors.E(op, errors.KindDatabase,
			fmt.Errorf("failed to create tables: %w", err))
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{DB: db, path: path}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		project_id TEXT,
		scanned_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS flow_cells (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL REFERENCES projects(name) ON DELETE CASCADE,
		run TEXT,
		pool_name TEXT,
		sub_dir TEXT NOT NULL,
		flow_cell_id TEXT,
		reports TEXT,
		kit TEXT,
		modifications TEXT,
		trim_barcodes TEXT,
		minknow TEXT,
		basecalling_model TEXT,
		file_types TEXT,
		UNIQUE(project_name, sub_dir)
	);

	CREATE INDEX IF NOT EXISTS idx_flow_cells_project ON flow_cells(project_name);
	CREATE INDEX IF NOT EXISTS idx_flow_cells_id ON flow_cells(flow_cell_id);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordProject inserts or replaces a project and all of its flow
// cell records in a single transaction. Existing records for the
// project are replaced wholesale; the registry always reflects the
// latest scan.
func (db *DB) RecordProject(p *project.Project, projectID string) error {
	const op = errors.Op("registry.DB.RecordProject")

	tx, err := db.Begin()
	if err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO projects (name, path, project_id, scanned_at)
		VALUES (?, ?, ?, ?)
	`, p.Name, p.Path, projectID, time.Now().UTC())
	if err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}

	if _, err := tx.Exec(`DELETE FROM flow_cells WHERE project_name = ?`, p.Name); err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO flow_cells (
			project_name, run, pool_name, sub_dir, flow_cell_id,
			reports, kit, modifications, trim_barcodes, minknow,
			basecalling_model, file_types
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}
	defer stmt.Close()

	for _, rec := range export.Records(p) {
		_, err := stmt.Exec(
			p.Name, rec.Run, rec.PoolName, rec.SubDir, rec.FlowCellID,
			rec.Reports, rec.Kit, rec.Modifications, rec.TrimBarcodes,
			rec.Minknow, rec.BasecallingModel, rec.FileTypes)
		if err != nil {
			return errors.E(op, errors.KindDatabase, err)
		}
	}

	return errors.Wrap(op, tx.Commit())
}

// ListProjects returns all registered projects ordered by name, with
// their flow cell record counts.
func (db *DB) ListProjects() ([]ProjectEntry, error) {
	const op = errors.Op("registry.DB.ListProjects")
	rows, err := db.Query(`
		SELECT p.name, p.path, COALESCE(p.project_id, ''), p.scanned_at,
		       COUNT(f.id)
		FROM projects p
		LEFT JOIN flow_cells f ON f.project_name = p.name
		GROUP BY p.name
		ORDER BY p.name
	`)
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	defer rows.Close()

	var entries []ProjectEntry
	for rows.Next() {
		var e ProjectEntry
		if err := rows.Scan(&e.Name, &e.Path, &e.ProjectID, &e.ScannedAt, &e.FlowCells); err != nil {
			return nil, errors.E(op, errors.KindDatabase, err)
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(op, rows.Err())
}

// GetProject retrieves a registered project by name.
func (db *DB) GetProject(name string) (*ProjectEntry, error) {
	const op = errors.Op("registry.DB.GetProject")
	e := &ProjectEntry{}
	err := db.QueryRow(`
		SELECT p.name, p.path, COALESCE(p.project_id, ''), p.scanned_at,
		       COUNT(f.id)
		FROM projects p
		LEFT JOIN flow_cells f ON f.project_name = p.name
		WHERE p.name = ?
		GROUP BY p.name
	`, name).Scan(&e.Name, &e.Path, &e.ProjectID, &e.ScannedAt, &e.FlowCells)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.KindDatabase,
			fmt.Sprintf("project not found: %s", name))
	}
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	return e, nil
}

// GetRecords returns the flow cell records for a project in their
// stored (scan) order.
func (db *DB) GetRecords(name string) ([]export.Record, error) {
	const op = errors.Op("registry.DB.GetRecords")
	rows, err := db.Query(`
		SELECT run, pool_name, sub_dir, flow_cell_id, reports, kit,
		       modifications, trim_barcodes, minknow, basecalling_model,
		       file_types
		FROM flow_cells
		WHERE project_name = ?
		ORDER BY id
	`, name)
	if err != nil {
		return nil, errors.E(op, errors.KindDatabase, err)
	}
	defer rows.Close()

	var records []export.Record
	for rows.Next() {
		var r export.Record
		err := rows.Scan(&r.Run, &r.PoolName, &r.SubDir, &r.FlowCellID,
			&r.Reports, &r.Kit, &r.Modifications, &r.TrimBarcodes,
			&r.Minknow, &r.BasecallingModel, &r.FileTypes)
		if err != nil {
			return nil, errors.E(op, errors.KindDatabase, err)
		}
		records = append(records, r)
	}
	return records, errors.Wrap(op, rows.Err())
}

// FindFlowCell returns the records carrying the given flow cell ID
// across all projects, paired with the owning project names.
func (db *DB) FindFlowCell(flowCellID string) ([]ProjectEntry, []export.Record, error) {
	const op = errors.Op("registry.DB.FindFlowCell")
	rows, err := db.Query(`
		SELECT p.name, p.path, COALESCE(p.project_id, ''), p.scanned_at,
		       f.run, f.pool_name, f.sub_dir, f.flow_cell_id, f.reports,
		       f.kit, f.modifications, f.trim_barcodes, f.minknow,
		       f.basecalling_model, f.file_types
		FROM flow_cells f
		JOIN projects p ON p.name = f.project_name
		WHERE f.flow_cell_id = ?
		ORDER BY p.name, f.id
	`, flowCellID)
	if err != nil {
		return nil, nil, errors.E(op, errors.KindDatabase, err)
	}
	defer rows.Close()

	var entries []ProjectEntry
	var records []export.Record
	for rows.Next() {
		var e ProjectEntry
		var r export.Record
		err := rows.Scan(&e.Name, &e.Path, &e.ProjectID, &e.ScannedAt,
			&r.Run, &r.PoolName, &r.SubDir, &r.FlowCellID, &r.Reports,
			&r.Kit, &r.Modifications, &r.TrimBarcodes, &r.Minknow,
			&r.BasecallingModel, &r.FileTypes)
		if err != nil {
			return nil, nil, errors.E(op, errors.KindDatabase, err)
		}
		entries = append(entries, e)
		records = append(records, r)
	}
	return entries, records, errors.Wrap(op, rows.Err())
}

// DeleteProject removes a project and its flow cell records.
func (db *DB) DeleteProject(name string) error {
	const op = errors.Op("registry.DB.DeleteProject")
	result, err := db.Exec(`DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.E(op, errors.KindDatabase, err)
	}
	if n == 0 {
		return errors.E(op, errors.KindDatabase,
			fmt.Sprintf("project not found: %s", name))
	}
	return nil
}
