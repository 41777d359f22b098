package migration

import (
	"context"

	"jurisnet/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the graph store schema. Every statement is idempotent and
// valid on both SQLite and PostgreSQL.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createGraphsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create graphs table")
	}

	if err := r.createNodeTables(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create node tables")
	}

	if err := r.createEdgeTables(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create edge tables")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createGraphsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graphs (
			name VARCHAR(100) PRIMARY KEY,
			node_count INTEGER NOT NULL DEFAULT 0,
			edge_count INTEGER NOT NULL DEFAULT 0,
			saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *MigrationRunner) createNodeTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_nodes (
			graph_name VARCHAR(100) NOT NULL,
			node_id TEXT NOT NULL,
			PRIMARY KEY (graph_name, node_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_node_attributes (
			graph_name VARCHAR(100) NOT NULL,
			node_id TEXT NOT NULL,
			name VARCHAR(100) NOT NULL,
			kind VARCHAR(10) NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (graph_name, node_id, name)
		)
	`)
	return err
}

func (r *MigrationRunner) createEdgeTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_edges (
			graph_name VARCHAR(100) NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			weight DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (graph_name, source, target)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS graph_edge_attributes (
			graph_name VARCHAR(100) NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			name VARCHAR(100) NOT NULL,
			kind VARCHAR(10) NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (graph_name, source, target, name)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_graph_edges_target ON graph_edges(graph_name, target)",
		"CREATE INDEX IF NOT EXISTS idx_graph_node_attributes_name ON graph_node_attributes(graph_name, name)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version VARCHAR(20) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	var count int
	if err := db.GetContext(ctx, &count, db.Rebind("SELECT COUNT(*) FROM schema_version WHERE version = ?"), r.version); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, db.Rebind("INSERT INTO schema_version (version) VALUES (?)"), r.version)
	return err
}
