package ports

import (
	"context"

	"jurisnet/domain/features"
	"jurisnet/domain/run"
)

// Record is one row of a structured source table, keyed by column header
type Record map[string]string

// TableSource reads the structured tables (cases, citations, authorship, judges)
// that the source graphs are built from
type TableSource interface {
	ReadRecords(ctx context.Context, path string) ([]Record, error)
}

// FeatureWriter writes assembled feature tables. name identifies the output
// (e.g. "decision_variables"), entity is the entity column header.
type FeatureWriter interface {
	WriteTable(ctx context.Context, name, entity string, table *features.Table) error
	WriteNodeTable(ctx context.Context, name, entity string, table *features.NodeTable) error
}

// ManifestWriter is implemented by feature writers that also record what each run
// read and wrote.
type ManifestWriter interface {
	WriteManifest(ctx context.Context, m *run.Manifest) error
}
