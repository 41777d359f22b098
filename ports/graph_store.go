package ports

import (
	"context"

	"jurisnet/domain/graph"
)

// Names of the two source graphs every store holds.
const (
	CitationGraph = "citation"
	VoteGraph     = "vote"
)

// GraphStore persists attributed directed graphs under a name
type GraphStore interface {
	Load(ctx context.Context, name string) (*graph.Graph, error)
	// Save replaces any graph previously stored under name.
	Save(ctx context.Context, name string, g *graph.Graph) error
}

// SourceTables locates the structured tables the source graphs are built from.
type SourceTables struct {
	Cases      string
	Citations  string
	Authorship string
	Judges     string
}

// GraphBuilder turns the structured source tables into the citation and vote graphs
type GraphBuilder interface {
	Build(ctx context.Context, in SourceTables) (citations, votes *graph.Graph, err error)
}
