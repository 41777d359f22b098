package graphml

import (
	"context"
	"os"
	"path/filepath"

	"jurisnet/domain/graph"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"
)

// Store keeps each named graph in its own GraphML file.
type Store struct {
	paths  map[string]string
	logger *logging.Logger
}

var _ ports.GraphStore = (*Store)(nil)

// NewStore maps graph names to file paths. A name without a mapping is used as a path.
func NewStore(paths map[string]string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default
	}
	return &Store{paths: paths, logger: logger}
}

func (s *Store) path(name string) string {
	if p, ok := s.paths[name]; ok {
		return p
	}
	return name
}

// Load reads the graph stored under name.
func (s *Store) Load(ctx context.Context, name string) (*graph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.StorageError("failed to open "+path, err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, errors.StorageError("failed to read "+path, err)
	}
	s.logger.Debug("loaded %s graph from %s (%d nodes, %d edges)", name, path, g.NodeCount(), g.EdgeCount())
	return g, nil
}

// Save writes g to a temporary file next to the target and renames it into place.
func (s *Store) Save(ctx context.Context, name string, g *graph.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.StorageError("failed to create "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.StorageError("failed to create temporary file in "+dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, g); err != nil {
		tmp.Close()
		return errors.StorageError("failed to write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.StorageError("failed to write "+path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.StorageError("failed to replace "+path, err)
	}
	s.logger.Debug("saved %s graph to %s (%d nodes, %d edges)", name, path, g.NodeCount(), g.EdgeCount())
	return nil
}
