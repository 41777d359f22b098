// Package sqlstore keeps graphs in a relational database through sqlx. SQLite
// (modernc.org/sqlite, driver "sqlite") and PostgreSQL (lib/pq, driver "postgres")
// are supported.
package sqlstore

import (
	"context"
	"fmt"

	"jurisnet/domain/graph"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/internal/migration"
	"jurisnet/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store implements ports.GraphStore on a SQL database.
type Store struct {
	db     *sqlx.DB
	logger *logging.Logger
}

var _ ports.GraphStore = (*Store)(nil)

// Open connects to the database and brings the schema up to date.
func Open(ctx context.Context, driver, dsn string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.StorageError(fmt.Sprintf("failed to connect to %s", driver), err)
	}
	if driver == "sqlite" {
		// one connection keeps ":memory:" databases shared and serialises writers
		db.SetMaxOpenConns(1)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.StorageError("failed to migrate graph store", err)
	}
	logger.Debug("graph store ready (%s, schema %s)", driver, runner.Version())
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type nodeRow struct {
	NodeID string `db:"node_id"`
}

type attributeRow struct {
	NodeID string `db:"node_id"`
	Source string `db:"source"`
	Target string `db:"target"`
	Name   string `db:"name"`
	Kind   string `db:"kind"`
	Value  string `db:"value"`
}

type edgeRow struct {
	Source string  `db:"source"`
	Target string  `db:"target"`
	Weight float64 `db:"weight"`
}

// Load restores the graph saved under name.
func (s *Store) Load(ctx context.Context, name string) (*graph.Graph, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, s.db.Rebind(`SELECT COUNT(*) FROM graphs WHERE name = ?`), name); err != nil {
		return nil, errors.StorageError("failed to look up graph "+name, err)
	}
	if count == 0 {
		return nil, errors.StorageError("graph not found", fmt.Errorf("no graph named %q", name))
	}

	var nodes []nodeRow
	if err := s.db.SelectContext(ctx, &nodes, s.db.Rebind(`
		SELECT node_id FROM graph_nodes WHERE graph_name = ? ORDER BY node_id`), name); err != nil {
		return nil, errors.StorageError("failed to load nodes of "+name, err)
	}
	var nodeAttrs []attributeRow
	if err := s.db.SelectContext(ctx, &nodeAttrs, s.db.Rebind(`
		SELECT node_id, '' AS source, '' AS target, name, kind, value
		FROM graph_node_attributes WHERE graph_name = ?`), name); err != nil {
		return nil, errors.StorageError("failed to load node attributes of "+name, err)
	}
	var edges []edgeRow
	if err := s.db.SelectContext(ctx, &edges, s.db.Rebind(`
		SELECT source, target, weight FROM graph_edges WHERE graph_name = ? ORDER BY source, target`), name); err != nil {
		return nil, errors.StorageError("failed to load edges of "+name, err)
	}
	var edgeAttrs []attributeRow
	if err := s.db.SelectContext(ctx, &edgeAttrs, s.db.Rebind(`
		SELECT '' AS node_id, source, target, name, kind, value
		FROM graph_edge_attributes WHERE graph_name = ?`), name); err != nil {
		return nil, errors.StorageError("failed to load edge attributes of "+name, err)
	}

	byNode := make(map[string]graph.Attributes, len(nodes))
	for _, a := range nodeAttrs {
		v, err := graph.ParseValue(a.Kind, a.Value)
		if err != nil {
			return nil, errors.StorageError(fmt.Sprintf("bad attribute %s on node %s", a.Name, a.NodeID), err)
		}
		if byNode[a.NodeID] == nil {
			byNode[a.NodeID] = make(graph.Attributes)
		}
		byNode[a.NodeID][a.Name] = v
	}
	byEdge := make(map[[2]string]graph.Attributes, len(edges))
	for _, a := range edgeAttrs {
		v, err := graph.ParseValue(a.Kind, a.Value)
		if err != nil {
			return nil, errors.StorageError(fmt.Sprintf("bad attribute %s on edge %s->%s", a.Name, a.Source, a.Target), err)
		}
		k := [2]string{a.Source, a.Target}
		if byEdge[k] == nil {
			byEdge[k] = make(graph.Attributes)
		}
		byEdge[k][a.Name] = v
	}

	g := graph.New()
	for _, n := range nodes {
		g.AddNode(n.NodeID, byNode[n.NodeID])
	}
	for _, e := range edges {
		g.AddEdge(e.Source, e.Target, e.Weight, byEdge[[2]string{e.Source, e.Target}])
	}
	s.logger.Debug("loaded %s graph (%d nodes, %d edges)", name, g.NodeCount(), g.EdgeCount())
	return g, nil
}

// Save replaces the graph stored under name in a single transaction.
func (s *Store) Save(ctx context.Context, name string, g *graph.Graph) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"graph_edge_attributes", "graph_edges", "graph_node_attributes", "graph_nodes", "graphs"} {
		column := "graph_name"
		if table == "graphs" {
			column = "name"
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column)), name); err != nil {
			return errors.StorageError("failed to clear graph "+name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO graphs (name, node_count, edge_count) VALUES (?, ?, ?)`),
		name, g.NodeCount(), g.EdgeCount()); err != nil {
		return errors.StorageError("failed to register graph "+name, err)
	}
	if err := insertNodes(ctx, tx, name, g); err != nil {
		return errors.StorageError("failed to save nodes of "+name, err)
	}
	if err := insertEdges(ctx, tx, name, g); err != nil {
		return errors.StorageError("failed to save edges of "+name, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageError("failed to commit graph "+name, err)
	}
	s.logger.Debug("saved %s graph (%d nodes, %d edges)", name, g.NodeCount(), g.EdgeCount())
	return nil
}

func insertNodes(ctx context.Context, tx *sqlx.Tx, name string, g *graph.Graph) error {
	nodeStmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO graph_nodes (graph_name, node_id) VALUES (?, ?)`))
	if err != nil {
		return err
	}
	defer nodeStmt.Close()
	attrStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO graph_node_attributes (graph_name, node_id, name, kind, value) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer attrStmt.Close()

	for _, id := range g.Nodes() {
		if _, err := nodeStmt.ExecContext(ctx, name, id); err != nil {
			return err
		}
		attrs, _ := g.Node(id)
		for attr, v := range attrs {
			if _, err := attrStmt.ExecContext(ctx, name, id, attr, graph.KindOf(v), graph.FormatValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sqlx.Tx, name string, g *graph.Graph) error {
	edgeStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO graph_edges (graph_name, source, target, weight) VALUES (?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	attrStmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO graph_edge_attributes (graph_name, source, target, name, kind, value) VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer attrStmt.Close()

	for _, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, name, e.From, e.To, e.Weight); err != nil {
			return err
		}
		for attr, v := range e.Attrs {
			if _, err := attrStmt.ExecContext(ctx, name, e.From, e.To, attr, graph.KindOf(v), graph.FormatValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Graphs lists the stored graph names with their sizes.
func (s *Store) Graphs(ctx context.Context) (map[string][2]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, node_count, edge_count FROM graphs`)
	if err != nil {
		return nil, errors.StorageError("failed to list graphs", err)
	}
	defer rows.Close()

	out := make(map[string][2]int)
	for rows.Next() {
		var name string
		var nodes, edges int
		if err := rows.Scan(&name, &nodes, &edges); err != nil {
			return nil, errors.StorageError("failed to scan graph row", err)
		}
		out[name] = [2]int{nodes, edges}
	}
	return out, rows.Err()
}
