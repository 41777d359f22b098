package features

import (
	"fmt"
	"sort"
)

// Key identifies one row of an entity-year table.
type Key struct {
	Entity string
	Year   int
}

// Snapshot is the read-only view of the rows assembled so far. Lag lookups take a
// Snapshot so they can only see years that were already written.
type Snapshot interface {
	Get(entity string, year int) (Row, bool)
}

// Table is the entity-year feature table. Rows are write-once and keep insertion order,
// which within a pipeline run is increasing year.
type Table struct {
	keys []Key
	rows map[Key]Row
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{rows: make(map[Key]Row)}
}

// Put stores row under (entity, year). Writing the same key twice is an error.
func (t *Table) Put(entity string, year int, row Row) error {
	key := Key{Entity: entity, Year: year}
	if _, ok := t.rows[key]; ok {
		return fmt.Errorf("feature row for %s in %d already written", entity, year)
	}
	t.keys = append(t.keys, key)
	t.rows[key] = row
	return nil
}

// Get returns the row for (entity, year).
func (t *Table) Get(entity string, year int) (Row, bool) {
	row, ok := t.rows[Key{Entity: entity, Year: year}]
	return row, ok
}

// Keys returns the row keys in insertion order.
func (t *Table) Keys() []Key {
	return append([]Key(nil), t.keys...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.keys) }

// Columns returns the sorted union of variable names across all rows.
func (t *Table) Columns() []string {
	rows := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row)
	}
	return columns(rows)
}

// NodeTable holds one row per entity with no time dimension, as produced by the
// whole-graph snapshot variables.
type NodeTable struct {
	rows map[string]Row
}

// NewNodeTable wraps per-entity rows.
func NewNodeTable(rows map[string]Row) *NodeTable {
	if rows == nil {
		rows = make(map[string]Row)
	}
	return &NodeTable{rows: rows}
}

// Entities returns the entity ids in sorted order.
func (t *NodeTable) Entities() []string {
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the row of entity.
func (t *NodeTable) Get(entity string) (Row, bool) {
	row, ok := t.rows[entity]
	return row, ok
}

// Len returns the number of entities.
func (t *NodeTable) Len() int { return len(t.rows) }

// Columns returns the sorted union of variable names across all rows.
func (t *NodeTable) Columns() []string {
	rows := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		rows = append(rows, row)
	}
	return columns(rows)
}

func columns(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for name := range row {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
