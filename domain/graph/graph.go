// Package graph holds the attributed directed graph shared by the citation graph,
// the vote graph and every derived agreement network.
package graph

import (
	"sort"
)

// Edge is a directed, weighted edge. Attrs carries everything except the weight,
// typically year and, on vote edges, ad_hoc.
type Edge struct {
	From   string
	To     string
	Weight float64
	Attrs  Attributes
}

// Year returns the edge's year attribute.
func (e Edge) Year() (int, bool) {
	return e.Attrs.Int(AttrYear)
}

func (e *Edge) clone() *Edge {
	return &Edge{From: e.From, To: e.To, Weight: e.Weight, Attrs: e.Attrs.Clone()}
}

// Graph is a simple directed graph: at most one edge per ordered node pair.
// The zero value is not usable; call New.
type Graph struct {
	nodes map[string]Attributes
	out   map[string]map[string]*Edge
	in    map[string]map[string]*Edge
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Attributes),
		out:   make(map[string]map[string]*Edge),
		in:    make(map[string]map[string]*Edge),
	}
}

// AddNode inserts id or merges attrs into an existing node's attributes.
func (g *Graph) AddNode(id string, attrs Attributes) {
	existing, ok := g.nodes[id]
	if !ok {
		existing = make(Attributes, len(attrs))
		g.nodes[id] = existing
		g.out[id] = make(map[string]*Edge)
		g.in[id] = make(map[string]*Edge)
	}
	for k, v := range attrs {
		existing[k] = v
	}
}

// AddEdge inserts or replaces the edge from -> to. Missing endpoints are created
// without attributes.
func (g *Graph) AddEdge(from, to string, weight float64, attrs Attributes) {
	g.AddNode(from, nil)
	g.AddNode(to, nil)
	if _, ok := g.out[from][to]; !ok {
		g.edges++
	}
	e := &Edge{From: from, To: to, Weight: weight, Attrs: attrs.Clone()}
	g.out[from][to] = e
	g.in[to][from] = e
}

// SetWeight changes the weight of an existing edge and reports whether it existed.
func (g *Graph) SetWeight(from, to string, weight float64) bool {
	e, ok := g.out[from][to]
	if ok {
		e.Weight = weight
	}
	return ok
}

// RemoveEdge deletes from -> to if present.
func (g *Graph) RemoveEdge(from, to string) {
	if _, ok := g.out[from][to]; !ok {
		return
	}
	delete(g.out[from], to)
	delete(g.in[to], from)
	g.edges--
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether from -> to is in the graph.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.out[from][to]
	return ok
}

// Node returns the attributes of id. The map is owned by the graph.
func (g *Graph) Node(id string) (Attributes, bool) {
	attrs, ok := g.nodes[id]
	return attrs, ok
}

// Edge returns a copy of the edge from -> to.
func (g *Graph) Edge(from, to string) (Edge, bool) {
	e, ok := g.out[from][to]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all node ids in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns copies of all edges ordered by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, from := range g.Nodes() {
		for _, to := range sortedKeys(g.out[from]) {
			out = append(out, *g.out[from][to])
		}
	}
	return out
}

// Successors returns the sorted targets of edges leaving id.
func (g *Graph) Successors(id string) []string {
	return sortedKeys(g.out[id])
}

// Predecessors returns the sorted sources of edges entering id.
func (g *Graph) Predecessors(id string) []string {
	return sortedKeys(g.in[id])
}

// OutEdges returns copies of the edges leaving id ordered by target.
func (g *Graph) OutEdges(id string) []Edge {
	targets := sortedKeys(g.out[id])
	out := make([]Edge, len(targets))
	for i, to := range targets {
		out[i] = *g.out[id][to]
	}
	return out
}

// InEdges returns copies of the edges entering id ordered by source.
func (g *Graph) InEdges(id string) []Edge {
	sources := sortedKeys(g.in[id])
	out := make([]Edge, len(sources))
	for i, from := range sources {
		out[i] = *g.in[id][from]
	}
	return out
}

// InDegree counts edges entering id; a self loop counts once.
func (g *Graph) InDegree(id string) int { return len(g.in[id]) }

// OutDegree counts edges leaving id; a self loop counts once.
func (g *Graph) OutDegree(id string) int { return len(g.out[id]) }

// Clone returns a deep copy.
func (g *Graph) Clone() *Graph {
	c := New()
	for id, attrs := range g.nodes {
		c.AddNode(id, attrs)
	}
	for from, targets := range g.out {
		for to, e := range targets {
			ce := e.clone()
			c.out[from][to] = ce
			c.in[to][from] = ce
		}
	}
	c.edges = g.edges
	return c
}

// Reverse returns a deep copy with every edge flipped; attributes are kept.
func (g *Graph) Reverse() *Graph {
	r := New()
	for id, attrs := range g.nodes {
		r.AddNode(id, attrs)
	}
	for from, targets := range g.out {
		for to, e := range targets {
			r.AddEdge(to, from, e.Weight, e.Attrs)
		}
	}
	return r
}

// Descendants returns every node reachable from id, excluding id itself.
func (g *Graph) Descendants(id string) []string {
	seen := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range g.out[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	delete(seen, id)
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*Edge) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
