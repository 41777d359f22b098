// Package algebra implements the graph algebra used to build agreement networks:
// time-cutoff subgraphs, edge weight transforms, and the two composition primitives
// MultiplyGraphs and AddGraphs. Every operation returns a new graph and leaves its
// inputs untouched.
package algebra

import (
	"jurisnet/domain/graph"
)

// ExtractSubgraph returns the nodes and edges of g whose year is at most cutoff.
// Nodes without a year are dropped, and an edge survives only when both of its
// endpoints do.
func ExtractSubgraph(g *graph.Graph, cutoff int) *graph.Graph {
	sub := graph.New()
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if year, ok := attrs.Int(graph.AttrYear); ok && year <= cutoff {
			sub.AddNode(id, attrs)
		}
	}
	for _, e := range g.Edges() {
		year, ok := e.Year()
		if !ok || year > cutoff {
			continue
		}
		if sub.HasNode(e.From) && sub.HasNode(e.To) {
			sub.AddEdge(e.From, e.To, e.Weight, e.Attrs)
		}
	}
	return sub
}

// BinarizeGraph sets every non-zero weight to 1.
func BinarizeGraph(g *graph.Graph) *graph.Graph {
	return mapWeights(g, func(w float64) float64 {
		if w != 0 {
			return 1
		}
		return w
	})
}

// SimplifyWeights replaces each weight by its sign.
func SimplifyWeights(g *graph.Graph) *graph.Graph {
	return mapWeights(g, func(w float64) float64 {
		switch {
		case w > 0:
			return 1
		case w < 0:
			return -1
		}
		return w
	})
}

func mapWeights(g *graph.Graph, fn func(float64) float64) *graph.Graph {
	out := g.Clone()
	for _, e := range g.Edges() {
		out.SetWeight(e.From, e.To, fn(e.Weight))
	}
	return out
}

// RemoveSelfLoops drops every edge (n, n).
func RemoveSelfLoops(g *graph.Graph) *graph.Graph {
	out := g.Clone()
	for _, id := range g.Nodes() {
		out.RemoveEdge(id, id)
	}
	return out
}

// RemoveNegativeEdges drops every edge with a negative weight.
func RemoveNegativeEdges(g *graph.Graph) *graph.Graph {
	out := g.Clone()
	for _, e := range g.Edges() {
		if e.Weight < 0 {
			out.RemoveEdge(e.From, e.To)
		}
	}
	return out
}

// IsolateNodeType keeps the nodes where attribute is absent or renders as value,
// together with the edges between them.
func IsolateNodeType(g *graph.Graph, attribute, value string) *graph.Graph {
	sub := graph.New()
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if !attrs.Has(attribute) {
			sub.AddNode(id, attrs)
			continue
		}
		if s, ok := attrs.String(attribute); ok && s == value {
			sub.AddNode(id, attrs)
		}
	}
	for _, e := range g.Edges() {
		if sub.HasNode(e.From) && sub.HasNode(e.To) {
			sub.AddEdge(e.From, e.To, e.Weight, e.Attrs)
		}
	}
	return sub
}

// Undirected returns g added to its reverse with binarized weights, so that every
// citation links both decisions regardless of direction.
func Undirected(g *graph.Graph) *graph.Graph {
	return BinarizeGraph(AddGraphs(g, g.Reverse()))
}
