package algebra

import (
	"fmt"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"
)

// ContractionPredicate selects the "inside" nodes of a multiplication: the dimension the
// product sums over. Every other node is "outside" and survives into the product.
type ContractionPredicate func(id string, attrs graph.Attributes) bool

// IsDecision treats every node that is not a judge as a decision. Citation graph nodes
// carry no class attribute and therefore count as decisions.
func IsDecision(id string, attrs graph.Attributes) bool {
	class, ok := attrs.String(graph.AttrClass)
	return !ok || class != graph.ClassJudge
}

// MultiplyGraphs computes the weighted adjacency product
//
//	outside(a) x inside  .  inside x outside(b)
//
// and returns it as a graph over outside(a) ∪ outside(b). When a graph has no outside
// nodes its inside nodes stand in for them, so two decision-only operands multiply as
// plain adjacency matrices. Both operands must agree on the inside node set.
//
// Each non-zero product entry (u, v) becomes an edge whose weight is the product value.
// Other attributes are copied from an existing u -> v edge in a, else in b.
func MultiplyGraphs(a, b *graph.Graph, inside ContractionPredicate) (*graph.Graph, error) {
	outside := func(id string, attrs graph.Attributes) bool { return !inside(id, attrs) }

	insideNodes := selectNodes(a, inside)
	insideB := selectNodes(b, inside)
	if !sameSet(insideNodes, insideB) {
		return nil, fmt.Errorf("%w: %d inside nodes on the left, %d on the right",
			core.ErrInsideNodeMismatch, len(insideNodes), len(insideB))
	}

	nodesA := selectNodes(a, outside)
	if len(nodesA) == 0 {
		nodesA = insideNodes
	}
	nodesB := selectNodes(b, outside)
	if len(nodesB) == 0 {
		nodesB = insideNodes
	}

	product := graph.New()
	for _, id := range nodesA {
		attrs, _ := a.Node(id)
		product.AddNode(id, attrs)
	}
	for _, id := range nodesB {
		attrs, _ := b.Node(id)
		product.AddNode(id, attrs)
	}
	if len(insideNodes) == 0 {
		return product, nil
	}

	left, err := Adjacency(a, nodesA, insideNodes)
	if err != nil {
		return nil, err
	}
	right, err := Adjacency(b, insideNodes, nodesB)
	if err != nil {
		return nil, err
	}
	m, err := left.Multiply(right)
	if err != nil {
		return nil, err
	}

	m.Each(func(i, j int, v float64) {
		u, w := nodesA[i], nodesB[j]
		var attrs graph.Attributes
		if e, ok := a.Edge(u, w); ok {
			attrs = e.Attrs
		} else if e, ok := b.Edge(u, w); ok {
			attrs = e.Attrs
		}
		product.AddEdge(u, w, v, attrs)
	})
	return product, nil
}

// Adjacency returns the weighted adjacency of g restricted to rows x cols: entry (i, j)
// is the weight of rows[i] -> cols[j], or zero when there is no such edge.
func Adjacency(g *graph.Graph, rows, cols []string) (*CSR, error) {
	colIndex := make(map[string]int, len(cols))
	for j, id := range cols {
		colIndex[id] = j
	}
	var entries []Entry
	for i, id := range rows {
		for _, e := range g.OutEdges(id) {
			if j, ok := colIndex[e.To]; ok {
				entries = append(entries, Entry{Row: i, Col: j, Value: e.Weight})
			}
		}
	}
	return NewCSR(len(rows), len(cols), entries)
}

// AddGraphs returns the union of a and b. Edges present in both have their weights
// summed and keep a's other attributes. Node attributes are merged with b winning.
func AddGraphs(a, b *graph.Graph) *graph.Graph {
	result := graph.New()
	for _, g := range []*graph.Graph{a, b} {
		for _, id := range g.Nodes() {
			attrs, _ := g.Node(id)
			result.AddNode(id, attrs)
		}
	}
	for _, g := range []*graph.Graph{a, b} {
		for _, e := range g.Edges() {
			if existing, ok := result.Edge(e.From, e.To); ok {
				result.SetWeight(e.From, e.To, existing.Weight+e.Weight)
				continue
			}
			result.AddEdge(e.From, e.To, e.Weight, e.Attrs)
		}
	}
	return result
}

func selectNodes(g *graph.Graph, pred ContractionPredicate) []string {
	var out []string
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if pred(id, attrs) {
			out = append(out, id)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	// both slices come sorted from graph.Nodes
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
