package graph

import (
	"gonum.org/v1/gonum/graph/simple"
)

// Gonum returns an unweighted gonum view of g. Node i of the view is ids[i], ids being
// the sorted node list. Self loops are left out because gonum simple graphs reject them.
func (g *Graph) Gonum() (*simple.DirectedGraph, []string) {
	ids := g.Nodes()
	index := make(map[string]int64, len(ids))
	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, from := range ids {
		for to := range g.out[from] {
			if to == from {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(index[from]), simple.Node(index[to])))
		}
	}
	return dg, ids
}

// WeightedGonum is Gonum with edge weights carried over.
func (g *Graph) WeightedGonum() (*simple.WeightedDirectedGraph, []string) {
	ids := g.Nodes()
	index := make(map[string]int64, len(ids))
	dg := simple.NewWeightedDirectedGraph(0, 0)
	for i, id := range ids {
		index[id] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}
	for _, from := range ids {
		for to, e := range g.out[from] {
			if to == from {
				continue
			}
			dg.SetWeightedEdge(dg.NewWeightedEdge(simple.Node(index[from]), simple.Node(index[to]), e.Weight))
		}
	}
	return dg, ids
}
