// Package centrality computes the network independent variables shared by the decision
// and judge pipelines: normalised degree, HITS hub/authority scores and PageRank.
package centrality

import (
	"jurisnet/domain/graph"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/mat"
)

// Direction selects which degree to count.
type Direction int

const (
	In Direction = iota
	Out
)

// pageRankTolerance bounds the 2-norm change between PageRank iterations.
const pageRankTolerance = 1e-10

// Degree returns the unweighted in- or out-degree of every node, divided by the node
// count when normalized is set.
func Degree(g *graph.Graph, dir Direction, normalized bool) map[string]float64 {
	out := make(map[string]float64, g.NodeCount())
	n := float64(g.NodeCount())
	for _, id := range g.Nodes() {
		var d int
		if dir == In {
			d = g.InDegree(id)
		} else {
			d = g.OutDegree(id)
		}
		out[id] = float64(d)
		if normalized {
			out[id] /= n
		}
	}
	return out
}

// HITS returns hub and authority scores from the principal eigenvectors of AAᵀ and AᵀA,
// A being the weighted adjacency matrix. Each vector is scaled to sum to one. A graph
// without edges scores zero everywhere.
func HITS(g *graph.Graph) (hubs, authorities map[string]float64) {
	ids := g.Nodes()
	hubs = make(map[string]float64, len(ids))
	authorities = make(map[string]float64, len(ids))
	for _, id := range ids {
		hubs[id] = 0
		authorities[id] = 0
	}
	if len(ids) == 0 || g.EdgeCount() == 0 {
		return hubs, authorities
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	a := mat.NewDense(len(ids), len(ids), nil)
	for _, e := range g.Edges() {
		a.Set(index[e.From], index[e.To], e.Weight)
	}

	var hubMatrix, authMatrix mat.SymDense
	hubMatrix.SymOuterK(1, a)
	authMatrix.SymOuterK(1, a.T())

	h := principalEigenvector(&hubMatrix)
	au := principalEigenvector(&authMatrix)
	for i, id := range ids {
		hubs[id] = h[i]
		authorities[id] = au[i]
	}
	return hubs, authorities
}

func principalEigenvector(m *mat.SymDense) []float64 {
	n := m.SymmetricDim()
	out := make([]float64, n)

	var eig mat.EigenSym
	if ok := eig.Factorize(m, true); !ok {
		return out
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	best := floats.MaxIdx(values)
	mat.Col(out, best, &vectors)

	if sum := floats.Sum(out); sum != 0 {
		floats.Scale(1/sum, out)
	}
	return out
}

// PageRank runs gonum's edge-weighted PageRank with the given damping factor. Self
// loops are ignored.
func PageRank(g *graph.Graph, damping float64) map[string]float64 {
	out := make(map[string]float64, g.NodeCount())
	if g.NodeCount() == 0 {
		return out
	}
	view, ids := g.WeightedGonum()
	ranks := network.PageRank(view, damping, pageRankTolerance)
	for i, id := range ids {
		out[id] = ranks[int64(i)]
	}
	return out
}
