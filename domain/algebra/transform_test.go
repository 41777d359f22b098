package algebra

import (
	"testing"

	"jurisnet/domain/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// citations builds a small citation graph: decisions d1990..d1993, each citing older ones.
func citations() *graph.Graph {
	g := graph.New()
	for _, y := range []int{1990, 1991, 1992, 1993} {
		g.AddNode(decisionID(y), graph.Attributes{graph.AttrYear: y})
	}
	cite := func(from, to int) {
		g.AddEdge(decisionID(from), decisionID(to), 1, graph.Attributes{graph.AttrYear: from})
	}
	cite(1991, 1990)
	cite(1992, 1990)
	cite(1992, 1991)
	cite(1993, 1992)
	return g
}

func decisionID(year int) string {
	return "d" + string(rune('0'+year%10))
}

func TestExtractSubgraph_KeepsOnlyEarlierYears(t *testing.T) {
	g := citations()

	sub := ExtractSubgraph(g, 1991)

	assert.Equal(t, []string{"d0", "d1"}, sub.Nodes())
	assert.Equal(t, 1, sub.EdgeCount())
	assert.True(t, sub.HasEdge("d1", "d0"))
	assert.Equal(t, 4, g.NodeCount(), "input must not be mutated")
	assert.Equal(t, 4, g.EdgeCount())
}

func TestExtractSubgraph_Idempotent(t *testing.T) {
	g := citations()
	for _, cutoff := range []int{1989, 1990, 1992, 2000} {
		once := ExtractSubgraph(g, cutoff)
		twice := ExtractSubgraph(once, cutoff)
		assert.Equal(t, once.Nodes(), twice.Nodes(), "cutoff %d", cutoff)
		assert.Equal(t, once.Edges(), twice.Edges(), "cutoff %d", cutoff)
	}
}

func TestExtractSubgraph_DropsEdgesWithMissingEndpoint(t *testing.T) {
	g := graph.New()
	g.AddNode("a", graph.Attributes{graph.AttrYear: 2000})
	g.AddNode("b", graph.Attributes{graph.AttrYear: 2005})
	g.AddEdge("a", "b", 1, graph.Attributes{graph.AttrYear: 2000})

	sub := ExtractSubgraph(g, 2001)

	assert.Equal(t, []string{"a"}, sub.Nodes())
	assert.Zero(t, sub.EdgeCount())
}

func TestBinarizeGraph(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 3.5, nil)
	g.AddEdge("b", "c", -2, nil)
	g.AddEdge("c", "a", 0, nil)

	bin := BinarizeGraph(g)

	for _, tc := range []struct {
		from, to string
		want     float64
	}{{"a", "b", 1}, {"b", "c", 1}, {"c", "a", 0}} {
		e, ok := bin.Edge(tc.from, tc.to)
		require.True(t, ok)
		assert.Equal(t, tc.want, e.Weight, "%s->%s", tc.from, tc.to)
	}
	orig, _ := g.Edge("a", "b")
	assert.Equal(t, 3.5, orig.Weight)
}

func TestSimplifyWeights(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 7, nil)
	g.AddEdge("b", "c", -0.5, nil)
	g.AddEdge("c", "a", 0, nil)

	s := SimplifyWeights(g)

	ab, _ := s.Edge("a", "b")
	bc, _ := s.Edge("b", "c")
	ca, _ := s.Edge("c", "a")
	assert.Equal(t, 1.0, ab.Weight)
	assert.Equal(t, -1.0, bc.Weight)
	assert.Equal(t, 0.0, ca.Weight)
}

func TestRemoveSelfLoops(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "a", 4, nil)
	g.AddEdge("a", "b", 1, nil)
	g.AddEdge("b", "b", 2, nil)

	once := RemoveSelfLoops(g)
	twice := RemoveSelfLoops(once)

	for _, id := range once.Nodes() {
		assert.False(t, once.HasEdge(id, id))
	}
	assert.Equal(t, 1, once.EdgeCount())
	assert.Equal(t, once.Edges(), twice.Edges())
	assert.Equal(t, 3, g.EdgeCount())
}

func TestRemoveNegativeEdges(t *testing.T) {
	g := graph.New()
	g.AddEdge("j1", "d1", 1, nil)
	g.AddEdge("j2", "d1", -1, nil)
	g.AddEdge("j3", "d1", 0, nil)

	out := RemoveNegativeEdges(g)

	assert.True(t, out.HasEdge("j1", "d1"))
	assert.False(t, out.HasEdge("j2", "d1"))
	assert.True(t, out.HasEdge("j3", "d1"))
	assert.True(t, out.HasNode("j2"))
}

func TestIsolateNodeType(t *testing.T) {
	g := graph.New()
	g.AddNode("j1", graph.Attributes{graph.AttrClass: graph.ClassJudge})
	g.AddNode("d1", graph.Attributes{graph.AttrClass: graph.ClassDecision})
	g.AddNode("x", nil)
	g.AddEdge("j1", "d1", 1, nil)
	g.AddEdge("x", "j1", 1, nil)

	judges := IsolateNodeType(g, graph.AttrClass, graph.ClassJudge)

	assert.Equal(t, []string{"j1", "x"}, judges.Nodes())
	assert.True(t, judges.HasEdge("x", "j1"))
	assert.False(t, judges.HasNode("d1"))
	assert.Equal(t, 1, judges.EdgeCount())
}

func TestUndirected(t *testing.T) {
	g := graph.New()
	g.AddEdge("b", "a", 2, graph.Attributes{graph.AttrYear: 1995})
	g.AddEdge("a", "b", 1, graph.Attributes{graph.AttrYear: 1990})
	g.AddEdge("c", "a", 1, graph.Attributes{graph.AttrYear: 1999})

	u := Undirected(g)

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}} {
		e, ok := u.Edge(pair[0], pair[1])
		require.True(t, ok, "%v", pair)
		assert.Equal(t, 1.0, e.Weight)
	}
	ac, _ := u.Edge("a", "c")
	year, _ := ac.Year()
	assert.Equal(t, 1999, year, "reversed edge keeps the citing year")
}
