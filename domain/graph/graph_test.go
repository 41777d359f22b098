package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddEdgeCreatesEndpoints(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 2, Attributes{AttrYear: 1990})

	assert.True(t, g.HasNode("a"))
	assert.True(t, g.HasNode("b"))
	assert.Equal(t, 1, g.EdgeCount())

	e, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 2.0, e.Weight)
	year, ok := e.Year()
	require.True(t, ok)
	assert.Equal(t, 1990, year)

	g.AddEdge("a", "b", 5, nil)
	assert.Equal(t, 1, g.EdgeCount(), "replacing an edge must not grow the count")
}

func TestGraph_AddNodeMergesAttributes(t *testing.T) {
	g := New()
	g.AddNode("j1", Attributes{AttrYear: 1946, AttrClass: ClassJudge})
	g.AddNode("j1", Attributes{AttrLastYear: 1960})

	attrs, ok := g.Node("j1")
	require.True(t, ok)
	assert.Equal(t, 1946, attrs[AttrYear])
	assert.Equal(t, 1960, attrs[AttrLastYear])
}

func TestGraph_ReverseAndClone(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1, Attributes{AttrYear: 2000})
	g.AddEdge("b", "c", -1, nil)

	r := g.Reverse()
	assert.True(t, r.HasEdge("b", "a"))
	assert.True(t, r.HasEdge("c", "b"))
	assert.False(t, r.HasEdge("a", "b"))
	e, _ := r.Edge("b", "a")
	year, _ := e.Year()
	assert.Equal(t, 2000, year)

	c := g.Clone()
	c.SetWeight("a", "b", 9)
	orig, _ := g.Edge("a", "b")
	assert.Equal(t, 1.0, orig.Weight, "clone must not share edges")
}

func TestGraph_DegreesAndNeighbours(t *testing.T) {
	g := New()
	g.AddEdge("a", "c", 1, nil)
	g.AddEdge("a", "b", 1, nil)
	g.AddEdge("b", "c", 1, nil)

	assert.Equal(t, []string{"b", "c"}, g.Successors("a"))
	assert.Equal(t, []string{"a", "b"}, g.Predecessors("c"))
	assert.Equal(t, 2, g.OutDegree("a"))
	assert.Equal(t, 2, g.InDegree("c"))
	assert.Equal(t, []string{"b", "c"}, g.Descendants("a"))
	assert.Empty(t, g.Descendants("c"))

	g.RemoveEdge("a", "c")
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"b"}, g.Successors("a"))
}

func TestAttributes_TypedAccessors(t *testing.T) {
	attrs := Attributes{
		"i": 3, "f": 2.0, "s": "1984", "b": "True", "x": 1.5,
	}

	n, ok := attrs.Int("s")
	assert.True(t, ok)
	assert.Equal(t, 1984, n)

	n, ok = attrs.Int("f")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = attrs.Int("x")
	assert.False(t, ok)

	f, ok := attrs.Float("i")
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	b, ok := attrs.Bool("b")
	assert.True(t, ok)
	assert.True(t, b)

	s, ok := attrs.String("x")
	assert.True(t, ok)
	assert.Equal(t, "1.5", s)

	_, ok = attrs.String("missing")
	assert.False(t, ok)
}

func TestWeightedGonum(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 2.5, nil)
	g.AddEdge("b", "b", 1, nil)

	view, ids := g.WeightedGonum()
	assert.Equal(t, []string{"a", "b"}, ids)
	w, ok := view.Weight(0, 1)
	assert.True(t, ok)
	assert.Equal(t, 2.5, w)
	assert.False(t, view.HasEdgeFromTo(1, 1), "self loops are left out")
}

func TestDescendants_StopsOnCycles(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1, nil)
	g.AddEdge("b", "a", 1, nil)
	g.AddEdge("b", "c", 1, nil)

	assert.Equal(t, []string{"b", "c"}, g.Descendants("a"))
	assert.Equal(t, []string{"a", "c"}, g.Descendants("b"))
}
