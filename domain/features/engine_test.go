package features

import (
	"context"
	"testing"

	"jurisnet/domain/agreement"
	"jurisnet/domain/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeYears: one judge supports d1 (2000), d2 (2001) and d3 (2002); d2 and d3 both
// cite d1.
func threeYears() (citations, votes *graph.Graph) {
	citations = graph.New()
	votes = graph.New()
	votes.AddNode("j1", graph.Attributes{graph.AttrClass: graph.ClassJudge, graph.AttrYear: 2000, graph.AttrLastYear: 2002})
	for i, id := range []string{"d1", "d2", "d3"} {
		year := 2000 + i
		citations.AddNode(id, graph.Attributes{
			graph.AttrYear:         year,
			graph.AttrType:         "Merits",
			graph.AttrTopic:        "Maritime",
			graph.AttrVotesFor:     1,
			graph.AttrVotesAgainst: 0,
		})
		votes.AddNode(id, graph.Attributes{graph.AttrClass: graph.ClassDecision, graph.AttrYear: year})
		votes.AddEdge("j1", id, 1, graph.Attributes{graph.AttrYear: year, graph.AttrAdHoc: false})
	}
	citations.AddEdge("d2", "d1", 1, graph.Attributes{graph.AttrYear: 2001})
	citations.AddEdge("d3", "d1", 1, graph.Attributes{graph.AttrYear: 2002})
	return citations, votes
}

func number(t *testing.T, row Row, name string) float64 {
	t.Helper()
	v, ok := row[name]
	require.True(t, ok, "missing %s", name)
	n, ok := v.Number()
	require.True(t, ok, "%s is not numeric", name)
	return n
}

func TestAssembler_DecisionLagsDefaultThenResolve(t *testing.T) {
	citations, _ := threeYears()
	var years []int
	a := Assembler{Windows: []int{1}, Lags: []int{1}, OnYear: func(year, rows int) { years = append(years, year) }}

	table, err := a.Run(context.Background(), &DecisionProfile{Citations: citations, Damping: 0.9})
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001}, years, "the last year has no complete window")
	assert.Equal(t, []Key{{"d1", 2000}, {"d1", 2001}, {"d2", 2001}}, table.Keys())

	first, _ := table.Get("d1", 2000)
	assert.Equal(t, 1.0, number(t, first, "citations_next_year"))
	assert.Equal(t, 0.0, number(t, first, "lagged_citations_next_year"), "no history before the first year")
	assert.Equal(t, 0.0, number(t, first, VarAge))
	assert.Equal(t, "merits", first[VarType].String())
	assert.Equal(t, "maritime", first[VarTopic].String())
	assert.Equal(t, 1.0, number(t, first, VarNumVotes))
	assert.Equal(t, 1.0, number(t, first, VarNetworkSize))

	second, _ := table.Get("d1", 2001)
	assert.Equal(t, 1.0, number(t, second, "citations_next_year"))
	assert.Equal(t, 1.0, number(t, second, "lagged_citations_next_year"))
	assert.Equal(t, 1.0, number(t, second, VarAge))
	assert.Equal(t, 2.0, number(t, second, VarNetworkSize))
	for _, name := range []string{VarReversePageRank, VarPrecedent, VarUnanimity, VarInDegree, VarOutDegree, VarPageRank, VarHub, VarAuthority} {
		assert.Contains(t, second, name)
	}

	newcomer, _ := table.Get("d2", 2001)
	assert.Equal(t, 0.0, number(t, newcomer, "lagged_citations_next_year"))
	assert.Equal(t, 0.0, number(t, newcomer, "citations_next_year"))
}

func TestAssembler_JudgeLagsAreNormalised(t *testing.T) {
	citations, votes := threeYears()
	profile, err := NewJudgeProfile(agreement.Direct, citations, votes)
	require.NoError(t, err)

	table, err := Assembler{Windows: []int{1}, Lags: []int{1}}.Run(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, []Key{{"j1", 2000}, {"j1", 2001}}, table.Keys())

	first, _ := table.Get("j1", 2000)
	assert.Equal(t, 1.0, number(t, first, "citations_next_year"))
	assert.Equal(t, 0.0, number(t, first, "lagged_citations_next_year"))
	assert.Equal(t, 1.0, number(t, first, VarSupportedDecisions))

	second, _ := table.Get("j1", 2001)
	assert.Equal(t, 1.0, number(t, second, "citations_next_year"))
	assert.Equal(t, 1.0, number(t, second, "lagged_citations_next_year"), "one citation over one supported decision")
	assert.Equal(t, 2.0, number(t, second, VarSupportedDecisions))
	assert.Equal(t, 1.0, number(t, second, VarSeniority))
	assert.Equal(t, 1.0, number(t, second, VarAverageUnanimity))
	assert.Equal(t, 1.0, number(t, second, VarNumVotesThisYear))
	assert.Equal(t, "True", second[VarMemberThisYear].String())
	assert.Equal(t, "False", second[VarAdHocThisYear].String())
	assert.Equal(t, 2001.0, number(t, second, VarCurrentYear))
}

func TestAssembler_JudgeDependentsIncludeLaterDecisions(t *testing.T) {
	// j1 supports d1 (2000) and d2 (2001); d3 (2002, decided by j2) cites d2.
	citations := graph.New()
	votes := graph.New()
	votes.AddNode("j1", graph.Attributes{graph.AttrClass: graph.ClassJudge, graph.AttrYear: 2000, graph.AttrLastYear: 2001})
	votes.AddNode("j2", graph.Attributes{graph.AttrClass: graph.ClassJudge, graph.AttrYear: 2002, graph.AttrLastYear: 2002})
	judges := map[string]string{"d1": "j1", "d2": "j1", "d3": "j2"}
	for i, id := range []string{"d1", "d2", "d3"} {
		year := 2000 + i
		citations.AddNode(id, graph.Attributes{graph.AttrYear: year, graph.AttrVotesFor: 1, graph.AttrVotesAgainst: 0})
		votes.AddNode(id, graph.Attributes{graph.AttrClass: graph.ClassDecision, graph.AttrYear: year})
		votes.AddEdge(judges[id], id, 1, graph.Attributes{graph.AttrYear: year, graph.AttrAdHoc: false})
	}
	citations.AddEdge("d3", "d2", 1, graph.Attributes{graph.AttrYear: 2002})

	profile, err := NewJudgeProfile(agreement.Direct, citations, votes)
	require.NoError(t, err)
	table, err := Assembler{Windows: []int{2}}.Run(context.Background(), profile)
	require.NoError(t, err)

	row, ok := table.Get("j1", 2000)
	require.True(t, ok)
	assert.Equal(t, 1.0, number(t, row, "citations_next_2_years"), "d2 is supported after 2000 but within the window")
	assert.Equal(t, 1.0, number(t, row, VarSupportedDecisions), "supported decisions stay as of 2000")
}

func TestAssembler_NoPartialWindows(t *testing.T) {
	citations := graph.New()
	for year := 2000; year <= 2006; year++ {
		citations.AddNode(string(rune('a'+year-2000)), graph.Attributes{
			graph.AttrYear:         year,
			graph.AttrType:         "Advisory",
			graph.AttrTopic:        "Borders",
			graph.AttrVotesFor:     3,
			graph.AttrVotesAgainst: 1,
		})
	}

	table, err := Assembler{Windows: []int{1, 5}, Lags: []int{1}}.Run(context.Background(), &DecisionProfile{Citations: citations, Damping: 0.75})
	require.NoError(t, err)

	full, ok := table.Get("a", 2001)
	require.True(t, ok)
	assert.Contains(t, full, "citations_next_5_years", "2001 + 5 is the last observed year")
	assert.Contains(t, full, "lagged_citations_next_5_years")

	partial, ok := table.Get("a", 2005)
	require.True(t, ok, "second-to-last year still has a one-year window")
	assert.Contains(t, partial, "citations_next_year")
	assert.NotContains(t, partial, "citations_next_5_years")
	assert.NotContains(t, partial, "lagged_citations_next_5_years")

	_, ok = table.Get("a", 2006)
	assert.False(t, ok)
}

func TestAssembler_EmptyInputAndCancellation(t *testing.T) {
	table, err := Assembler{Windows: []int{1}, Lags: []int{1}}.Run(context.Background(), &DecisionProfile{Citations: graph.New(), Damping: 0.5})
	require.NoError(t, err)
	assert.Zero(t, table.Len())

	_, err = Assembler{}.Run(context.Background(), &DecisionProfile{Citations: graph.New()})
	assert.Error(t, err)

	citations, _ := threeYears()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Assembler{Windows: []int{1}, Lags: []int{1}}.Run(ctx, &DecisionProfile{Citations: citations, Damping: 0.9})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshots(t *testing.T) {
	citations, votes := threeYears()

	decisions, err := DecisionSnapshot(citations, 0.9)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d3"}, decisions.Entities())
	assert.NotContains(t, decisions.Columns(), VarAge)
	assert.Contains(t, decisions.Columns(), VarPageRank)

	judges, err := JudgeSnapshot(agreement.DirectAndSymmetricIndirect, citations, votes)
	require.NoError(t, err)
	assert.Equal(t, []string{"j1"}, judges.Entities())
	assert.Equal(t, []string{VarAuthority, VarHub, VarInDegree, VarOutDegree}, judges.Columns())

	_, err = JudgeSnapshot("nope", citations, votes)
	assert.Error(t, err)
}

func TestCitationsInWindow(t *testing.T) {
	citations, _ := threeYears()

	assert.Equal(t, map[string]int{"d1": 2, "d2": 0, "d3": 0}, CitationsInWindow(citations, 2001, 2002))
	assert.Equal(t, map[string]int{"d1": 1, "d2": 0, "d3": 0}, CitationsInWindow(citations, 2002, 2010))
}
