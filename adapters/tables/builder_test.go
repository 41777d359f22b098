package tables

import (
	"context"
	"errors"
	"testing"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"
	apperrors "jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource map[string][]ports.Record

func (m memorySource) ReadRecords(_ context.Context, path string) ([]ports.Record, error) {
	records, ok := m[path]
	if !ok {
		return nil, apperrors.InvalidInput("no table " + path)
	}
	return records, nil
}

func fixture() memorySource {
	return memorySource{
		"cases.csv": {
			{"id": "1", "name": "Corfu Channel", "year": "1948", "type": "A", "topic": "Use of Force"},
			{"id": "2", "name": "Reparation", "year": "1949", "type": "B", "topic": "Organizations"},
			{"id": "3", "name": "Asylum", "year": "1950", "type": "j", "topic": "Asylum"},
		},
		"citations.csv": {
			{"source": "2", "target": "1"},
			{"source": "3", "target": "1"},
			{"source": "3", "target": "1"},
		},
		"authorship.csv": {
			{"judge": "7", "decision": "1", "weight": "1", "ad hoc": "False"},
			{"judge": "7", "decision": "2", "weight": "-1", "ad hoc": ""},
			{"judge": "7", "decision": "3", "weight": "1", "ad hoc": ""},
			{"judge": "8", "decision": "1", "weight": "-1", "ad hoc": "TRUE"},
			{"judge": "8", "decision": "2", "weight": "1", "ad hoc": "false"},
			{"judge": "8", "decision": "3", "weight": "1", "ad hoc": "false"},
		},
		"judges.csv": {
			{"id": "7", "name": "Alvarez", "nationality": "Chile"},
			{"id": "8", "name": "Ecer", "nationality": "Czechoslovakia"},
		},
	}
}

var inputs = ports.SourceTables{Cases: "cases.csv", Citations: "citations.csv", Authorship: "authorship.csv", Judges: "judges.csv"}

func TestBuild_CitationGraph(t *testing.T) {
	citations, _, err := NewBuilder(fixture(), logging.Discard()).Build(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, citations.Nodes())
	attrs, _ := citations.Node("1")
	assert.Equal(t, 1948, attrs[graph.AttrYear])
	assert.Equal(t, "Merits", attrs[graph.AttrType])
	assert.Equal(t, "Corfu Channel", attrs[graph.AttrName])
	assert.Equal(t, 1, attrs[graph.AttrVotesFor])
	assert.Equal(t, 1, attrs[graph.AttrVotesAgainst])

	attrs, _ = citations.Node("3")
	assert.Equal(t, "Jurisdiction", attrs[graph.AttrType])
	assert.Equal(t, 2, attrs[graph.AttrVotesFor])
	assert.Equal(t, 0, attrs[graph.AttrVotesAgainst])

	e, ok := citations.Edge("3", "1")
	require.True(t, ok)
	assert.Equal(t, 2.0, e.Weight)
	year, _ := e.Year()
	assert.Equal(t, 1950, year)
	assert.Equal(t, 2, citations.EdgeCount())
}

func TestBuild_VoteGraph(t *testing.T) {
	_, votes, err := NewBuilder(fixture(), logging.Discard()).Build(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "j7", "j8"}, votes.Nodes())

	judge, _ := votes.Node("j7")
	assert.Equal(t, graph.ClassJudge, judge[graph.AttrClass])
	assert.Equal(t, "Alvarez", judge[graph.AttrName])
	assert.Equal(t, 1948, judge[graph.AttrYear])
	assert.Equal(t, 1950, judge[graph.AttrLastYear])

	decision, _ := votes.Node("2")
	assert.Equal(t, graph.ClassDecision, decision[graph.AttrClass])
	assert.Equal(t, "Advisory", decision[graph.AttrType])
	assert.NotContains(t, decision, graph.AttrVotesFor)

	e, ok := votes.Edge("j8", "1")
	require.True(t, ok)
	assert.Equal(t, -1.0, e.Weight)
	assert.Equal(t, true, e.Attrs[graph.AttrAdHoc])
	year, _ := e.Year()
	assert.Equal(t, 1948, year)

	e, _ = votes.Edge("j7", "1")
	assert.Equal(t, false, e.Attrs[graph.AttrAdHoc])
	assert.Equal(t, 6, votes.EdgeCount())
}

func TestCitationGraph_DecisionWithoutVotes(t *testing.T) {
	cases, err := CaseAttributes(fixture()["cases.csv"])
	require.NoError(t, err)

	_, err = CitationGraph(cases, nil, []Vote{{Judge: "7", Decision: "1", Weight: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNoRecordedVotes))
}

func TestBuild_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(memorySource)
	}{
		{"unknown case type", func(m memorySource) { m["cases.csv"][0]["type"] = "X" }},
		{"bad year", func(m memorySource) { m["cases.csv"][1]["year"] = "c. 1949" }},
		{"citation to unknown case", func(m memorySource) { m["citations.csv"][0]["target"] = "99" }},
		{"unknown judge", func(m memorySource) { m["authorship.csv"][0]["judge"] = "99" }},
		{"missing weight", func(m memorySource) { delete(m["authorship.csv"][2], "weight") }},
		{"missing table", func(m memorySource) { delete(m, "judges.csv") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := fixture()
			tt.mutate(source)
			_, _, err := NewBuilder(source, logging.Discard()).Build(context.Background(), inputs)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
		})
	}
}

func TestParseAuthorship_LaterRowWins(t *testing.T) {
	votes, err := ParseAuthorship([]ports.Record{
		{"judge": "7", "decision": "1", "weight": "1"},
		{"judge": "8", "decision": "1", "weight": "1"},
		{"judge": "7", "decision": "1", "weight": "-1", "ad hoc": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Vote{
		{Judge: "7", Decision: "1", Weight: -1, AdHoc: true},
		{Judge: "8", Decision: "1", Weight: 1},
	}, votes)
}
