package features

import (
	"math"

	"jurisnet/domain/agreement"
	"jurisnet/domain/graph"
)

// DecisionSnapshot computes the decision network variables over the whole citation graph.
func DecisionSnapshot(citations *graph.Graph, damping float64) (*NodeTable, error) {
	rows, err := DecisionVariables(citations, damping)
	if err != nil {
		return nil, err
	}
	return NewNodeTable(rows), nil
}

// JudgeSnapshot computes the judge network variables over the named agreement network
// built from every vote and citation on record. Edge weights are kept as accumulated.
func JudgeSnapshot(network string, citations, votes *graph.Graph) (*NodeTable, error) {
	gen, err := agreement.Lookup(network)
	if err != nil {
		return nil, err
	}
	g, err := gen(citations, votes, math.MaxInt)
	if err != nil {
		return nil, err
	}
	rows := make(map[string]Row)
	for id, row := range JudgeVariables(g) {
		if isJudge(g, id) {
			rows[id] = row
		}
	}
	return NewNodeTable(rows), nil
}
