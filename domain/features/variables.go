package features

import (
	"jurisnet/domain/centrality"
	"jurisnet/domain/graph"
	"jurisnet/domain/precedent"
)

// Independent variable names.
const (
	VarReversePageRank = "reverse_pagerank"
	VarPrecedent       = "precedent"
	VarUnanimity       = "unanimity"
	VarInDegree        = "in_degree"
	VarOutDegree       = "out_degree"
	VarPageRank        = "pagerank"
	VarHub             = "hub"
	VarAuthority       = "authority"
)

// Covariate names.
const (
	VarAge                = "age"
	VarAgeSquared         = "age_squared"
	VarType               = "type"
	VarTopic              = "topic"
	VarNumVotes           = "num_votes"
	VarCurrentYear        = "current_year"
	VarNetworkSize        = "network_size"
	VarSeniority          = "seniority"
	VarSenioritySquared   = "seniority_squared"
	VarSupportedDecisions = "supported_decisions"
	VarAverageUnanimity   = "average_unanimity"
	VarNumVotesThisYear   = "num_votes_this_year"
	VarMemberThisYear     = "member_this_year"
	VarAdHocThisYear      = "ad_hoc_this_year"
)

// variableSet gathers per-variable score maps and turns them into per-entity rows.
type variableSet map[string]map[string]float64

func (s variableSet) rows(g *graph.Graph) map[string]Row {
	out := make(map[string]Row, g.NodeCount())
	for _, id := range g.Nodes() {
		row := make(Row, len(s))
		for name, scores := range s {
			if v, ok := scores[id]; ok {
				row[name] = Float(v)
			}
		}
		out[id] = row
	}
	return out
}

// DecisionVariables computes the network variables of every decision in a citation
// graph: the plain and the unanimity/weight adjusted precedent scores, unanimity,
// normalised degrees, PageRank and HITS scores.
func DecisionVariables(g *graph.Graph, damping float64) (map[string]Row, error) {
	reverse, err := precedent.Scores(g, damping, precedent.Options{})
	if err != nil {
		return nil, err
	}
	adjusted, err := precedent.Scores(g, damping, precedent.Options{Unanimity: true, Weighted: true})
	if err != nil {
		return nil, err
	}
	unanimity, err := precedent.Unanimities(g)
	if err != nil {
		return nil, err
	}
	hubs, authorities := centrality.HITS(g)

	return variableSet{
		VarReversePageRank: reverse,
		VarPrecedent:       adjusted,
		VarUnanimity:       unanimity,
		VarInDegree:        centrality.Degree(g, centrality.In, true),
		VarOutDegree:       centrality.Degree(g, centrality.Out, true),
		VarPageRank:        centrality.PageRank(g, damping),
		VarHub:             hubs,
		VarAuthority:       authorities,
	}.rows(g), nil
}

// JudgeVariables computes the network variables of every judge in an agreement network.
func JudgeVariables(g *graph.Graph) map[string]Row {
	hubs, authorities := centrality.HITS(g)
	return variableSet{
		VarInDegree:  centrality.Degree(g, centrality.In, true),
		VarOutDegree: centrality.Degree(g, centrality.Out, true),
		VarHub:       hubs,
		VarAuthority: authorities,
	}.rows(g)
}

// CitationsInWindow counts, for every decision, the citations it received from edges
// whose year lies in [start, end].
func CitationsInWindow(citations *graph.Graph, start, end int) map[string]int {
	out := make(map[string]int, citations.NodeCount())
	for _, id := range citations.Nodes() {
		n := 0
		for _, e := range citations.InEdges(id) {
			if year, ok := e.Year(); ok && year >= start && year <= end {
				n++
			}
		}
		out[id] = n
	}
	return out
}
