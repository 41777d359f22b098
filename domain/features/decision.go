package features

import (
	"sort"
	"strings"

	"jurisnet/domain/algebra"
	"jurisnet/domain/core"
	"jurisnet/domain/graph"
)

// DecisionProfile builds decision-year rows from the citation graph as it stood each year.
type DecisionProfile struct {
	Citations *graph.Graph
	Damping   float64
}

func (p *DecisionProfile) Name() string       { return "decision" }
func (p *DecisionProfile) Entity() string     { return "decision" }
func (p *DecisionProfile) Normalizer() string { return "" }

func (p *DecisionProfile) Years() []int { return NodeYears(p.Citations) }

func (p *DecisionProfile) Frame(year int, windows []int) (*Frame, error) {
	current := algebra.ExtractSubgraph(p.Citations, year)
	independent, err := DecisionVariables(current, p.Damping)
	if err != nil {
		return nil, err
	}

	dependent := make(map[string]Row, len(independent))
	for _, w := range windows {
		counts := CitationsInWindow(p.Citations, year+1, year+w)
		for id := range independent {
			if dependent[id] == nil {
				dependent[id] = make(Row, len(windows))
			}
			dependent[id][DependentName(w)] = Int(counts[id])
		}
	}

	covariates := make(map[string]Row, len(independent))
	for id := range independent {
		attrs, _ := current.Node(id)
		row, err := decisionCovariates(id, attrs, year)
		if err != nil {
			return nil, err
		}
		row[VarCurrentYear] = Int(year)
		row[VarNetworkSize] = Int(current.NodeCount())
		covariates[id] = row
	}

	return &Frame{Network: current, Independent: independent, Dependent: dependent, Covariates: covariates}, nil
}

func decisionCovariates(id string, attrs graph.Attributes, year int) (Row, error) {
	decided, ok := attrs.Int(graph.AttrYear)
	if !ok {
		return nil, core.NewMissingAttributeError(id, graph.AttrYear)
	}
	caseType, ok := attrs.String(graph.AttrType)
	if !ok {
		return nil, core.NewMissingAttributeError(id, graph.AttrType)
	}
	topic, ok := attrs.String(graph.AttrTopic)
	if !ok {
		return nil, core.NewMissingAttributeError(id, graph.AttrTopic)
	}
	votesFor, _ := attrs.Int(graph.AttrVotesFor)
	votesAgainst, _ := attrs.Int(graph.AttrVotesAgainst)

	age := year - decided
	return Row{
		VarAge:        Int(age),
		VarAgeSquared: Int(age * age),
		VarType:       Text(strings.ToLower(caseType)),
		VarTopic:      Text(strings.ToLower(topic)),
		VarNumVotes:   Int(votesFor + votesAgainst),
	}, nil
}

// NodeYears returns the sorted distinct year attributes of g's nodes.
func NodeYears(g *graph.Graph) []int {
	seen := make(map[int]struct{})
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if year, ok := attrs.Int(graph.AttrYear); ok {
			seen[year] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
