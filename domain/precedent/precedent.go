// Package precedent computes the precedent score: a PageRank-like influence score for
// every decision in a citation graph, evaluated as a fixed point in topological order.
package precedent

import (
	"errors"
	"fmt"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/graph/topo"
)

// Options selects the score variant.
type Options struct {
	// Unanimity multiplies the base term by the decision's unanimity ratio.
	Unanimity bool
	// Weighted averages successor scores by citation edge weight.
	Weighted bool
	// Normalize divides the base term by the number of descendants.
	Normalize bool
}

// Unanimities returns votes_for / (votes_for + votes_against) for every decision.
// A decision without recorded votes is an error.
func Unanimities(g *graph.Graph) (map[string]float64, error) {
	out := make(map[string]float64, g.NodeCount())
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		votesFor, ok := attrs.Float(graph.AttrVotesFor)
		if !ok {
			return nil, core.NewMissingAttributeError(id, graph.AttrVotesFor)
		}
		votesAgainst, ok := attrs.Float(graph.AttrVotesAgainst)
		if !ok {
			return nil, core.NewMissingAttributeError(id, graph.AttrVotesAgainst)
		}
		if votesFor+votesAgainst <= 0 {
			return nil, core.NewNoVotesError(id)
		}
		out[id] = votesFor / (votesFor + votesAgainst)
	}
	return out, nil
}

// DampingFactor is the mean unanimity across all decisions.
func DampingFactor(unanimities map[string]float64) (float64, error) {
	values := make(stats.Float64Data, 0, len(unanimities))
	for _, u := range unanimities {
		values = append(values, u)
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, fmt.Errorf("%w: no decisions to average", core.ErrInsufficientData)
	}
	return mean, nil
}

// Scores computes
//
//	score(d) = (1-damping)/N [* unanimity(d)] [/ |descendants(d)|]
//	         + damping * mean(score(s) for s cited by d) [weighted by citation weight]
//
// A decision is scored once every decision it cites has been scored, so each pass over
// the unscored decisions makes progress on an acyclic graph. A pass that scores nothing
// means the remaining decisions sit on or behind a cycle, which is reported as
// core.ErrCyclicCitations.
func Scores(g *graph.Graph, damping float64, opts Options) (map[string]float64, error) {
	n := g.NodeCount()
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores, nil
	}

	var unanimities map[string]float64
	if opts.Unanimity {
		var err error
		if unanimities, err = Unanimities(g); err != nil {
			return nil, err
		}
	}
	complement := (1 - damping) / float64(n)

	remaining := g.Nodes()
	for pass := 0; len(remaining) > 0; pass++ {
		if pass > n {
			return nil, stalled(g, remaining)
		}
		var next []string
		for _, d := range remaining {
			score, ok := scoreDecision(g, d, scores, damping, complement, unanimities, opts)
			if !ok {
				next = append(next, d)
				continue
			}
			scores[d] = score
		}
		if len(next) == len(remaining) {
			return nil, stalled(g, remaining)
		}
		remaining = next
	}
	return scores, nil
}

func scoreDecision(g *graph.Graph, d string, scores map[string]float64, damping, complement float64, unanimities map[string]float64, opts Options) (float64, bool) {
	edges := g.OutEdges(d)
	for _, e := range edges {
		if _, ok := scores[e.To]; !ok {
			return 0, false
		}
	}

	first := complement
	if opts.Normalize {
		if descendants := len(g.Descendants(d)); descendants > 0 {
			first /= float64(descendants)
		}
	}
	if opts.Unanimity {
		first *= unanimities[d]
	}

	var sum, normalizer float64
	for _, e := range edges {
		if opts.Weighted {
			sum += scores[e.To] * e.Weight
			normalizer += e.Weight
		} else {
			sum += scores[e.To]
			normalizer++
		}
	}
	var average float64
	if len(edges) > 0 && normalizer != 0 {
		average = sum / normalizer
	}
	return first + damping*average, true
}

// stalled names a decision on a cycle when gonum can find one; a self citation is
// invisible to the gonum view, so the first unscored decision is the fallback.
func stalled(g *graph.Graph, remaining []string) error {
	view, ids := g.Gonum()
	if _, err := topo.Sort(view); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 && len(cycles[0]) > 0 {
			return core.NewCycleError(ids[cycles[0][0].ID()])
		}
	}
	return core.NewCycleError(remaining[0])
}
