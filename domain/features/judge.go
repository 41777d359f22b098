package features

import (
	"fmt"

	"jurisnet/domain/agreement"
	"jurisnet/domain/algebra"
	"jurisnet/domain/core"
	"jurisnet/domain/graph"
	"jurisnet/domain/precedent"

	"github.com/montanaflynn/stats"
)

// JudgeProfile builds judge-year rows from one agreement network. Lagged citation counts
// are divided by the judge's supported decisions of the same historical year.
type JudgeProfile struct {
	network     string
	generator   agreement.Generator
	citations   *graph.Graph
	votes       *graph.Graph
	unanimities map[string]float64
}

// NewJudgeProfile looks up the named agreement network and precomputes decision
// unanimities, which do not change over time.
func NewJudgeProfile(network string, citations, votes *graph.Graph) (*JudgeProfile, error) {
	gen, err := agreement.Lookup(network)
	if err != nil {
		return nil, err
	}
	unanimities, err := precedent.Unanimities(citations)
	if err != nil {
		return nil, err
	}
	return &JudgeProfile{
		network:     network,
		generator:   gen,
		citations:   citations,
		votes:       votes,
		unanimities: unanimities,
	}, nil
}

func (p *JudgeProfile) Name() string       { return p.network }
func (p *JudgeProfile) Entity() string     { return "judge" }
func (p *JudgeProfile) Normalizer() string { return VarSupportedDecisions }

func (p *JudgeProfile) Years() []int { return NodeYears(p.votes) }

func (p *JudgeProfile) Frame(year int, windows []int) (*Frame, error) {
	network, err := p.generator(p.citations, p.votes, year)
	if err != nil {
		return nil, err
	}
	current := algebra.SimplifyWeights(network)
	voteSub := algebra.ExtractSubgraph(p.votes, year)

	independent := make(map[string]Row)
	for id, row := range JudgeVariables(current) {
		if isJudge(current, id) {
			independent[id] = row
		}
	}

	dependent := make(map[string]Row, len(independent))
	covariates := make(map[string]Row, len(independent))
	supported := make(map[string][]string, len(independent))
	for id := range independent {
		supported[id] = supportedDecisions(voteSub, id)
		dependent[id] = make(Row, len(windows))

		row, err := p.covariates(voteSub, id, supported[id], year)
		if err != nil {
			return nil, err
		}
		row[VarCurrentYear] = Int(year)
		row[VarNetworkSize] = Int(current.NodeCount())
		covariates[id] = row
	}

	// Dependents count citations to every decision a judge supports by the end of the
	// longest window, including decisions decided after year.
	maxWindow := 0
	for _, w := range windows {
		if w > maxWindow {
			maxWindow = w
		}
	}
	futureVotes := algebra.ExtractSubgraph(p.votes, year+maxWindow)
	future := make(map[string][]string, len(independent))
	for id := range independent {
		future[id] = supportedDecisions(futureVotes, id)
	}

	for _, w := range windows {
		counts := CitationsInWindow(p.citations, year+1, year+w)
		for id, decisions := range future {
			total := 0
			for _, d := range decisions {
				total += counts[d]
			}
			dependent[id][DependentName(w)] = Int(total)
		}
	}

	return &Frame{Network: current, Independent: independent, Dependent: dependent, Covariates: covariates}, nil
}

func (p *JudgeProfile) covariates(voteSub *graph.Graph, judge string, supported []string, year int) (Row, error) {
	attrs, ok := p.votes.Node(judge)
	if !ok {
		return nil, fmt.Errorf("%w: judge %s", core.ErrNodeNotFound, judge)
	}
	first, ok := attrs.Int(graph.AttrYear)
	if !ok {
		return nil, core.NewMissingAttributeError(judge, graph.AttrYear)
	}

	unanimities := make(stats.Float64Data, 0, len(supported))
	for _, d := range supported {
		u, ok := p.unanimities[d]
		if !ok {
			return nil, fmt.Errorf("%w: decision %s voted on by %s is not in the citation graph", core.ErrNodeNotFound, d, judge)
		}
		unanimities = append(unanimities, u)
	}
	average := 0.0
	if len(unanimities) > 0 {
		average, _ = stats.Mean(unanimities)
	}

	votes, member, adHoc := 0, false, false
	for _, e := range voteSub.OutEdges(judge) {
		if y, ok := e.Year(); !ok || y != year {
			continue
		}
		votes++
		if ah, _ := e.Attrs.Bool(graph.AttrAdHoc); ah {
			adHoc = true
		} else {
			member = true
		}
	}

	seniority := year - first
	return Row{
		VarSeniority:          Int(seniority),
		VarSenioritySquared:   Int(seniority * seniority),
		VarSupportedDecisions: Int(len(supported)),
		VarAverageUnanimity:   Float(average),
		VarNumVotesThisYear:   Int(votes),
		VarMemberThisYear:     Flag(member),
		VarAdHocThisYear:      Flag(adHoc),
	}, nil
}

// supportedDecisions lists the decisions judge voted for in votes.
func supportedDecisions(votes *graph.Graph, judge string) []string {
	var out []string
	for _, e := range votes.OutEdges(judge) {
		if e.Weight > 0 {
			out = append(out, e.To)
		}
	}
	return out
}

func isJudge(g *graph.Graph, id string) bool {
	attrs, _ := g.Node(id)
	class, _ := attrs.String(graph.AttrClass)
	return class == graph.ClassJudge
}
