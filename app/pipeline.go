package app

import (
	"context"

	"jurisnet/domain/features"
	"jurisnet/domain/graph"
)

// Pipeline assembles one entity-year feature table: the decision table or the judge
// table of a single agreement network.
type Pipeline struct {
	profile features.Profile
	output  string
}

// DecisionPipeline scores decisions over the growing citation graph.
func DecisionPipeline(citations *graph.Graph, damping float64) *Pipeline {
	return &Pipeline{
		profile: &features.DecisionProfile{Citations: citations, Damping: damping},
		output:  "decision_variables",
	}
}

// JudgePipeline scores judges over the named agreement network.
func JudgePipeline(network string, citations, votes *graph.Graph) (*Pipeline, error) {
	profile, err := features.NewJudgeProfile(network, citations, votes)
	if err != nil {
		return nil, err
	}
	return &Pipeline{profile: profile, output: network + "_judge_variables"}, nil
}

// Name labels the pipeline in logs and metrics.
func (p *Pipeline) Name() string { return p.profile.Name() }

// Entity is the entity column header of the output table.
func (p *Pipeline) Entity() string { return p.profile.Entity() }

// Output is the name the finished table is written under.
func (p *Pipeline) Output() string { return p.output }

// Run executes the year loop. It is sequential; separate pipelines may run concurrently.
func (p *Pipeline) Run(ctx context.Context, assembler features.Assembler) (*features.Table, error) {
	return assembler.Run(ctx, p.profile)
}
