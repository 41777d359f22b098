// Package agreement derives judge agreement networks from the citation and vote graphs
// as they stood at a given year.
package agreement

import (
	"fmt"

	"jurisnet/domain/algebra"
	"jurisnet/domain/core"
	"jurisnet/domain/graph"
)

// Generator builds one agreement network from data known by year.
type Generator func(citations, votes *graph.Graph, year int) (*graph.Graph, error)

// Network names.
const (
	Direct                     = "direct"
	Indirect                   = "indirect"
	SymmetricIndirect          = "symmetric_indirect"
	DirectAndIndirect          = "direct_and_indirect"
	DirectAndSymmetricIndirect = "direct_and_symmetric_indirect"
)

var generators = map[string]Generator{
	Direct:                     DirectAgreement,
	Indirect:                   IndirectAgreement,
	SymmetricIndirect:          SymmetricIndirectAgreement,
	DirectAndIndirect:          DirectAndIndirectAgreement,
	DirectAndSymmetricIndirect: DirectAndSymmetricIndirectAgreement,
}

// Names lists every network in a stable order.
func Names() []string {
	return []string{Direct, Indirect, SymmetricIndirect, DirectAndIndirect, DirectAndSymmetricIndirect}
}

// DefaultNetworks lists the networks enabled when nothing is configured.
func DefaultNetworks() []string {
	return []string{Direct, DirectAndSymmetricIndirect}
}

// Symmetric reports whether the named network always has w(a, b) == w(b, a), in which
// case hub and authority, and in and out degree, coincide.
func Symmetric(name string) bool {
	switch name {
	case Direct, SymmetricIndirect, DirectAndSymmetricIndirect:
		return true
	}
	return false
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownNetwork, name)
	}
	return gen, nil
}

// DirectAgreement links judges who voted on the same decisions: votes x votesᵀ,
// contracted over decisions. Same-sign votes add agreement, opposite signs subtract.
func DirectAgreement(citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	voteSub := algebra.ExtractSubgraph(votes, year)
	product, err := algebra.MultiplyGraphs(voteSub, voteSub.Reverse(), algebra.IsDecision)
	if err != nil {
		return nil, fmt.Errorf("direct agreement for %d: %w", year, err)
	}
	return algebra.RemoveSelfLoops(product), nil
}

// IndirectAgreement links judge A to judge B when a decision A voted on cites a decision
// B voted on: votes x binarized citations x votesᵀ.
func IndirectAgreement(citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	return indirect(algebra.BinarizeGraph(algebra.ExtractSubgraph(citations, year)), votes, year)
}

// SymmetricIndirectAgreement is IndirectAgreement with citation direction ignored.
func SymmetricIndirectAgreement(citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	return indirect(algebra.Undirected(algebra.ExtractSubgraph(citations, year)), votes, year)
}

func indirect(citationSub, votes *graph.Graph, year int) (*graph.Graph, error) {
	voteSub := algebra.ExtractSubgraph(votes, year)
	judgeToCited, err := algebra.MultiplyGraphs(voteSub, citationSub, algebra.IsDecision)
	if err != nil {
		return nil, fmt.Errorf("indirect agreement for %d: %w", year, err)
	}
	product, err := algebra.MultiplyGraphs(judgeToCited, voteSub.Reverse(), algebra.IsDecision)
	if err != nil {
		return nil, fmt.Errorf("indirect agreement for %d: %w", year, err)
	}
	return algebra.RemoveSelfLoops(product), nil
}

// DirectAndIndirectAgreement adds the direct and indirect networks.
func DirectAndIndirectAgreement(citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	return combine(DirectAgreement, IndirectAgreement, citations, votes, year)
}

// DirectAndSymmetricIndirectAgreement adds the direct and symmetric indirect networks.
func DirectAndSymmetricIndirectAgreement(citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	return combine(DirectAgreement, SymmetricIndirectAgreement, citations, votes, year)
}

func combine(first, second Generator, citations, votes *graph.Graph, year int) (*graph.Graph, error) {
	a, err := first(citations, votes, year)
	if err != nil {
		return nil, err
	}
	b, err := second(citations, votes, year)
	if err != nil {
		return nil, err
	}
	return algebra.RemoveSelfLoops(algebra.AddGraphs(a, b)), nil
}
