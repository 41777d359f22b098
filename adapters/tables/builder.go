// Package tables builds the citation graph and the vote graph from the structured
// source tables: cases, citations, authorship and judges.
package tables

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"
)

// Column names of the source tables.
const (
	ColID       = "id"
	ColYear     = "year"
	ColType     = "type"
	ColSource   = "source"
	ColTarget   = "target"
	ColJudge    = "judge"
	ColDecision = "decision"
	ColWeight   = "weight"
	ColAdHoc    = "ad hoc"
)

// CaseTypes maps the one-letter case codes to their names.
var CaseTypes = map[string]string{
	"J": "Jurisdiction",
	"A": "Merits",
	"B": "Advisory",
}

// Builder reads the source tables and turns them into graphs.
type Builder struct {
	source ports.TableSource
	logger *logging.Logger
}

var _ ports.GraphBuilder = (*Builder)(nil)

// NewBuilder returns a builder reading through source.
func NewBuilder(source ports.TableSource, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Default
	}
	return &Builder{source: source, logger: logger}
}

// Build reads every input table once and returns the citation and vote graphs.
func (b *Builder) Build(ctx context.Context, in ports.SourceTables) (citations, votes *graph.Graph, err error) {
	read := func(path string) ([]ports.Record, error) {
		records, err := b.source.ReadRecords(ctx, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		b.logger.Debug("read %d records from %s", len(records), path)
		return records, nil
	}

	caseRecords, err := read(in.Cases)
	if err != nil {
		return nil, nil, err
	}
	citationRecords, err := read(in.Citations)
	if err != nil {
		return nil, nil, err
	}
	authorshipRecords, err := read(in.Authorship)
	if err != nil {
		return nil, nil, err
	}
	judgeRecords, err := read(in.Judges)
	if err != nil {
		return nil, nil, err
	}

	cases, err := CaseAttributes(caseRecords)
	if err != nil {
		return nil, nil, err
	}
	authorship, err := ParseAuthorship(authorshipRecords)
	if err != nil {
		return nil, nil, err
	}
	judges, err := JudgeAttributes(judgeRecords)
	if err != nil {
		return nil, nil, err
	}

	citations, err = CitationGraph(cases, citationRecords, authorship)
	if err != nil {
		return nil, nil, err
	}
	votes, err = VoteGraph(cases, authorship, judges)
	if err != nil {
		return nil, nil, err
	}
	b.logger.Info("built citation graph (%d decisions, %d citations) and vote graph (%d nodes, %d votes)",
		citations.NodeCount(), citations.EdgeCount(), votes.NodeCount(), votes.EdgeCount())
	return citations, votes, nil
}

// CaseAttributes indexes case records by id. The year becomes an integer and the type
// code its name; every other column is kept as text.
func CaseAttributes(records []ports.Record) (map[string]graph.Attributes, error) {
	out := make(map[string]graph.Attributes, len(records))
	for i, r := range records {
		id, err := field(r, ColID, "cases", i)
		if err != nil {
			return nil, err
		}
		attrs := make(graph.Attributes, len(r))
		for k, v := range r {
			if k != ColID {
				attrs[k] = v
			}
		}

		yearText, err := field(r, ColYear, "cases", i)
		if err != nil {
			return nil, err
		}
		year, err := strconv.Atoi(yearText)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("case %s: invalid year %q", id, yearText))
		}
		attrs[graph.AttrYear] = year

		code, err := field(r, ColType, "cases", i)
		if err != nil {
			return nil, err
		}
		name, ok := CaseTypes[strings.ToUpper(code)]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("case %s: unknown case type %q", id, code))
		}
		attrs[graph.AttrType] = name

		out[id] = attrs
	}
	return out, nil
}

// JudgeAttributes indexes judge records by id, keeping every other column as text.
func JudgeAttributes(records []ports.Record) (map[string]graph.Attributes, error) {
	out := make(map[string]graph.Attributes, len(records))
	for i, r := range records {
		id, err := field(r, ColID, "judges", i)
		if err != nil {
			return nil, err
		}
		attrs := make(graph.Attributes, len(r))
		for k, v := range r {
			if k != ColID {
				attrs[k] = v
			}
		}
		out[id] = attrs
	}
	return out, nil
}

// Vote is one authorship row: a judge's position on a decision.
type Vote struct {
	Judge    string
	Decision string
	Weight   float64
	AdHoc    bool
}

// ParseAuthorship reads authorship rows in file order. A later row for the same judge
// and decision replaces an earlier one.
func ParseAuthorship(records []ports.Record) ([]Vote, error) {
	index := make(map[[2]string]int, len(records))
	var out []Vote
	for i, r := range records {
		judge, err := field(r, ColJudge, "authorship", i)
		if err != nil {
			return nil, err
		}
		decision, err := field(r, ColDecision, "authorship", i)
		if err != nil {
			return nil, err
		}
		weightText, err := field(r, ColWeight, "authorship", i)
		if err != nil {
			return nil, err
		}
		weight, err := strconv.ParseFloat(weightText, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("authorship row %d: invalid weight %q", i+1, weightText))
		}
		v := Vote{
			Judge:    judge,
			Decision: decision,
			Weight:   weight,
			AdHoc:    strings.Contains(strings.ToLower(r[ColAdHoc]), "true"),
		}

		key := [2]string{judge, decision}
		if at, ok := index[key]; ok {
			out[at] = v
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}
	return out, nil
}

// CitationGraph builds the decision citation graph. Each decision carries its case
// attributes plus votes_for and votes_against counted from authorship; each citation
// edge is weighted by how often the pair appears and dated with the citing year.
func CitationGraph(cases map[string]graph.Attributes, citations []ports.Record, votes []Vote) (*graph.Graph, error) {
	votesFor := make(map[string]int)
	votesAgainst := make(map[string]int)
	for _, v := range votes {
		switch {
		case v.Weight > 0:
			votesFor[v.Decision]++
		case v.Weight < 0:
			votesAgainst[v.Decision]++
		}
	}

	g := graph.New()
	for id, attrs := range cases {
		if votesFor[id]+votesAgainst[id] == 0 {
			return nil, errors.WithCode(errors.CodeInvalidInput, core.NewNoVotesError(id))
		}
		node := attrs.Clone()
		node[graph.AttrVotesFor] = votesFor[id]
		node[graph.AttrVotesAgainst] = votesAgainst[id]
		g.AddNode(id, node)
	}

	for i, r := range citations {
		source, err := field(r, ColSource, "citations", i)
		if err != nil {
			return nil, err
		}
		target, err := field(r, ColTarget, "citations", i)
		if err != nil {
			return nil, err
		}
		if _, ok := cases[target]; !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("citation row %d: unknown case %s", i+1, target))
		}
		attrs, ok := cases[source]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("citation row %d: unknown case %s", i+1, source))
		}

		if e, ok := g.Edge(source, target); ok {
			g.SetWeight(source, target, e.Weight+1)
			continue
		}
		g.AddEdge(source, target, 1, graph.Attributes{graph.AttrYear: attrs[graph.AttrYear]})
	}
	return g, nil
}

// JudgeNode returns the vote-graph id of judge id.
func JudgeNode(id string) string { return "j" + id }

// VoteGraph builds the bipartite judge-to-decision vote graph. Judges span the years
// of their first and last recorded vote.
func VoteGraph(cases map[string]graph.Attributes, votes []Vote, judges map[string]graph.Attributes) (*graph.Graph, error) {
	g := graph.New()
	for _, v := range votes {
		caseAttrs, ok := cases[v.Decision]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("authorship: unknown case %s", v.Decision))
		}
		judgeAttrs, ok := judges[v.Judge]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("authorship: unknown judge %s", v.Judge))
		}
		year := caseAttrs[graph.AttrYear].(int)

		judge := JudgeNode(v.Judge)
		if existing, seen := g.Node(judge); seen {
			if first, _ := existing.Int(graph.AttrYear); year < first {
				existing[graph.AttrYear] = year
			}
			if last, _ := existing.Int(graph.AttrLastYear); year > last {
				existing[graph.AttrLastYear] = year
			}
		} else {
			attrs := judgeAttrs.Clone()
			attrs[graph.AttrClass] = graph.ClassJudge
			attrs[graph.AttrYear] = year
			attrs[graph.AttrLastYear] = year
			g.AddNode(judge, attrs)
		}

		if !g.HasNode(v.Decision) {
			attrs := caseAttrs.Clone()
			attrs[graph.AttrClass] = graph.ClassDecision
			g.AddNode(v.Decision, attrs)
		}

		g.AddEdge(judge, v.Decision, v.Weight, graph.Attributes{
			graph.AttrYear:  year,
			graph.AttrAdHoc: v.AdHoc,
		})
	}
	return g, nil
}

func field(r ports.Record, column, table string, row int) (string, error) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", errors.InvalidInput(fmt.Sprintf("%s row %d: missing %q", table, row+1, column))
	}
	return v, nil
}
