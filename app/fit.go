package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"jurisnet/domain/agreement"
	"jurisnet/domain/features"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"
)

// ModelPlan lists the models fitted for one feature table: one model per dependent
// variable and independent variable set, each with the same controls.
type ModelPlan struct {
	Entity      string
	Independent [][]string
	Controls    []string
	Offset      string
}

// DecisionModelPlan fits each decision network variable on its own against age, type
// and year controls.
func DecisionModelPlan() ModelPlan {
	return ModelPlan{
		Entity: "decision",
		Independent: [][]string{
			{features.VarPageRank},
			{features.VarReversePageRank},
			{features.VarHub},
			{features.VarAuthority},
			{features.VarUnanimity},
			{features.VarPrecedent},
		},
		Controls: []string{features.VarAge, features.VarAgeSquared, features.VarType, features.VarCurrentYear},
	}
}

// JudgeModelPlan fits judge variables with supported decisions as exposure. On a
// symmetric network hub equals authority and in-degree equals out-degree, so only one
// of each pair is fitted.
func JudgeModelPlan(network string) ModelPlan {
	independent := [][]string{
		{features.VarHub},
		{features.VarAuthority},
		{features.VarInDegree},
		{features.VarOutDegree},
	}
	if agreement.Symmetric(network) {
		independent = [][]string{{features.VarHub}, {features.VarInDegree}}
	}
	return ModelPlan{
		Entity:      "judge",
		Independent: independent,
		Controls: []string{
			features.VarSeniority, features.VarSenioritySquared, features.VarCurrentYear,
			features.VarNumVotesThisYear, features.VarAdHocThisYear,
		},
		Offset: features.VarSupportedDecisions,
	}
}

// Specs expands the plan over every dependent variable found in columns, shortest
// window first.
func (p ModelPlan) Specs(columns []string, lags []int) []ports.ModelSpec {
	type dependent struct {
		name   string
		window int
	}
	var dependents []dependent
	for _, c := range columns {
		if w, err := features.DependentWindow(c); err == nil {
			dependents = append(dependents, dependent{c, w})
		}
	}
	sort.Slice(dependents, func(i, j int) bool { return dependents[i].window < dependents[j].window })

	var specs []ports.ModelSpec
	for _, dep := range dependents {
		lagged := make([]string, len(lags))
		for i, k := range lags {
			lagged[i] = features.LaggedName(dep.name, k)
		}
		for _, independent := range p.Independent {
			specs = append(specs, ports.ModelSpec{
				Dependent:   dep.name,
				Independent: independent,
				Controls:    p.Controls,
				Offset:      p.Offset,
				Lags:        lagged,
			})
		}
	}
	return specs
}

// FitService fits a plan against a feature table written by a previous run.
type FitService struct {
	source ports.TableSource
	fitter ports.ModelFitter
	logger *logging.Logger
}

// NewFitService creates a fit service
func NewFitService(source ports.TableSource, fitter ports.ModelFitter, logger *logging.Logger) *FitService {
	if logger == nil {
		logger = logging.Default
	}
	return &FitService{source: source, fitter: fitter, logger: logger}
}

// Fit reads the table at path and fits every model of plan.
func (s *FitService) Fit(ctx context.Context, path string, plan ModelPlan, lags []int) ([]*ports.Coefficients, error) {
	records, err := s.source.ReadRecords(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	table, err := TableFromRecords(records, plan.Entity)
	if err != nil {
		return nil, err
	}

	specs := plan.Specs(table.Columns(), lags)
	if len(specs) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no dependent variables", path))
	}

	fits := make([]*ports.Coefficients, 0, len(specs))
	for _, spec := range specs {
		fit, err := s.fitter.Fit(ctx, table, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fit %s on %v", spec.Dependent, spec.Independent)
		}
		s.logger.Info("fitted %s ~ %v (%d rows)", spec.Dependent, spec.Independent, fit.Observations)
		fits = append(fits, fit)
	}
	return fits, nil
}

// TableFromRecords reads a written entity-year table back. Blank cells are absent
// variables; other cells parse as integers, reals or categories.
func TableFromRecords(records []ports.Record, entity string) (*features.Table, error) {
	table := features.NewTable()
	for i, r := range records {
		id := r[entity]
		if id == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: missing %s", i+1, entity))
		}
		year, err := strconv.Atoi(r["year"])
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: invalid year %q", i+1, r["year"]))
		}

		row := make(features.Row, len(r))
		for k, v := range r {
			if k == entity || k == "year" || v == "" {
				continue
			}
			row[k] = features.ParseValue(v)
		}
		if err := table.Put(id, year, row); err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
	}
	return table, nil
}
