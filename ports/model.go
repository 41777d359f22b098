package ports

import (
	"context"

	"jurisnet/domain/features"
)

// ModelFitter is the statistical modeling collaborator: it fits a model to a feature
// table and returns coefficient estimates.
type ModelFitter interface {
	Fit(ctx context.Context, table *features.Table, spec ModelSpec) (*Coefficients, error)
}

// ModelSpec names the columns of one model
type ModelSpec struct {
	Dependent   string
	Independent []string
	Controls    []string // covariates; categorical columns are dummy-encoded
	Offset      string   // optional exposure column, e.g. supported_decisions
	Lags        []string // lagged dependent variables included as regressors
}

// Regressors returns every right-hand side column in model order.
func (s ModelSpec) Regressors() []string {
	out := make([]string, 0, len(s.Independent)+len(s.Controls)+len(s.Lags))
	out = append(out, s.Independent...)
	out = append(out, s.Lags...)
	out = append(out, s.Controls...)
	return out
}

// Coefficient is one estimated term
type Coefficient struct {
	Term     string
	Estimate float64
	StdError float64
	TValue   float64
	PValue   float64
}

// Coefficients is a fitted model summary
type Coefficients struct {
	Dependent    string
	Terms        []Coefficient
	Observations int
	RSquared     float64
	// Means and StdDevs of standardized regressors, for converting estimates back
	Means   map[string]float64
	StdDevs map[string]float64
}
