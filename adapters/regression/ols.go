// Package regression is the baseline model fitter: ordinary least squares over the
// complete rows of a feature table.
package regression

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"jurisnet/domain/core"
	"jurisnet/domain/features"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InterceptTerm names the constant column.
const InterceptTerm = "(Intercept)"

// offsetFloor is added to every offset value when any of them is zero.
const offsetFloor = 0.01

// OLS fits y = Xb + e by QR decomposition. Categorical regressors are dummy-encoded
// against their first level in sorted order. With an offset column the dependent
// variable is modelled as a rate, y / offset.
type OLS struct {
	// Standardize z-scores numeric regressors other than lagged dependents.
	Standardize bool
	logger      *logging.Logger
}

var _ ports.ModelFitter = (*OLS)(nil)

// NewOLS returns a fitter that standardizes regressors.
func NewOLS(logger *logging.Logger) *OLS {
	if logger == nil {
		logger = logging.Default
	}
	return &OLS{Standardize: true, logger: logger}
}

type column struct {
	name    string
	numbers []float64
	labels  []string
}

func (c column) categorical() bool { return c.labels != nil }

// Fit estimates spec over the rows of table where every named column is present.
func (o *OLS) Fit(ctx context.Context, table *features.Table, spec ports.ModelSpec) (*ports.Coefficients, error) {
	regressors := spec.Regressors()
	rows, err := completeRows(ctx, table, spec)
	if err != nil {
		return nil, err
	}

	lagged := make(map[string]bool, len(spec.Lags))
	for _, l := range spec.Lags {
		lagged[l] = true
	}

	y, err := numeric(rows, spec.Dependent)
	if err != nil {
		return nil, err
	}
	if spec.Offset != "" {
		offset, err := numeric(rows, spec.Offset)
		if err != nil {
			return nil, err
		}
		for _, v := range offset {
			if v == 0 {
				floats.AddConst(offsetFloor, offset)
				break
			}
		}
		for i := range y {
			y[i] /= offset[i]
		}
	}

	result := &ports.Coefficients{
		Dependent:    spec.Dependent,
		Observations: len(rows),
		Means:        make(map[string]float64),
		StdDevs:      make(map[string]float64),
	}

	terms := []string{InterceptTerm}
	design := [][]float64{constant(len(rows), 1)}
	for _, name := range regressors {
		col, err := readColumn(rows, name)
		if err != nil {
			return nil, err
		}
		if col.categorical() {
			levels := levelsOf(col.labels)
			for _, level := range levels[1:] {
				dummy := make([]float64, len(rows))
				for i, l := range col.labels {
					if l == level {
						dummy[i] = 1
					}
				}
				terms = append(terms, fmt.Sprintf("%s[%s]", name, level))
				design = append(design, dummy)
			}
			continue
		}
		values := col.numbers
		if o.Standardize && !lagged[name] {
			mean, _ := stats.Mean(values)
			sd, _ := stats.StandardDeviation(values)
			if sd == 0 {
				return nil, errors.InvalidInput(fmt.Sprintf("regressor %s is constant", name))
			}
			for i := range values {
				values[i] = (values[i] - mean) / sd
			}
			result.Means[name] = mean
			result.StdDevs[name] = sd
		}
		terms = append(terms, name)
		design = append(design, values)
	}

	n, p := len(rows), len(terms)
	if n <= p {
		return nil, fmt.Errorf("%w: %d complete rows for %d terms", core.ErrInsufficientData, n, p)
	}

	x := mat.NewDense(n, p, nil)
	for j, values := range design {
		x.SetCol(j, values)
	}

	var qr mat.QR
	qr.Factorize(x)
	if j, ok := rankDeficient(&qr, p); ok {
		return nil, errors.InvalidInput(fmt.Sprintf("term %s of %s is collinear with earlier terms", terms[j], spec.Dependent))
	}

	var xtx, cov mat.Dense
	xtx.Mul(x.T(), x)
	if err := cov.Inverse(&xtx); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("regressors of %s are singular: %v", spec.Dependent, err))
		}
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("least squares for %s failed: %v", spec.Dependent, err))
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	residuals := floats.SubTo(make([]float64, n), y, fitted.RawVector().Data)
	rss := floats.Dot(residuals, residuals)
	df := float64(n - p)
	sigma2 := rss / df

	mean, _ := stats.Mean(y)
	deviations := make([]float64, n)
	for i, v := range y {
		deviations[i] = v - mean
	}
	if tss := floats.Dot(deviations, deviations); tss > 0 {
		result.RSquared = 1 - rss/tss
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	result.Terms = make([]ports.Coefficient, p)
	for j, term := range terms {
		se := math.Sqrt(sigma2 * cov.At(j, j))
		c := ports.Coefficient{Term: term, Estimate: beta.AtVec(j), StdError: se}
		if se > 0 {
			c.TValue = c.Estimate / se
			c.PValue = 2 * dist.Survival(math.Abs(c.TValue))
		}
		result.Terms[j] = c
	}

	o.logger.Debug("fitted %s on %d rows, %d terms, R2 %.4f", spec.Dependent, n, p, result.RSquared)
	return result, nil
}

// rankDeficient returns the first column whose diagonal entry of R is negligible.
func rankDeficient(qr *mat.QR, p int) (int, bool) {
	var r mat.Dense
	qr.RTo(&r)
	largest := 0.0
	for j := 0; j < p; j++ {
		largest = math.Max(largest, math.Abs(r.At(j, j)))
	}
	for j := 0; j < p; j++ {
		if math.Abs(r.At(j, j)) <= 1e-9*largest {
			return j, true
		}
	}
	return 0, false
}

func completeRows(ctx context.Context, table *features.Table, spec ports.ModelSpec) ([]features.Row, error) {
	needed := append([]string{spec.Dependent}, spec.Regressors()...)
	if spec.Offset != "" {
		needed = append(needed, spec.Offset)
	}

	var rows []features.Row
	for i, key := range table.Keys() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, _ := table.Get(key.Entity, key.Year)
		if hasAll(row, needed) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no complete rows for %s", core.ErrInsufficientData, strings.Join(needed, ", "))
	}
	return rows, nil
}

func hasAll(row features.Row, names []string) bool {
	for _, n := range names {
		if _, ok := row[n]; !ok {
			return false
		}
	}
	return true
}

func numeric(rows []features.Row, name string) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, ok := row[name].Number()
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("%s must be numeric, found %q", name, row[name].String()))
		}
		out[i] = v
	}
	return out, nil
}

// readColumn treats a column as categorical when any of its values is text.
func readColumn(rows []features.Row, name string) (column, error) {
	for _, row := range rows {
		if row[name].IsText() {
			labels := make([]string, len(rows))
			for i, r := range rows {
				labels[i] = r[name].String()
			}
			return column{name: name, labels: labels}, nil
		}
	}
	values, err := numeric(rows, name)
	return column{name: name, numbers: values}, err
}

func levelsOf(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
