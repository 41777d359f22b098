package features

import (
	"context"
	"fmt"
	"sort"

	"jurisnet/domain/core"
	"jurisnet/domain/graph"
)

// Frame holds everything a profile computed for one year, keyed by entity.
type Frame struct {
	// Network is the graph the independent variables were computed on.
	Network *graph.Graph
	// Independent decides which entities get a row this year.
	Independent map[string]Row
	// Dependent carries one citation count per active window.
	Dependent map[string]Row
	// Covariates carries contextual variables such as age and network size.
	Covariates map[string]Row
}

// Profile supplies the entity-specific parts of the year loop.
type Profile interface {
	// Name identifies the pipeline in logs and metrics.
	Name() string
	// Entity is the entity column name, e.g. "decision" or "judge".
	Entity() string
	// Years returns the sorted distinct years observed in the input.
	Years() []int
	// Normalizer names the variable lagged values are divided by, or "".
	Normalizer() string
	// Frame computes the variables for year; windows lists the dependent
	// windows that fit before the last observed year.
	Frame(year int, windows []int) (*Frame, error)
}

// Assembler runs the sliding-window loop.
type Assembler struct {
	// Windows are the dependent variable window lengths in years.
	Windows []int
	// Lags are the lag counts applied to every dependent variable.
	Lags []int
	// OnYear, when set, is called after each year with the number of rows written.
	OnYear func(year, rows int)
}

// Run builds the entity-year table for p. Years run from the first observed year to the
// last observed year minus the shortest window, strictly in order: lagged variables for
// a year read rows written for earlier years.
func (a Assembler) Run(ctx context.Context, p Profile) (*Table, error) {
	if len(a.Windows) == 0 {
		return nil, fmt.Errorf("%w: no dependent windows configured", core.ErrInsufficientData)
	}
	table := NewTable()
	years := p.Years()
	if len(years) == 0 {
		return table, nil
	}

	windows := append([]int(nil), a.Windows...)
	sort.Ints(windows)
	first, last := years[0], years[len(years)-1]

	for year := first; year <= last-windows[0]; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var active []int
		for _, w := range windows {
			if year+w <= last {
				active = append(active, w)
			}
		}

		frame, err := p.Frame(year, active)
		if err != nil {
			return nil, fmt.Errorf("%s features for %d: %w", p.Name(), year, err)
		}

		written := 0
		for _, entity := range sortedEntities(frame.Independent) {
			row := make(Row)
			row.Merge(frame.Independent[entity])
			row.Merge(frame.Dependent[entity])
			row.Merge(frame.Covariates[entity])

			for _, w := range active {
				lagged, err := LaggedVariables(table, DependentName(w), entity, year, a.Lags, p.Normalizer())
				if err != nil {
					return nil, err
				}
				row.Merge(lagged)
			}

			if err := table.Put(entity, year, row); err != nil {
				return nil, err
			}
			written++
		}

		if a.OnYear != nil {
			a.OnYear(year, written)
		}
	}
	return table, nil
}

func sortedEntities(rows map[string]Row) []string {
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
