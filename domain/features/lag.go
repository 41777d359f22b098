package features

// LaggedVariables looks up, for each lag k, the value of dependent recorded for entity
// k windows before year (a window being the dependent variable's length L).
//
// When no row exists for year - k*L, the nearest later row inside that window is used
// instead, reading the dependent variable of the shorter window that ends at the same
// year. A lookup that still finds nothing yields 0. When normalizer is set, the value is
// divided by that variable of the same historical row, and a row whose normalizer is not
// positive counts as missing.
func LaggedVariables(rows Snapshot, dependent, entity string, year int, lags []int, normalizer string) (Row, error) {
	window, err := DependentWindow(dependent)
	if err != nil {
		return nil, err
	}

	out := make(Row, len(lags))
	for _, lag := range lags {
		out[LaggedName(dependent, lag)] = Float(laggedValue(rows, dependent, window, entity, year-lag*window, normalizer))
	}
	return out, nil
}

func laggedValue(rows Snapshot, dependent string, window int, entity string, year int, normalizer string) float64 {
	row, ok := rows.Get(entity, year)
	if !ok {
		for y := 1; y < window; y++ {
			if row, ok = rows.Get(entity, year+y); ok {
				dependent = DependentName(window - y)
				break
			}
		}
	}
	if !ok {
		return 0
	}

	value, ok := row[dependent].Number()
	if !ok {
		return 0
	}
	if normalizer == "" {
		return value
	}
	norm, ok := row[normalizer].Number()
	if !ok || norm <= 0 {
		return 0
	}
	return value / norm
}
