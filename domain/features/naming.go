package features

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	dependentPrefix = "citations_next_"
	laggedPrefix    = "lagged_"
)

// DependentName names the citation count over the next years years:
// citations_next_year for one year, citations_next_<n>_years otherwise.
func DependentName(years int) string {
	if years > 1 {
		return fmt.Sprintf("%s%d_years", dependentPrefix, years)
	}
	return dependentPrefix + "year"
}

// DependentWindow parses the window length back out of a dependent variable name.
func DependentWindow(name string) (int, error) {
	rest, ok := strings.CutPrefix(name, dependentPrefix)
	if !ok {
		return 0, fmt.Errorf("%q is not a dependent variable", name)
	}
	if rest == "year" {
		return 1, nil
	}
	digits, ok := strings.CutSuffix(rest, "_years")
	if !ok {
		return 0, fmt.Errorf("%q is not a dependent variable", name)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q has no valid window length", name)
	}
	return n, nil
}

// LaggedName names the dependent variable looked up lag windows back.
func LaggedName(dependent string, lag int) string {
	if lag > 1 {
		return fmt.Sprintf("%s%s_%d", laggedPrefix, dependent, lag)
	}
	return laggedPrefix + dependent
}
