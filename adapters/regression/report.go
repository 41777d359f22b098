package regression

import (
	"encoding/csv"
	"io"
	"strconv"

	"jurisnet/ports"
)

var reportHeader = []string{
	"dependent", "term", "estimate", "std_error", "t_value", "p_value",
	"observations", "r_squared", "regressor_mean", "regressor_std_dev",
}

// WriteCoefficients writes one CSV row per term of every fitted model. Means and
// standard deviations are blank for terms that were not standardized.
func WriteCoefficients(w io.Writer, fits ...*ports.Coefficients) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, fit := range fits {
		for _, c := range fit.Terms {
			record := []string{
				fit.Dependent,
				c.Term,
				formatFloat(c.Estimate),
				formatFloat(c.StdError),
				formatFloat(c.TValue),
				formatFloat(c.PValue),
				strconv.Itoa(fit.Observations),
				formatFloat(fit.RSquared),
				"",
				"",
			}
			if sd, ok := fit.StdDevs[c.Term]; ok {
				record[8] = formatFloat(fit.Means[c.Term])
				record[9] = formatFloat(sd)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
