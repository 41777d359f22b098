package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaming(t *testing.T) {
	assert.Equal(t, "citations_next_year", DependentName(1))
	assert.Equal(t, "citations_next_5_years", DependentName(5))
	assert.Equal(t, "lagged_citations_next_year", LaggedName(DependentName(1), 1))
	assert.Equal(t, "lagged_citations_next_5_years_3", LaggedName(DependentName(5), 3))

	for _, w := range []int{1, 2, 10} {
		got, err := DependentWindow(DependentName(w))
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	for _, bad := range []string{"pagerank", "citations_next_x_years", "citations_next_0_years", "citations_next_3"} {
		_, err := DependentWindow(bad)
		assert.Error(t, err, bad)
	}
}

func TestLaggedVariables_DirectLookup(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Put("d", 2000, Row{DependentName(1): Int(3)}))

	got, err := LaggedVariables(table, DependentName(1), "d", 2001, []int{1, 2}, "")
	require.NoError(t, err)
	assert.Equal(t, Row{
		"lagged_citations_next_year":   Float(3),
		"lagged_citations_next_year_2": Float(0),
	}, got)
}

func TestLaggedVariables_FallsBackToShorterWindow(t *testing.T) {
	// Nothing at 1996, the first row for d is 1997: its four-year count covers the same
	// span as the missing five-year count would have.
	table := NewTable()
	require.NoError(t, table.Put("d", 1997, Row{
		DependentName(4): Int(7),
		DependentName(5): Int(9),
	}))

	got, err := LaggedVariables(table, DependentName(5), "d", 2001, []int{1}, "")
	require.NoError(t, err)
	assert.Equal(t, Float(7), got["lagged_citations_next_5_years"])
}

func TestLaggedVariables_Normalizer(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Put("j", 2000, Row{DependentName(1): Int(6), VarSupportedDecisions: Int(2)}))
	require.NoError(t, table.Put("j", 2001, Row{DependentName(1): Int(6), VarSupportedDecisions: Int(0)}))

	got, err := LaggedVariables(table, DependentName(1), "j", 2002, []int{1, 2}, VarSupportedDecisions)
	require.NoError(t, err)
	assert.Equal(t, Float(0), got["lagged_citations_next_year"], "zero normalizer counts as missing")
	assert.Equal(t, Float(3), got["lagged_citations_next_year_2"])
}

func TestLaggedVariables_RejectsNonDependent(t *testing.T) {
	_, err := LaggedVariables(NewTable(), "hub", "d", 2000, []int{1}, "")
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Put("b", 2000, Row{"x": Int(1)}))
	require.NoError(t, table.Put("a", 2001, Row{"y": Text("merits")}))
	assert.Error(t, table.Put("b", 2000, Row{}), "rows are write-once")

	assert.Equal(t, []Key{{"b", 2000}, {"a", 2001}}, table.Keys())
	assert.Equal(t, []string{"x", "y"}, table.Columns())
	assert.Equal(t, 2, table.Len())

	row, ok := table.Get("a", 2001)
	require.True(t, ok)
	assert.Equal(t, "merits", row["y"].String())
}

func TestValue(t *testing.T) {
	assert.Equal(t, "4", Int(4).String())
	assert.Equal(t, "0.25", Float(0.25).String())
	assert.Equal(t, "True", Flag(true).String())
	assert.Equal(t, "False", Flag(false).String())

	_, ok := Text("advisory").Number()
	assert.False(t, ok)
	assert.Equal(t, Int(12), ParseValue("12"))
	assert.Equal(t, Float(1.5), ParseValue("1.5"))
	assert.True(t, ParseValue("merits").IsText())
}
