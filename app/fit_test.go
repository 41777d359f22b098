package app

import (
	"context"
	"testing"

	"jurisnet/domain/features"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFitter struct {
	mock.Mock
}

func (m *mockFitter) Fit(ctx context.Context, table *features.Table, spec ports.ModelSpec) (*ports.Coefficients, error) {
	args := m.Called(ctx, table, spec)
	if c := args.Get(0); c != nil {
		return c.(*ports.Coefficients), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordSource map[string][]ports.Record

func (s recordSource) ReadRecords(_ context.Context, path string) ([]ports.Record, error) {
	records, ok := s[path]
	if !ok {
		return nil, errors.InvalidInput("no table " + path)
	}
	return records, nil
}

func judgeRecords() []ports.Record {
	return []ports.Record{
		{"judge": "j1", "year": "2000", "hub": "0.5", "citations_next_year": "1", "citations_next_5_years": "", "member_this_year": "True"},
		{"judge": "j1", "year": "2001", "hub": "0.25", "citations_next_year": "2", "citations_next_5_years": "3", "lagged_citations_next_year": "1"},
	}
}

func TestModelPlan_Specs(t *testing.T) {
	columns := []string{"citations_next_5_years", "hub", "lagged_citations_next_year", "citations_next_year"}
	specs := JudgeModelPlan("direct").Specs(columns, []int{1, 2})

	require.Len(t, specs, 4)
	assert.Equal(t, "citations_next_year", specs[0].Dependent)
	assert.Equal(t, []string{features.VarHub}, specs[0].Independent)
	assert.Equal(t, []string{"lagged_citations_next_year", "lagged_citations_next_year_2"}, specs[0].Lags)
	assert.Equal(t, features.VarSupportedDecisions, specs[0].Offset)
	assert.Equal(t, []string{features.VarInDegree}, specs[1].Independent)
	assert.Equal(t, "citations_next_5_years", specs[2].Dependent)

	assert.Len(t, JudgeModelPlan("indirect").Specs(columns, nil), 8)
	assert.Len(t, DecisionModelPlan().Specs([]string{"citations_next_10_years"}, nil), 6)
}

func TestTableFromRecords(t *testing.T) {
	table, err := TableFromRecords(judgeRecords(), "judge")
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	row, ok := table.Get("j1", 2000)
	require.True(t, ok)
	assert.Equal(t, features.Float(0.5), row["hub"])
	assert.Equal(t, features.Int(1), row["citations_next_year"])
	assert.Equal(t, features.Text("True"), row["member_this_year"])
	assert.NotContains(t, row, "citations_next_5_years")

	_, err = TableFromRecords([]ports.Record{{"judge": "j1", "year": "soon"}}, "judge")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = TableFromRecords(append(judgeRecords(), judgeRecords()[0]), "judge")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestFitService_FitsEveryModel(t *testing.T) {
	fitter := new(mockFitter)
	fitter.On("Fit", mock.Anything, mock.Anything, mock.MatchedBy(func(s ports.ModelSpec) bool {
		return s.Dependent == "citations_next_year"
	})).Return(&ports.Coefficients{Dependent: "citations_next_year", Observations: 2}, nil).Twice()
	fitter.On("Fit", mock.Anything, mock.Anything, mock.MatchedBy(func(s ports.ModelSpec) bool {
		return s.Dependent == "citations_next_5_years"
	})).Return(&ports.Coefficients{Dependent: "citations_next_5_years"}, nil).Twice()

	service := NewFitService(recordSource{"direct.csv": judgeRecords()}, fitter, logging.Discard())
	fits, err := service.Fit(context.Background(), "direct.csv", JudgeModelPlan("direct"), []int{1})
	require.NoError(t, err)

	require.Len(t, fits, 4)
	assert.Equal(t, "citations_next_year", fits[0].Dependent)
	assert.Equal(t, "citations_next_5_years", fits[3].Dependent)
	fitter.AssertExpectations(t)
}

func TestFitService_Errors(t *testing.T) {
	fitter := new(mockFitter)
	fitter.On("Fit", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.InvalidInput("singular"))
	service := NewFitService(recordSource{"direct.csv": judgeRecords()}, fitter, logging.Discard())

	_, err := service.Fit(context.Background(), "direct.csv", JudgeModelPlan("direct"), []int{1})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = service.Fit(context.Background(), "missing.csv", JudgeModelPlan("direct"), []int{1})
	require.Error(t, err)

	empty := NewFitService(recordSource{"x.csv": {{"judge": "j1", "year": "2000", "hub": "1"}}}, fitter, logging.Discard())
	_, err = empty.Fit(context.Background(), "x.csv", JudgeModelPlan("direct"), nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
