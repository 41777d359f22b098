package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Year("decision", 3)
	r.Year("decision", 2)
	r.Year("direct", 4)
	r.Stage("load")()

	path := filepath.Join(t.TempDir(), "jurisnet.prom")
	require.NoError(t, r.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `jurisnet_years_processed_total{pipeline="decision"} 2`)
	assert.Contains(t, text, `jurisnet_feature_rows_total{pipeline="decision"} 5`)
	assert.Contains(t, text, `jurisnet_feature_rows_total{pipeline="direct"} 4`)
	assert.Contains(t, text, `jurisnet_stage_seconds_count{stage="load"} 1`)
}

func TestRecorder_RegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Year("decision", 1)

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
}
