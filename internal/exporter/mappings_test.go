package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startupeda/pkg/contracts/domain"
)

func sampleMappings() domain.Mappings {
	status := domain.NewColumnMapping("status")
	status.Add("closed")
	status.Add("acquired")
	city := domain.NewColumnMapping("city")
	city.Add("San Francisco")
	city.Add("Boston")
	return domain.Mappings{status, city}
}

func TestWriteMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "column_mappings.json")
	require.NoError(t, WriteMappings(path, sampleMappings()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "status": {
    "closed": 0,
    "acquired": 1
  },
  "city": {
    "San Francisco": 0,
    "Boston": 1
  }
}
`, string(data))

	var decoded domain.Mappings
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"status", "city"}, decoded.Columns())
}

func TestWriteMappings_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, WriteMappings(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(path, map[string]int{"rows": 6}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 6}`, string(data))
}
