package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMapping_FirstAppearance(t *testing.T) {
	m := NewColumnMapping("status")
	for _, label := range []string{"closed", "acquired", "closed", "acquired"} {
		m.Add(label)
	}

	assert.Equal(t, []string{"closed", "acquired"}, m.Labels())
	assert.Equal(t, map[string]int{"closed": 0, "acquired": 1}, m.Codes())
	assert.Equal(t, 2, m.Len())

	code, ok := m.Code("acquired")
	assert.True(t, ok)
	assert.Equal(t, 1, code)

	label, ok := m.Label(0)
	assert.True(t, ok)
	assert.Equal(t, "closed", label)

	_, ok = m.Label(2)
	assert.False(t, ok)
	_, ok = m.Code("ipo")
	assert.False(t, ok)
}

func TestMappings_JSONPreservesOrder(t *testing.T) {
	status := NewColumnMapping("status")
	status.Add("closed")
	status.Add("acquired")
	state := NewColumnMapping("state_code")
	state.Add("NY")
	state.Add("CA")
	state.Add("MA")

	data, err := json.Marshal(Mappings{status, state})
	require.NoError(t, err)
	assert.Equal(t, `{"status":{"closed":0,"acquired":1},"state_code":{"NY":0,"CA":1,"MA":2}}`, string(data))

	var decoded Mappings
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"status", "state_code"}, decoded.Columns())
	assert.Equal(t, []string{"NY", "CA", "MA"}, decoded.Get("state_code").Labels())
	assert.Nil(t, decoded.Get("city"))
}

func TestMappings_UnmarshalRejectsGaps(t *testing.T) {
	var decoded Mappings
	assert.Error(t, json.Unmarshal([]byte(`{"status":{"closed":1}}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`["status"]`), &decoded))
}
