package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity-registry.json")
	schema, err := SchemaMap(`{"type":"object","required":["question"]}`)
	require.NoError(t, err)

	reg := &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{{
			ID:          "answer-staff-question",
			TaskType:    "answer-staff-question",
			InputSchema: schema,
			Retries:     3,
			Enabled:     true,
		}},
	}
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())

	activity, ok := loaded.Find("answer-staff-question")
	require.True(t, ok)
	assert.Equal(t, 3, activity.Retries)
	assert.Equal(t, "object", activity.InputSchema["type"])

	_, ok = loaded.Find("missing")
	assert.False(t, ok)
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name        string
		activities  []Activity
		expectedErr string
	}{
		{"empty", nil, "no activities"},
		{"missing id", []Activity{{TaskType: "a"}}, "missing required field: ID"},
		{"missing task type", []Activity{{ID: "a"}}, "missing required field: taskType"},
		{"duplicate id", []Activity{{ID: "a", TaskType: "a"}, {ID: "a", TaskType: "b"}}, "duplicate activity ID"},
		{"duplicate task type", []Activity{{ID: "a", TaskType: "t"}, {ID: "b", TaskType: "t"}}, "duplicate task type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ActivityRegistry{Activities: tt.activities}).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestSchemaMap_Invalid(t *testing.T) {
	_, err := SchemaMap(`{"type":`)
	assert.Error(t, err)
}
