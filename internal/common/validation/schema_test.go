package validation

import (
	"testing"

	"caab-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *registry.ActivityRegistry {
	reg, err := registry.Parse([]byte(`{"activities":[{
		"id":"map","taskType":"map-case-application",
		"inputSchema":{
			"type":"object",
			"required":["casePayload"],
			"properties":{
				"sourceSystem":{"type":"string","enum":["EBS","SOA",""]},
				"casePayload":{"type":"object"}
			}
		}
	}]}`))
	require.NoError(t, err)
	return reg
}

func TestValidateInput(t *testing.T) {
	v, err := NewValidator(testRegistry(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		valid bool
		field string
	}{
		{name: "valid", input: `{"sourceSystem":"EBS","casePayload":{}}`, valid: true},
		{name: "missing payload", input: `{"sourceSystem":"EBS"}`, field: "(root)"},
		{name: "unknown source", input: `{"sourceSystem":"XYZ","casePayload":{}}`, field: "sourceSystem"},
		{name: "payload not object", input: `{"casePayload":"x"}`, field: "casePayload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateInput("map-case-application", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.field, res.Errors[0].Field)
				assert.NotEmpty(t, res.Summary())
			}
		})
	}
}

func TestValidateInput_UnknownTaskTypePasses(t *testing.T) {
	v, err := NewValidator(testRegistry(t))
	require.NoError(t, err)

	res, err := v.ValidateInput("something-else", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}
