package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *Validator {
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidateBulk_Valid(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateBulk([]byte(`{
		"mode": "upsert",
		"assets": [
			{"asset_code": "1234", "equipment_name": "Betoneira 400L", "unit_value": 1500.5},
			{"asset_code": "PAT-000987", "purchase_date": "2024-11-02", "equipment_condition": "USADO"}
		]
	}`))
	assert.NoError(t, err)
}

func TestValidateBulk_Rejects(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		body string
		path string
	}{
		{"malformed json", `{"assets": [`, ""},
		{"missing assets", `{"mode": "upsert"}`, ""},
		{"unknown mode", `{"mode": "replace", "assets": [{"asset_code": "1"}]}`, "/mode"},
		{"empty batch", `{"assets": []}`, "/assets"},
		{"missing code", `{"assets": [{"equipment_name": "Andaime"}]}`, "/assets/0"},
		{"bad date", `{"assets": [{"asset_code": "1", "purchase_date": "02/11/2024"}]}`, "/assets/0/purchase_date"},
		{"bad condition", `{"assets": [{"asset_code": "1", "equipment_condition": "SEMINOVO"}]}`, "/assets/0/equipment_condition"},
		{"unknown top-level field", `{"assets": [{"asset_code": "1"}], "dry_run": true}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBulk([]byte(tt.body))
			require.Error(t, err)

			var serr *Error
			require.ErrorAs(t, err, &serr)
			require.NotEmpty(t, serr.Violations)
			if tt.path != "" {
				assert.Equal(t, tt.path, serr.Violations[0].Path)
			}
		})
	}
}

func TestValidateBulk_TooManyOperations(t *testing.T) {
	v := newValidator(t)

	items := make([]string, 101)
	for i := range items {
		items[i] = `{"asset_code": "1"}`
	}
	err := v.ValidateBulk([]byte(`{"assets": [` + strings.Join(items, ",") + `]}`))

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "/assets", serr.Violations[0].Path)
}
