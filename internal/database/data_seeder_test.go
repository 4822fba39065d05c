package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConditions(t *testing.T) {
	conds, err := LoadConditions(strings.NewReader(`
conditions:
  - id: validez
    texto: "Validez de la oferta: 30 días."
  - id: pago
    texto: "Pago al contado."
    categoria: pagos
    orden: 10
  - id: antigua
    texto: "Ya no aplica."
    activo: false
`))
	require.NoError(t, err)
	require.Len(t, conds, 3)

	assert.Equal(t, "validez", conds[0].ID)
	assert.Equal(t, 1, conds[0].Order)
	assert.True(t, conds[0].Active)
	assert.Equal(t, 10, conds[1].Order)
	assert.Equal(t, "pagos", conds[1].Category)
	assert.False(t, conds[2].Active)
}

func TestLoadConditions_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		errorMsg string
	}{
		{"missing id", "conditions:\n  - texto: x\n", "id is required"},
		{"duplicate id", "conditions:\n  - {id: a, texto: x}\n  - {id: a, texto: y}\n", "duplicate id 'a'"},
		{"missing text", "conditions:\n  - id: a\n", "texto is required"},
		{"bad yaml", "conditions: [", "parsing conditions YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConditions(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
