package quotexlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentTotals(t *testing.T) {
	doc := Document{
		IncludeIGV: true,
		IGVRate:    DefaultIGVRate,
		Items:      fourItems(),
	}
	got := doc.Totals()
	assert.InDelta(t, 432.0, got.Subtotal, 0.001)
	assert.InDelta(t, 77.76, got.IGV, 0.001)
	assert.InDelta(t, 509.76, got.Total, 0.001)

	doc.IncludeIGV = false
	got = doc.Totals()
	assert.Zero(t, got.IGV)
	assert.InDelta(t, got.Subtotal, got.Total, 0.001)

	assert.Equal(t, Totals{}, Document{}.Totals())
}

func TestLineItemTotal(t *testing.T) {
	assert.InDelta(t, 62.0, LineItem{UnitCost: 15.5, Quantity: 4}.Total(), 0.001)
	assert.InDelta(t, 0.33, LineItem{UnitCost: 0.111, Quantity: 3}.Total(), 0.001)
}
