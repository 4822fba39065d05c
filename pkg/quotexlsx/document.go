package quotexlsx

import (
	"math"
	"time"
)

// DefaultIGVRate is the sales tax rate applied when a document includes IGV.
const DefaultIGVRate = 0.18

// LineItem is one row of the items table.
type LineItem struct {
	Code        string
	Description string
	Standard    string
	Accredited  string
	UnitCost    float64
	Quantity    float64
}

// Total returns UnitCost x Quantity.
func (li LineItem) Total() float64 {
	return round2(li.UnitCost * li.Quantity)
}

// Document is everything written into one quotation. It is read-only during
// an export.
type Document struct {
	Variant     string
	QuoteNumber string    // Empty writes PlaceholderNumber
	IssueDate   time.Time // Zero means today
	RequestDate *time.Time

	Client           string
	RUC              string
	Contact          string
	Phone            string
	Email            string
	Project          string
	Location         string
	Commercial       string
	CommercialPhone  string
	CommercialEmail  string
	DeliveryDays     int
	PaymentCondition string

	Conditions []string
	IncludeIGV bool
	IGVRate    float64
	Items      []LineItem
}

// Totals are the computed amounts of a document.
type Totals struct {
	Subtotal float64
	IGV      float64
	Total    float64
}

// Totals sums the line items and applies IGV when included.
func (d Document) Totals() Totals {
	var t Totals
	for _, it := range d.Items {
		t.Subtotal += it.UnitCost * it.Quantity
	}
	t.Subtotal = round2(t.Subtotal)
	if d.IncludeIGV {
		t.IGV = round2(t.Subtotal * d.IGVRate)
	}
	t.Total = round2(t.Subtotal + t.IGV)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
