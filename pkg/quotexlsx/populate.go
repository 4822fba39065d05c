package quotexlsx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// populator writes document values into an already-grown sheet. Template
// coordinates from the layout are moved through ev before use.
type populator struct {
	f      *excelize.File
	sheet  string
	layout *Layout
	ev     InsertionEvent
	merges []RangeRef
}

type cellValue struct {
	ref   string // cell, or column letter for item fields
	value interface{}
}

func (p *populator) run(ctx context.Context, doc Document, token string, issued time.Time, totals Totals) error {
	merges, err := CaptureMerges(ctx, p.f, p.sheet)
	if err != nil {
		return err
	}
	p.merges = merges

	if err := p.quoteNumber(token); err != nil {
		return err
	}
	if err := p.header(doc, issued); err != nil {
		return err
	}
	if err := p.items(doc.Items); err != nil {
		return err
	}
	if err := p.totals(totals, doc.IncludeIGV); err != nil {
		return err
	}
	return p.conditions(ctx, doc.Conditions)
}

// cell maps a template cell reference to its position after insertion.
func (p *populator) cell(ref string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return "", &MalformedRangeError{Ref: ref, Err: err}
	}
	return cellName(col, p.ev.ShiftRow(row)), nil
}

func (p *populator) set(ref string, value interface{}) error {
	if ref == "" {
		return nil
	}
	addr, err := p.cell(ref)
	if err != nil {
		return err
	}
	return SetCell(p.f, p.sheet, p.merges, addr, value)
}

func (p *populator) quoteNumber(token string) error {
	addr, err := p.cell(p.layout.Header.QuoteNumber)
	if err != nil {
		return err
	}
	target, err := ValueCell(p.merges, addr)
	if err != nil {
		return err
	}
	current, err := p.f.GetCellValue(p.sheet, target)
	if err != nil {
		return fmt.Errorf("reading %s: %w", target, err)
	}
	return p.f.SetCellStr(p.sheet, target, ApplyQuoteNumber(current, token))
}

func (p *populator) header(doc Document, issued time.Time) error {
	h := p.layout.Header
	values := []cellValue{
		{h.Client, doc.Client},
		{h.RUC, doc.RUC},
		{h.Contact, doc.Contact},
		{h.Phone, doc.Phone},
		{h.Email, doc.Email},
		{h.Project, doc.Project},
		{h.Location, doc.Location},
		{h.Commercial, doc.Commercial},
		{h.CommercialPhone, doc.CommercialPhone},
		{h.CommercialEmail, doc.CommercialEmail},
		{h.IssueDate, issued.Format(p.layout.DateFormat)},
		{h.PaymentCondition, doc.PaymentCondition},
	}
	if doc.RequestDate != nil && !doc.RequestDate.IsZero() {
		values = append(values, cellValue{h.RequestDate, doc.RequestDate.Format(p.layout.DateFormat)})
	}
	if doc.DeliveryDays > 0 {
		values = append(values, cellValue{h.DeliveryDays, doc.DeliveryDays})
	}

	for _, v := range values {
		if err := p.set(v.ref, v.value); err != nil {
			return err
		}
	}
	return nil
}

// items writes line item i on row ItemRow+i. Inserted rows sit directly below
// the prototype row, so no shifting applies here.
func (p *populator) items(items []LineItem) error {
	c := p.layout.Items
	for i, it := range items {
		row := p.layout.ItemRow + i
		fields := []cellValue{
			{c.Code, it.Code},
			{c.Description, it.Description},
			{c.Standard, it.Standard},
			{c.Accredited, it.Accredited},
			{c.UnitCost, it.UnitCost},
			{c.Quantity, it.Quantity},
			{c.Total, it.Total()},
		}
		for _, fv := range fields {
			if fv.ref == "" {
				continue
			}
			col, err := columnNumber(fv.ref)
			if err != nil {
				return err
			}
			if err := SetCell(p.f, p.sheet, p.merges, cellName(col, row), fv.value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *populator) totals(t Totals, includeIGV bool) error {
	tc := p.layout.Totals
	if err := p.set(tc.Subtotal, t.Subtotal); err != nil {
		return err
	}
	if includeIGV {
		if err := p.set(tc.IGV, t.IGV); err != nil {
			return err
		}
	} else if err := p.set(tc.IGV, 0.0); err != nil {
		return err
	}
	return p.set(tc.Total, t.Total)
}

// conditions writes one text per row below the conditions anchor. Texts that
// do not fit in MaxRows are joined into the last row. Every written row is
// merged across the conditions band.
func (p *populator) conditions(ctx context.Context, texts []string) error {
	cl := p.layout.Conditions
	texts = compact(texts)
	if cl.AnchorText == "" || len(texts) == 0 {
		return nil
	}

	anchor, err := FindRowByText(p.f, p.sheet, cl.AnchorText, cl.SearchRows, cl.SearchCols)
	if err != nil {
		return err
	}
	if anchor == 0 {
		zerolog.Ctx(ctx).Warn().Str("anchor", cl.AnchorText).Msg("conditions anchor not found, conditions skipped")
		return nil
	}

	if len(texts) > cl.MaxRows {
		last := strings.Join(texts[cl.MaxRows-1:], "\n")
		texts = append(texts[:cl.MaxRows-1:cl.MaxRows-1], last)
	}

	col, err := columnNumber(cl.Column)
	if err != nil {
		return err
	}
	minCol, maxCol, err := cl.Band.Columns()
	if err != nil {
		return err
	}
	if col >= minCol && col <= maxCol {
		col = minCol
	}
	for i, text := range texts {
		row := anchor + cl.Offset + i
		if err := ForceMerge(ctx, p.f, p.sheet, row, minCol, maxCol); err != nil {
			return err
		}
		if err := p.f.SetCellStr(p.sheet, cellName(col, row), text); err != nil {
			return fmt.Errorf("writing condition %d: %w", i+1, err)
		}
	}
	return nil
}

func compact(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
