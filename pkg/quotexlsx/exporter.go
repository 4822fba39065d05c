package quotexlsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Export stages reported by ExportError.
const (
	StageTemplate  = "template"
	StageLayout    = "layout"
	StageRows      = "rows"
	StageCells     = "cells"
	StageSave      = "save"
	StageRepackage = "repackage"
)

// Result is a finished quotation.
type Result struct {
	Data        []byte
	QuoteNumber string
	Token       string
	Template    string
	Event       InsertionEvent
	Totals      Totals
}

// Exporter renders documents into template variants. It holds no per-export
// state and is safe for concurrent use.
type Exporter struct {
	templates    *TemplateSet
	layouts      *LayoutSet
	anchorMaxRow int
	now          func() time.Time
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithAnchorMaxRow sets the largest 0-based drawing row considered part of the
// quotation sheet.
func WithAnchorMaxRow(n int) Option {
	return func(e *Exporter) {
		e.anchorMaxRow = n
	}
}

// WithClock replaces the time source used for default issue dates.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

// NewExporter creates an exporter over a template set and its layouts.
func NewExporter(templates *TemplateSet, layouts *LayoutSet, opts ...Option) *Exporter {
	e := &Exporter{
		templates:    templates,
		layouts:      layouts,
		anchorMaxRow: DefaultAnchorMaxRow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Templates returns the template set the exporter reads from.
func (e *Exporter) Templates() *TemplateSet {
	return e.templates
}

// Export resolves the template and layout of doc.Variant and renders doc.
func (e *Exporter) Export(ctx context.Context, doc Document) (*Result, error) {
	path, data, err := e.templates.Load(doc.Variant)
	if err != nil {
		return nil, newExportError(StageTemplate, err)
	}
	layout, err := e.layouts.For(doc.Variant)
	if err != nil {
		return nil, newExportError(StageLayout, err)
	}

	res, err := e.Render(ctx, data, layout, doc)
	if err != nil {
		return nil, err
	}
	res.Template = path
	return res, nil
}

// Render fills a template held in memory. The template bytes are never
// modified.
func (e *Exporter) Render(ctx context.Context, template []byte, layout *Layout, doc Document) (*Result, error) {
	log := zerolog.Ctx(ctx)

	tpl, err := OpenArchive(template)
	if err != nil {
		return nil, newExportError(StageTemplate, err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(template))
	if err != nil {
		return nil, newExportError(StageTemplate, err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, layout)
	if err != nil {
		return nil, newExportError(StageLayout, err)
	}
	minCol, maxCol, err := layout.Band.Columns()
	if err != nil {
		return nil, newExportError(StageLayout, err)
	}

	ev := InsertionEvent{At: layout.ItemRow + 1}
	if n := len(doc.Items); n > 1 {
		ev.Delta = n - 1
	}

	if err := e.insertItemRows(ctx, f, sheet, layout.ItemRow, minCol, maxCol, ev); err != nil {
		return nil, newExportError(StageRows, err)
	}

	issued := doc.IssueDate
	if issued.IsZero() {
		issued = e.now()
	}
	number := strings.TrimSpace(doc.QuoteNumber)
	if number == "" {
		number = PlaceholderNumber
	}
	token := QuoteToken(number, issued)
	totals := doc.Totals()

	p := &populator{f: f, sheet: sheet, layout: layout, ev: ev}
	if err := p.run(ctx, doc, token, issued, totals); err != nil {
		return nil, newExportError(StageCells, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, newExportError(StageSave, err)
	}
	generated, err := OpenArchive(buf.Bytes())
	if err != nil {
		return nil, newExportError(StageSave, err)
	}

	data, err := Repackage(ctx, tpl, generated, NewAnchorShifter(ev, e.anchorMaxRow))
	if err != nil {
		return nil, newExportError(StageRepackage, err)
	}
	if len(data) == 0 {
		return nil, newExportError(StageRepackage, errors.New("empty package"))
	}

	log.Info().
		Str("quote_number", number).
		Int("items", len(doc.Items)).
		Stringer("event", ev).
		Int("bytes", len(data)).
		Msg("quote rendered")

	return &Result{
		Data:        data,
		QuoteNumber: number,
		Token:       token,
		Event:       ev,
		Totals:      totals,
	}, nil
}

// insertItemRows grows the items table by ev.Delta rows below the prototype
// row and repairs what the insertion disturbs: merges, print area, row style
// and the prototype's per-row merges.
func (e *Exporter) insertItemRows(ctx context.Context, f *excelize.File, sheet string, itemRow, minCol, maxCol int, ev InsertionEvent) error {
	if ev.IsNoop() {
		return nil
	}
	log := zerolog.Ctx(ctx)

	merges, err := CaptureMerges(ctx, f, sheet)
	if err != nil {
		return err
	}
	printArea, err := CapturePrintArea(f, sheet)
	if err != nil {
		var mre *MalformedRangeError
		if !errors.As(err, &mre) {
			return err
		}
		log.Warn().Err(err).Msg("print area ignored")
		printArea = nil
	}
	snap, err := CaptureRowStyle(f, sheet, itemRow, minCol, maxCol)
	if err != nil {
		return err
	}
	protoMerges := RowMerges(merges, itemRow)

	if err := f.InsertRows(sheet, ev.At, ev.Delta); err != nil {
		return fmt.Errorf("inserting %d rows at %d: %w", ev.Delta, ev.At, err)
	}

	restored, err := RestoreMerges(ctx, f, sheet, merges, ev)
	if err != nil {
		return err
	}
	for row := ev.At; row < ev.At+ev.Delta; row++ {
		if err := snap.Apply(f, sheet, row); err != nil {
			return err
		}
		if err := ApplyRowMerges(ctx, f, sheet, protoMerges, row); err != nil {
			return err
		}
	}
	if _, err := RestorePrintArea(f, printArea, ev); err != nil {
		return err
	}

	log.Debug().
		Stringer("event", ev).
		Int("merges", restored).
		Int("row_merges", len(protoMerges)).
		Msg("item rows inserted")
	return nil
}

func resolveSheet(f *excelize.File, layout *Layout) (string, error) {
	if layout.Sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", errors.New("workbook has no sheets")
		}
		return name, nil
	}
	idx, err := f.GetSheetIndex(layout.Sheet)
	if err != nil {
		return "", err
	}
	if idx < 0 {
		return "", fmt.Errorf("sheet %q not found", layout.Sheet)
	}
	return layout.Sheet, nil
}
