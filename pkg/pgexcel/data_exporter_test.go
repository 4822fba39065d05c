package pgexcel

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type catalogRow struct {
	ID      string    `json:"id" excel:"header:Código,width:12"`
	Text    string    `json:"texto" excel:"header:Texto,width:60,wrap:true"`
	Price   float64   `excel:"header:Precio,format:0.00"`
	Created time.Time `excel:"header:Creado,format:2006-01-02"`
	Note    *string   `json:"nota"`
	Secret  string    `excel:"-"`
	hidden  string
}

func TestExtractColumns(t *testing.T) {
	cols := ExtractColumns(reflect.TypeOf(catalogRow{}))

	var headers []string
	for _, c := range cols {
		headers = append(headers, c.Header)
	}
	want := []string{"Código", "Texto", "Precio", "Creado", "nota"}
	if !reflect.DeepEqual(headers, want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	if cols[0].Width != 12 {
		t.Errorf("width = %v, want 12", cols[0].Width)
	}
	if !cols[1].Wrap {
		t.Error("Texto should wrap")
	}
	if cols[2].Format != "0.00" {
		t.Errorf("format = %q", cols[2].Format)
	}
}

func TestDataExporter(t *testing.T) {
	note := "revisar"
	rows := []catalogRow{
		{ID: "C1", Text: "Validez de la oferta: 30 días.", Price: 12.5, Created: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Note: &note, Secret: "x"},
		{ID: "C2", Text: "Pago al contado."},
	}
	type seqRow struct {
		Year int `excel:"header:Año"`
		Last int `excel:"header:Último"`
	}

	var buf bytes.Buffer
	err := NewDataExporter().
		WithData("Condiciones", rows).
		WithData("Correlativos", []*seqRow{{Year: 2026, Last: 12}, nil}).
		Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"Condiciones", "Correlativos"}) {
		t.Fatalf("sheets = %v", got)
	}

	checks := map[string]string{
		"A1": "Código",
		"B2": "Validez de la oferta: 30 días.",
		"D2": "2026-01-05",
		"E2": "revisar",
		"A3": "C2",
		"D3": "",
		"E3": "",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("Condiciones", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	last, _ := f.GetCellValue("Correlativos", "B2")
	if last != "12" {
		t.Errorf("Correlativos!B2 = %q, want 12", last)
	}
	width, _ := f.GetColWidth("Condiciones", "B")
	if width != 60 {
		t.Errorf("column B width = %v, want 60", width)
	}
}

func TestDataExporterErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDataExporter().Export(context.Background(), &buf); err == nil {
		t.Error("expected error for empty workbook")
	}
	if err := NewDataExporter().WithData("Bad", 42).Export(context.Background(), &buf); err == nil {
		t.Error("expected error for non-slice data")
	}
	if err := NewDataExporter().WithData("Bad", []int{1}).Export(context.Background(), &buf); err == nil {
		t.Error("expected error for non-struct rows")
	}
}

func TestColumnIndexToName(t *testing.T) {
	tests := map[int]string{0: "A", 25: "Z", 26: "AA", 701: "ZZ", 702: "AAA"}
	for idx, want := range tests {
		if got := columnIndexToName(idx); got != want {
			t.Errorf("columnIndexToName(%d) = %q, want %q", idx, got, want)
		}
	}
}
