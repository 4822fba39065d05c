package quotexlsx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

func fourItems() []LineItem {
	return []LineItem{
		{Code: "SU01", Description: "Análisis granulométrico", Standard: "ASTM D422", Accredited: "SI", UnitCost: 80, Quantity: 2},
		{Code: "SU02", Description: "Límites de Atterberg", Standard: "ASTM D4318", Accredited: "SI", UnitCost: 60, Quantity: 1},
		{Code: "SU03", Description: "Contenido de humedad", Standard: "ASTM D2216", Accredited: "NO", UnitCost: 15.5, Quantity: 4},
		{Code: "SU04", Description: "Proctor modificado", Standard: "ASTM D1557", UnitCost: 150, Quantity: 1},
	}
}

func newFixtureExporter() *Exporter {
	return NewExporter(NewTemplateSet(), nil, WithClock(fixedClock))
}

func TestRender_InsertsItemRows(t *testing.T) {
	template := buildFixtureTemplate(t)
	pristine := append([]byte(nil), template...)

	res, err := newFixtureExporter().Render(context.Background(), template, loadFixtureLayout(t), Document{
		QuoteNumber: "012",
		Client:      "Constructora Andina SAC",
		RUC:         "20123456789",
		IncludeIGV:  true,
		IGVRate:     DefaultIGVRate,
		Items:       fourItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, pristine, template, "template bytes must not change")
	assert.Equal(t, InsertionEvent{At: 20, Delta: 3}, res.Event)
	assert.Equal(t, "012", res.QuoteNumber)
	assert.Equal(t, "012-26", res.Token)

	f := openResult(t, res.Data)

	t.Run("print area grows at its upper end", func(t *testing.T) {
		assert.Equal(t, "'Cotizacion'!$A$1:$N$53", printAreaOf(f))
	})

	t.Run("merges below the insertion point move by delta", func(t *testing.T) {
		want := []string{
			"B15:C16", "B2:N2", "C19:F19", "D7:H7",
			"B28:N28", "B30:D31",
			"C20:F20", "C21:F21", "C22:F22",
		}
		sort.Strings(want)
		assert.Equal(t, want, mergeRefs(t, f))
	})

	t.Run("item rows carry the prototype style", func(t *testing.T) {
		for _, col := range []string{"B", "C", "J", "N"} {
			proto, err := f.GetCellStyle(fixtureSheet, col+"19")
			require.NoError(t, err)
			for _, row := range []string{"20", "21", "22"} {
				got, err := f.GetCellStyle(fixtureSheet, col+row)
				require.NoError(t, err)
				assert.Equal(t, proto, got, col+row)
			}
		}
		for row := 20; row <= 22; row++ {
			h, err := f.GetRowHeight(fixtureSheet, row)
			require.NoError(t, err)
			assert.Equal(t, 24.0, h)
		}
	})

	t.Run("values", func(t *testing.T) {
		cells := map[string]string{
			"K3":  "COTIZACIÓN N° 012-26",
			"D7":  "Constructora Andina SAC",
			"D8":  "20123456789",
			"K11": "14/03/2026",
			"B19": "SU01",
			"C19": "Análisis granulométrico",
			"B22": "SU04",
			"G21": "ASTM D2216",
			"I20": "SI",
			"N19": "160",
			"N21": "62",
			"N24": "432",
			"M24": "SUBTOTAL",
			"B28": "CONDICIONES ESPECÍFICAS:",
		}
		for cell, want := range cells {
			got, err := f.GetCellValue(fixtureSheet, cell, excelizeRaw)
			require.NoError(t, err)
			assert.Equal(t, want, got, cell)
		}
		assert.InDelta(t, 432.0, res.Totals.Subtotal, 0.001)
		assert.InDelta(t, 77.76, res.Totals.IGV, 0.001)
		assert.InDelta(t, 509.76, res.Totals.Total, 0.001)
	})

	t.Run("drawing anchors follow their rows", func(t *testing.T) {
		name := partWithPrefix(t, template, "xl/drawings/drawing", ".xml")
		before := drawingRows(t, partOf(t, template, name))
		after := drawingRows(t, partOf(t, res.Data, name))
		require.Len(t, after, len(before))
		assert.Contains(t, before, 5)
		assert.Contains(t, before, 25)
		assert.Contains(t, after, 5)
		assert.Contains(t, after, 28)
		for i := range before {
			if before[i] >= 18 {
				assert.Equal(t, before[i]+3, after[i])
			} else {
				assert.Equal(t, before[i], after[i])
			}
		}
	})

	t.Run("comment anchor follows its row", func(t *testing.T) {
		name := partWithPrefix(t, template, "xl/drawings/vmlDrawing", ".vml")
		before := vmlAnchorRows(t, partOf(t, template, name))
		after := vmlAnchorRows(t, partOf(t, res.Data, name))
		require.Len(t, after, len(before))
		for i := range before {
			assert.Equal(t, before[i]+3, after[i])
		}
	})

	t.Run("media comes from the template", func(t *testing.T) {
		name := partWithPrefix(t, template, "xl/media/", ".png")
		assert.Equal(t, partOf(t, template, name), partOf(t, res.Data, name))
	})
}

func TestRender_EmptyItems(t *testing.T) {
	template := buildFixtureTemplate(t)

	res, err := newFixtureExporter().Render(context.Background(), template, loadFixtureLayout(t), Document{})
	require.NoError(t, err)
	assert.True(t, res.Event.IsNoop())
	assert.Equal(t, PlaceholderNumber, res.QuoteNumber)
	require.NotEmpty(t, res.Data)

	f := openResult(t, res.Data)
	assert.Equal(t, "'Cotizacion'!$A$1:$N$50", printAreaOf(f))

	want := append([]string(nil), fixtureMerges...)
	sort.Strings(want)
	assert.Equal(t, want, mergeRefs(t, f))

	number, err := f.GetCellValue(fixtureSheet, "K3")
	require.NoError(t, err)
	assert.Equal(t, "COTIZACIÓN N° 000-26", number)

	name := partWithPrefix(t, template, "xl/drawings/drawing", ".xml")
	assert.Equal(t, partOf(t, template, name), partOf(t, res.Data, name))
}

func TestRender_SingleItemInsertsNothing(t *testing.T) {
	template := buildFixtureTemplate(t)
	items := fourItems()[:1]

	res, err := newFixtureExporter().Render(context.Background(), template, loadFixtureLayout(t), Document{Items: items})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Event.Delta)

	f := openResult(t, res.Data)
	code, err := f.GetCellValue(fixtureSheet, "B19")
	require.NoError(t, err)
	assert.Equal(t, "SU01", code)
	label, err := f.GetCellValue(fixtureSheet, "M21")
	require.NoError(t, err)
	assert.Equal(t, "SUBTOTAL", label)
}

func TestRender_Conditions(t *testing.T) {
	template := buildFixtureTemplate(t)
	doc := Document{
		Items:      fourItems(),
		Conditions: []string{"Plazo de validez: 30 días.", "  ", "Incluye transporte.", "Pago al contado.", "Sin reembolso."},
	}

	res, err := newFixtureExporter().Render(context.Background(), template, loadFixtureLayout(t), doc)
	require.NoError(t, err)
	f := openResult(t, res.Data)

	// anchor B25 moved to B28; max_rows is 3, so the last two are joined
	want := map[string]string{
		"B29": "Plazo de validez: 30 días.",
		"B30": "Incluye transporte.",
		"B31": "Pago al contado.\nSin reembolso.",
	}
	for cell, text := range want {
		got, err := f.GetCellValue(fixtureSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, text, got, cell)
	}

	merges := mergeRefs(t, f)
	assert.Contains(t, merges, "B29:N29")
	assert.Contains(t, merges, "B30:N30")
	assert.Contains(t, merges, "B31:N31")
	assert.NotContains(t, merges, "B30:D31", "forced merge replaces the overlapping region")
}

func TestRender_MissingSheet(t *testing.T) {
	layout := loadFixtureLayout(t)
	layout.Sheet = "Nope"

	_, err := newFixtureExporter().Render(context.Background(), buildFixtureTemplate(t), layout, Document{})
	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, StageLayout, ee.Stage)
}

func TestRender_CorruptTemplate(t *testing.T) {
	_, err := newFixtureExporter().Render(context.Background(), []byte("garbage"), loadFixtureLayout(t), Document{})
	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, StageTemplate, ee.Stage)
}

func TestExport_ResolvesTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Variants["V2"]), buildFixtureTemplate(t), 0o644))

	layoutDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(layoutDir, "V2.yaml"), []byte(fixtureLayout), 0o644))
	layouts, err := NewLayoutSet(layoutDir)
	require.NoError(t, err)

	e := NewExporter(NewTemplateSet(t.TempDir(), dir), layouts, WithClock(fixedClock))
	res, err := e.Export(context.Background(), Document{Variant: "v2", QuoteNumber: "007", Items: fourItems()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, Variants["V2"]), res.Template)
	assert.Equal(t, "007-26", res.Token)

	f := openResult(t, res.Data)
	assert.Equal(t, "'Cotizacion'!$A$1:$N$53", printAreaOf(f))
}

func TestExport_TemplateNotFound(t *testing.T) {
	layouts, err := NewLayoutSet("")
	require.NoError(t, err)

	_, err = NewExporter(NewTemplateSet(t.TempDir()), layouts).Export(context.Background(), Document{Variant: "V5"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))

	var ee *ExportError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, StageTemplate, ee.Stage)
}

func TestRender_Concurrent(t *testing.T) {
	template := buildFixtureTemplate(t)
	layout := loadFixtureLayout(t)
	e := newFixtureExporter()

	const workers = 6
	results := make(chan []byte, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			res, err := e.Render(context.Background(), template, layout, Document{Items: fourItems()})
			if err != nil {
				errs <- err
				return
			}
			results <- res.Data
		}()
	}

	var outputs [][]byte
	for i := 0; i < workers; i++ {
		select {
		case err := <-errs:
			t.Fatalf("render failed: %v", err)
		case data := <-results:
			outputs = append(outputs, data)
		}
	}
	for _, data := range outputs {
		f := openResult(t, data)
		assert.Equal(t, "'Cotizacion'!$A$1:$N$53", printAreaOf(f))
		assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	}
}
