package quotexlsx

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const fixtureSheet = "Cotizacion"

var excelizeRaw = excelize.Options{RawCellValue: true}

// fixtureLayout describes the workbook built by buildFixtureTemplate.
const fixtureLayout = `
name: "fixture"
item_row: 19
band: {from: B, to: N}
items:
  code: B
  description: C
  standard: G
  accredited: I
  unit_cost: J
  quantity: L
  total: N
header:
  quote_number: K3
  client: D7
  ruc: D8
  issue_date: K11
  delivery_days: K12
totals:
  subtotal: N21
  igv: N22
  total: N23
conditions:
  anchor_text: "condiciones específicas"
  column: B
  max_rows: 3
`

// fixtureMerges lists the merges of the fixture template.
var fixtureMerges = []string{"B2:N2", "D7:H7", "B15:C16", "C19:F19", "B25:N25", "B27:D28"}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// buildFixtureTemplate creates a one-sheet quotation template: a prototype
// item row 19 with styles and a row merge, merges above and below it, a
// print area A1:N50, pictures anchored at rows 6 and 26 and a comment at B30.
func buildFixtureTemplate(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", fixtureSheet))

	values := map[string]string{
		"B2":  "GEOFAL - COTIZACIÓN",
		"K3":  "COTIZACIÓN N° XXX-XX",
		"B7":  "CLIENTE:",
		"B8":  "RUC:",
		"C19": "descripción",
		"M21": "SUBTOTAL",
		"M22": "IGV",
		"M23": "TOTAL",
		"B25": "CONDICIONES ESPECÍFICAS:",
		"B27": "Notas",
	}
	for cell, v := range values {
		require.NoError(t, f.SetCellValue(fixtureSheet, cell, v))
	}

	for _, m := range fixtureMerges {
		parts := strings.Split(m, ":")
		require.NoError(t, f.MergeCell(fixtureSheet, parts[0], parts[1]))
	}

	itemStyle, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Font:      &excelize.Font{Bold: true, Size: 9, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	require.NoError(t, err)
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(fixtureSheet, "B19", "M19", itemStyle))
	require.NoError(t, f.SetCellStyle(fixtureSheet, "N19", "N19", moneyStyle))
	require.NoError(t, f.SetRowHeight(fixtureSheet, 19, 24))

	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     PrintAreaName,
		RefersTo: "'" + fixtureSheet + "'!$A$1:$N$50",
		Scope:    fixtureSheet,
	}))

	logo := testPNG(t)
	for _, cell := range []string{"B6", "B26"} {
		require.NoError(t, f.AddPictureFromBytes(fixtureSheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      logo,
			Format:    &excelize.GraphicOptions{AltText: "logo " + cell},
		}))
	}
	require.NoError(t, f.AddComment(fixtureSheet, excelize.Comment{Cell: "B30", Author: "QA", Text: "revisar"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func loadFixtureLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := LoadLayoutFromString(fixtureLayout)
	require.NoError(t, err)
	return l
}

func openResult(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func mergeRefs(t *testing.T, f *excelize.File) []string {
	t.Helper()
	cells, err := f.GetMergeCells(fixtureSheet, true)
	require.NoError(t, err)
	out := make([]string, 0, len(cells))
	for _, mc := range cells {
		out = append(out, mc.GetStartAxis()+":"+mc.GetEndAxis())
	}
	sort.Strings(out)
	return out
}

func printAreaOf(f *excelize.File) string {
	for _, dn := range f.GetDefinedName() {
		if dn.Name == PrintAreaName && dn.Scope == fixtureSheet {
			return dn.RefersTo
		}
	}
	return ""
}

func partOf(t *testing.T, pkg []byte, name string) []byte {
	t.Helper()
	a, err := OpenArchive(pkg)
	require.NoError(t, err)
	data, err := a.Read(name)
	require.NoError(t, err)
	return data
}

func partWithPrefix(t *testing.T, pkg []byte, prefix, ext string) string {
	t.Helper()
	a, err := OpenArchive(pkg)
	require.NoError(t, err)
	for _, n := range a.Names() {
		if strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ext) {
			return n
		}
	}
	t.Fatalf("no part %s*%s", prefix, ext)
	return ""
}

var reAnchorRows = regexp.MustCompile(`<x:Anchor>([^<]+)</x:Anchor>`)

// vmlAnchorRows returns the row fields (3rd and 7th) of every VML anchor.
func vmlAnchorRows(t *testing.T, data []byte) []int {
	t.Helper()
	var out []int
	for _, m := range reAnchorRows.FindAllStringSubmatch(string(data), -1) {
		fields := strings.Split(m[1], ",")
		require.Len(t, fields, 8)
		for _, i := range []int{2, 6} {
			v, err := strconv.Atoi(strings.TrimSpace(fields[i]))
			require.NoError(t, err)
			out = append(out, v)
		}
	}
	return out
}
