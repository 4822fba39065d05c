package quotexlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func styledSheet(t *testing.T) (*excelize.File, int) {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	id, err := f.NewStyle(&excelize.Style{
		Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		Font:      &excelize.Font{Italic: true, Size: 10},
		NumFmt:    4,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "B5", "D5", id))
	require.NoError(t, f.SetRowHeight("Sheet1", 5, 30))
	require.NoError(t, f.SetCellValue("Sheet1", "C5", "prototype"))
	return f, id
}

func TestCaptureRowStyle(t *testing.T) {
	f, id := styledSheet(t)

	snap, err := CaptureRowStyle(f, "Sheet1", 5, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 30.0, snap.Height)
	require.Len(t, snap.Cells, 3)
	for col := 2; col <= 4; col++ {
		assert.Equal(t, id, snap.Cells[col].ID)
		require.NotNil(t, snap.Cells[col].Facets)
		assert.Equal(t, 4, snap.Cells[col].Facets.NumFmt)
	}

	_, err = CaptureRowStyle(f, "Sheet1", 5, 4, 2)
	assert.Error(t, err)
}

func TestRowSnapshot_ApplyLeavesValues(t *testing.T) {
	f, id := styledSheet(t)
	require.NoError(t, f.SetCellValue("Sheet1", "C9", "keep me"))

	snap, err := CaptureRowStyle(f, "Sheet1", 5, 2, 4)
	require.NoError(t, err)
	require.NoError(t, snap.Apply(f, "Sheet1", 9))

	for _, cell := range []string{"B9", "C9", "D9"} {
		got, err := f.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, id, got, cell)
	}
	h, err := f.GetRowHeight("Sheet1", 9)
	require.NoError(t, err)
	assert.Equal(t, 30.0, h)

	v, err := f.GetCellValue("Sheet1", "C9")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)

	empty, err := f.GetCellValue("Sheet1", "B9")
	require.NoError(t, err)
	assert.Empty(t, empty, "prototype values must not be copied")
}

func TestRowSnapshot_FacetsAreCopies(t *testing.T) {
	f, _ := styledSheet(t)
	snap, err := CaptureRowStyle(f, "Sheet1", 5, 2, 3)
	require.NoError(t, err)

	require.NotEmpty(t, snap.Cells[2].Facets.Fill.Color)
	origColor := snap.Cells[2].Facets.Fill.Color[0]

	facets, ok := snap.Facets(2)
	require.True(t, ok)
	facets.Font.Bold = true
	facets.Fill.Color[0] = "000000"

	again, ok := snap.Facets(2)
	require.True(t, ok)
	assert.False(t, again.Font.Bold)
	assert.Equal(t, origColor, again.Fill.Color[0])

	// columns captured separately never share facet storage
	assert.NotSame(t, snap.Cells[2].Facets, snap.Cells[3].Facets)
	assert.NotSame(t, snap.Cells[2].Facets.Font, snap.Cells[3].Facets.Font)

	_, ok = snap.Facets(20)
	assert.False(t, ok)
}

func TestRowSnapshot_ApplyToOtherWorkbook(t *testing.T) {
	src, _ := styledSheet(t)
	snap, err := CaptureRowStyle(src, "Sheet1", 5, 2, 2)
	require.NoError(t, err)

	dst := excelize.NewFile()
	defer dst.Close()
	require.NoError(t, snap.Apply(dst, "Sheet1", 1))

	id, err := dst.GetCellStyle("Sheet1", "B1")
	require.NoError(t, err)
	style, err := dst.GetStyle(id)
	require.NoError(t, err)
	assert.Equal(t, 4, style.NumFmt)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Italic)
}

func TestRowSnapshot_NilApply(t *testing.T) {
	var snap *RowSnapshot
	assert.NoError(t, snap.Apply(nil, "Sheet1", 1))
}
