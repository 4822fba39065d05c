package quotexlsx

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"
)

// CellStyle is the formatting of one cell, detached from its value.
// Facets holds the number format, alignment, font, border, fill and
// protection as an owned copy.
type CellStyle struct {
	ID     int
	Facets *excelize.Style
}

// RowSnapshot records how a row looks: its height and per-column styles.
type RowSnapshot struct {
	Row       int
	Height    float64
	HasHeight bool
	Cells     map[int]CellStyle

	source *excelize.File
}

// CaptureRowStyle reads the height of row and the style of every column in
// [minCol, maxCol]. Cell values are never read.
func CaptureRowStyle(f *excelize.File, sheet string, row, minCol, maxCol int) (*RowSnapshot, error) {
	if minCol < 1 || maxCol < minCol {
		return nil, fmt.Errorf("invalid column band %d..%d", minCol, maxCol)
	}

	snap := &RowSnapshot{
		Row:    row,
		Cells:  make(map[int]CellStyle, maxCol-minCol+1),
		source: f,
	}

	height, err := f.GetRowHeight(sheet, row)
	if err != nil {
		return nil, fmt.Errorf("reading height of row %d: %w", row, err)
	}
	snap.Height = height
	snap.HasHeight = true

	for col := minCol; col <= maxCol; col++ {
		cell := cellName(col, row)
		id, err := f.GetCellStyle(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("reading style of %s: %w", cell, err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			return nil, fmt.Errorf("reading style %d of %s: %w", id, cell, err)
		}
		facets, err := copyStyle(style)
		if err != nil {
			return nil, fmt.Errorf("copying style of %s: %w", cell, err)
		}
		snap.Cells[col] = CellStyle{ID: id, Facets: facets}
	}
	return snap, nil
}

// Apply writes the snapshot's height and styles onto row. Values in the
// destination cells are left untouched.
//
// Within the workbook the snapshot was captured from, the captured style
// index is reused: excelize style records are immutable once registered, so
// the index is a value. Any other workbook gets a new style built from a
// fresh copy of the facets.
func (s *RowSnapshot) Apply(f *excelize.File, sheet string, row int) error {
	if s == nil {
		return nil
	}
	if s.HasHeight {
		if err := f.SetRowHeight(sheet, row, s.Height); err != nil {
			return fmt.Errorf("setting height of row %d: %w", row, err)
		}
	}

	for col, cs := range s.Cells {
		styleID := cs.ID
		if f != s.source {
			facets, err := copyStyle(cs.Facets)
			if err != nil {
				return fmt.Errorf("copying style for column %d: %w", col, err)
			}
			if styleID, err = f.NewStyle(facets); err != nil {
				return fmt.Errorf("creating style for column %d: %w", col, err)
			}
		}
		cell := cellName(col, row)
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return fmt.Errorf("setting style of %s: %w", cell, err)
		}
	}
	return nil
}

// Facets returns an owned copy of the style captured for col.
func (s *RowSnapshot) Facets(col int) (*excelize.Style, bool) {
	cs, ok := s.Cells[col]
	if !ok || cs.Facets == nil {
		return nil, false
	}
	out, err := copyStyle(cs.Facets)
	if err != nil {
		return nil, false
	}
	return out, true
}

func copyStyle(src *excelize.Style) (*excelize.Style, error) {
	if src == nil {
		return &excelize.Style{}, nil
	}
	var dst excelize.Style
	if err := deepcopy.Copy(&dst, *src); err != nil {
		return nil, err
	}
	return &dst, nil
}
