package quotexlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RangeRef is a 1-based inclusive cell rectangle.
type RangeRef struct {
	MinCol int
	MinRow int
	MaxCol int
	MaxRow int
}

// ParseRange parses references like "B5:N5", "$A$1:$N$50" or a single cell
// "C7" into a RangeRef. Bounds are normalized so Min <= Max.
func ParseRange(ref string) (RangeRef, error) {
	raw := ref
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	if ref == "" {
		return RangeRef{}, &MalformedRangeError{Ref: raw}
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return RangeRef{}, &MalformedRangeError{Ref: raw}
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return RangeRef{}, &MalformedRangeError{Ref: raw, Err: err}
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return RangeRef{}, &MalformedRangeError{Ref: raw, Err: err}
	}

	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return RangeRef{MinCol: c1, MinRow: r1, MaxCol: c2, MaxRow: r2}, nil
}

// String returns the canonical "<Col><Row>:<Col><Row>" form.
func (r RangeRef) String() string {
	return r.TopLeft() + ":" + r.BottomRight()
}

// TopLeft returns the first cell name of the range.
func (r RangeRef) TopLeft() string {
	cell, _ := excelize.CoordinatesToCellName(r.MinCol, r.MinRow)
	return cell
}

// BottomRight returns the last cell name of the range.
func (r RangeRef) BottomRight() string {
	cell, _ := excelize.CoordinatesToCellName(r.MaxCol, r.MaxRow)
	return cell
}

// Valid reports whether the bounds describe a non-empty rectangle inside the
// sheet limits.
func (r RangeRef) Valid() bool {
	return r.MinCol >= 1 && r.MinRow >= 1 &&
		r.MaxCol >= r.MinCol && r.MaxRow >= r.MinRow &&
		r.MaxCol <= excelize.MaxColumns && r.MaxRow <= excelize.TotalRows
}

// IsSingleCell reports whether the range covers exactly one cell.
func (r RangeRef) IsSingleCell() bool {
	return r.MinCol == r.MaxCol && r.MinRow == r.MaxRow
}

// ContainsRow reports whether row lies within the row bounds.
func (r RangeRef) ContainsRow(row int) bool {
	return r.MinRow <= row && row <= r.MaxRow
}

// Contains reports whether the cell (col, row) lies within the range.
func (r RangeRef) Contains(col, row int) bool {
	return r.MinCol <= col && col <= r.MaxCol && r.ContainsRow(row)
}

// ColumnsOverlap reports whether the column band [minCol, maxCol] intersects
// the range's columns. Two intervals overlap unless one ends before the other
// begins.
func (r RangeRef) ColumnsOverlap(minCol, maxCol int) bool {
	return !(r.MaxCol < minCol || r.MinCol > maxCol)
}

// Overlaps reports whether two ranges share at least one cell.
func (r RangeRef) Overlaps(o RangeRef) bool {
	return r.ColumnsOverlap(o.MinCol, o.MaxCol) && !(r.MaxRow < o.MinRow || r.MinRow > o.MaxRow)
}

// ShiftRows moves ref down by delta when it starts at or after insertAt and
// returns it unchanged otherwise. Column bounds never change.
func ShiftRows(ref RangeRef, insertAt, delta int) RangeRef {
	if ref.MinRow >= insertAt {
		ref.MinRow += delta
		ref.MaxRow += delta
	}
	return ref
}

// InsertionEvent describes Delta rows inserted before row At (1-based).
type InsertionEvent struct {
	At    int
	Delta int
}

// IsNoop reports whether the event inserts nothing.
func (ev InsertionEvent) IsNoop() bool {
	return ev.Delta <= 0
}

// ShiftRow maps a single 1-based row through the event.
func (ev InsertionEvent) ShiftRow(row int) int {
	if ev.Delta > 0 && row >= ev.At {
		return row + ev.Delta
	}
	return row
}

// ShiftRange applies ShiftRows with the event parameters.
func (ev InsertionEvent) ShiftRange(ref RangeRef) RangeRef {
	if ev.Delta <= 0 {
		return ref
	}
	return ShiftRows(ref, ev.At, ev.Delta)
}

// ShiftSpan shifts each bound independently, so a range straddling the
// insertion point keeps its lower end and grows at its upper end.
func (ev InsertionEvent) ShiftSpan(ref RangeRef) RangeRef {
	ref.MinRow = ev.ShiftRow(ref.MinRow)
	ref.MaxRow = ev.ShiftRow(ref.MaxRow)
	return ref
}

// StartRow0 returns the 0-based anchor threshold used for drawing parts: one
// row above the 0-based insertion point, clamped at zero.
func (ev InsertionEvent) StartRow0() int {
	if ev.At-2 < 0 {
		return 0
	}
	return ev.At - 2
}

func (ev InsertionEvent) String() string {
	return fmt.Sprintf("insert %d row(s) at %d", ev.Delta, ev.At)
}

// columnNumber converts a column letter (e.g. "N") to its 1-based index.
func columnNumber(name string) (int, error) {
	return excelize.ColumnNameToNumber(strings.TrimSpace(name))
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
