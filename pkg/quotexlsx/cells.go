package quotexlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SetCell writes value at addr. A nil value or an empty string leaves the
// template text in place. When addr lies inside a merged region the value goes
// to the region's top-left cell.
func SetCell(f *excelize.File, sheet string, merges []RangeRef, addr string, value interface{}) error {
	if isBlank(value) {
		return nil
	}
	target, err := ValueCell(merges, addr)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, target, value); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// ValueCell returns the cell that actually holds the value of addr: the
// top-left cell of its merged region, or addr itself.
func ValueCell(merges []RangeRef, addr string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(addr, "$", ""))
	if err != nil {
		return "", &MalformedRangeError{Ref: addr, Err: err}
	}
	if m, ok := MergedRegion(merges, col, row); ok {
		return m.TopLeft(), nil
	}
	return cellName(col, row), nil
}

// FindRowByText returns the first row, scanning top to bottom and left to
// right within maxRows x maxCols, whose text contains needle ignoring case.
// It returns 0 when nothing matches.
func FindRowByText(f *excelize.File, sheet, needle string, maxRows, maxCols int) (int, error) {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return 0, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("reading rows of %q: %w", sheet, err)
	}
	for r, cols := range rows {
		if r >= maxRows {
			break
		}
		for c, v := range cols {
			if c >= maxCols {
				break
			}
			if v != "" && strings.Contains(strings.ToLower(strings.TrimSpace(v)), needle) {
				return r + 1, nil
			}
		}
	}
	return 0, nil
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	}
	return false
}
