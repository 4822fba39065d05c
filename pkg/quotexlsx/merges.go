package quotexlsx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// PrintAreaName is the reserved defined name holding a sheet's print area.
const PrintAreaName = "_xlnm.Print_Area"

// CaptureMerges returns the merge set active on sheet. Entries that cannot be
// parsed are logged and left out.
func CaptureMerges(ctx context.Context, f *excelize.File, sheet string) ([]RangeRef, error) {
	cells, err := f.GetMergeCells(sheet, true)
	if err != nil {
		return nil, fmt.Errorf("reading merged cells of %q: %w", sheet, err)
	}

	merges := make([]RangeRef, 0, len(cells))
	for _, mc := range cells {
		ref, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("sheet", sheet).Msg("skipping unreadable merge")
			continue
		}
		merges = append(merges, ref)
	}
	return merges, nil
}

// RestoreMerges drops every merge currently on sheet and re-merges the
// captured set shifted through ev. Ranges that became invalid, single cells
// and ranges overlapping one already restored are skipped. It returns the
// number of merges written.
func RestoreMerges(ctx context.Context, f *excelize.File, sheet string, merges []RangeRef, ev InsertionEvent) (int, error) {
	if err := unmergeAll(f, sheet); err != nil {
		return 0, err
	}

	log := zerolog.Ctx(ctx)
	restored := make([]RangeRef, 0, len(merges))
	for _, m := range merges {
		target := ev.ShiftRange(m)
		if !target.Valid() || target.IsSingleCell() {
			log.Warn().Str("sheet", sheet).Str("range", m.String()).Msg("skipping invalid merge")
			continue
		}
		if overlapsAny(target, restored) {
			log.Warn().Str("sheet", sheet).Str("range", target.String()).Msg("skipping overlapping merge")
			continue
		}
		if err := f.MergeCell(sheet, target.TopLeft(), target.BottomRight()); err != nil {
			log.Warn().Err(err).Str("sheet", sheet).Str("range", target.String()).Msg("skipping merge")
			continue
		}
		restored = append(restored, target)
	}
	return len(restored), nil
}

// RowMerges returns the merges lying entirely on row.
func RowMerges(merges []RangeRef, row int) []RangeRef {
	var out []RangeRef
	for _, m := range merges {
		if m.MinRow == row && m.MaxRow == row {
			out = append(out, m)
		}
	}
	return out
}

// ApplyRowMerges copies the single-row merges of the prototype row onto dstRow,
// keeping their column bands. Conflicting merges on dstRow are skipped.
func ApplyRowMerges(ctx context.Context, f *excelize.File, sheet string, proto []RangeRef, dstRow int) error {
	if len(proto) == 0 {
		return nil
	}

	existing, err := CaptureMerges(ctx, f, sheet)
	if err != nil {
		return err
	}

	log := zerolog.Ctx(ctx)
	for _, m := range proto {
		target := RangeRef{MinCol: m.MinCol, MinRow: dstRow, MaxCol: m.MaxCol, MaxRow: dstRow}
		if !target.Valid() || target.IsSingleCell() || overlapsAny(target, existing) {
			log.Debug().Str("sheet", sheet).Str("range", target.String()).Msg("row merge not applied")
			continue
		}
		if err := f.MergeCell(sheet, target.TopLeft(), target.BottomRight()); err != nil {
			log.Warn().Err(err).Str("range", target.String()).Msg("skipping row merge")
			continue
		}
		existing = append(existing, target)
	}
	return nil
}

// ForceMerge makes [minCol, maxCol] on row one merged region. Every merge
// touching both the row and the column band is removed first. UnmergeCell also
// drops merges overlapping the removed ones, so any other merge that vanished
// is merged again unless it overlaps the target. A rejected final merge is
// logged and skipped.
func ForceMerge(ctx context.Context, f *excelize.File, sheet string, row, minCol, maxCol int) error {
	target := RangeRef{MinCol: minCol, MinRow: row, MaxCol: maxCol, MaxRow: row}
	if !target.Valid() {
		return &MalformedRangeError{Ref: fmt.Sprintf("row %d cols %d..%d", row, minCol, maxCol)}
	}

	log := zerolog.Ctx(ctx)
	merges, err := CaptureMerges(ctx, f, sheet)
	if err != nil {
		return err
	}
	var survivors []RangeRef
	for _, m := range merges {
		if !m.ContainsRow(row) || !m.ColumnsOverlap(minCol, maxCol) {
			survivors = append(survivors, m)
			continue
		}
		if err := f.UnmergeCell(sheet, m.TopLeft(), m.BottomRight()); err != nil {
			log.Warn().Err(err).Str("range", m.String()).Msg("unmerge failed")
		}
	}
	if err := restoreSurvivors(ctx, f, sheet, survivors, target); err != nil {
		return err
	}

	if target.IsSingleCell() {
		return nil
	}
	if err := f.MergeCell(sheet, target.TopLeft(), target.BottomRight()); err != nil {
		log.Warn().Err(err).Str("range", target.String()).Msg("forced merge rejected")
	}
	return nil
}

// restoreSurvivors merges again each of survivors missing from sheet.
func restoreSurvivors(ctx context.Context, f *excelize.File, sheet string, survivors []RangeRef, target RangeRef) error {
	if len(survivors) == 0 {
		return nil
	}
	current, err := CaptureMerges(ctx, f, sheet)
	if err != nil {
		return err
	}

	log := zerolog.Ctx(ctx)
	for _, m := range survivors {
		if containsRange(current, m) {
			continue
		}
		if m.IsSingleCell() || m.Overlaps(target) || overlapsAny(m, current) {
			log.Debug().Str("sheet", sheet).Str("range", m.String()).Msg("merge not restored")
			continue
		}
		if err := f.MergeCell(sheet, m.TopLeft(), m.BottomRight()); err != nil {
			log.Warn().Err(err).Str("range", m.String()).Msg("skipping merge")
			continue
		}
		current = append(current, m)
	}
	return nil
}

// MergedRegion returns the merge containing the cell, if any.
func MergedRegion(merges []RangeRef, col, row int) (RangeRef, bool) {
	for _, m := range merges {
		if m.Contains(col, row) {
			return m, true
		}
	}
	return RangeRef{}, false
}

// PrintArea is a sheet's print area as stored in the workbook.
type PrintArea struct {
	Sheet string
	Range RangeRef
}

// CapturePrintArea reads the print area scoped to sheet. It returns nil when
// the sheet has none. Only the first area of a multi-area definition is kept.
func CapturePrintArea(f *excelize.File, sheet string) (*PrintArea, error) {
	for _, dn := range f.GetDefinedName() {
		if dn.Name != PrintAreaName || dn.Scope != sheet {
			continue
		}
		ref, err := parsePrintAreaRef(dn.RefersTo)
		if err != nil {
			return nil, err
		}
		return &PrintArea{Sheet: sheet, Range: ref}, nil
	}
	return nil, nil
}

// RestorePrintArea writes pa back after shifting each bound through ev. The
// lower bound of an area straddling the insertion point stays put and the
// upper bound grows. A nil area is a no-op.
func RestorePrintArea(f *excelize.File, pa *PrintArea, ev InsertionEvent) (*PrintArea, error) {
	if pa == nil {
		return nil, nil
	}
	shifted := &PrintArea{Sheet: pa.Sheet, Range: ev.ShiftSpan(pa.Range)}

	err := f.DeleteDefinedName(&excelize.DefinedName{Name: PrintAreaName, Scope: pa.Sheet})
	if err != nil && !errors.Is(err, excelize.ErrDefinedNameScope) {
		return nil, fmt.Errorf("removing print area of %q: %w", pa.Sheet, err)
	}
	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     PrintAreaName,
		RefersTo: shifted.RefersTo(),
		Scope:    pa.Sheet,
	}); err != nil {
		return nil, fmt.Errorf("writing print area of %q: %w", pa.Sheet, err)
	}
	return shifted, nil
}

// RefersTo renders the area in defined-name form, e.g. 'Quote'!$A$1:$N$53.
func (pa *PrintArea) RefersTo() string {
	tl, _ := excelize.CoordinatesToCellName(pa.Range.MinCol, pa.Range.MinRow, true)
	br, _ := excelize.CoordinatesToCellName(pa.Range.MaxCol, pa.Range.MaxRow, true)
	return fmt.Sprintf("'%s'!%s:%s", strings.ReplaceAll(pa.Sheet, "'", "''"), tl, br)
}

func parsePrintAreaRef(refersTo string) (RangeRef, error) {
	ref := refersTo
	if i := strings.Index(ref, ","); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	r, err := ParseRange(ref)
	if err != nil {
		return RangeRef{}, &MalformedRangeError{Ref: refersTo, Err: err}
	}
	return r, nil
}

func unmergeAll(f *excelize.File, sheet string) error {
	last := cellName(excelize.MaxColumns, excelize.TotalRows)
	if err := f.UnmergeCell(sheet, "A1", last); err != nil {
		return fmt.Errorf("clearing merges of %q: %w", sheet, err)
	}
	return nil
}

func containsRange(set []RangeRef, r RangeRef) bool {
	for _, o := range set {
		if o == r {
			return true
		}
	}
	return false
}

func overlapsAny(r RangeRef, set []RangeRef) bool {
	for _, o := range set {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}
