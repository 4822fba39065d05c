// Package pgexcel writes catalog rows read from PostgreSQL into tabular
// workbooks, one sheet per table.
package pgexcel

// CellStyle defines styling for cells
type CellStyle struct {
	FontName   string
	FontSize   float64
	FontBold   bool
	FontColor  string
	FillColor  string
	Alignment  string // "left", "center", "right"
	WrapText   bool
	BorderLine bool
}

// DefaultHeaderStyle returns a default style for headers
func DefaultHeaderStyle() *CellStyle {
	return &CellStyle{
		FontName:   "Arial",
		FontSize:   10,
		FontBold:   true,
		FontColor:  "#FFFFFF",
		FillColor:  "#1F4E78",
		Alignment:  "center",
		BorderLine: true,
	}
}

// DefaultDataStyle returns a default style for data cells
func DefaultDataStyle() *CellStyle {
	return &CellStyle{
		FontName:   "Arial",
		FontSize:   10,
		Alignment:  "left",
		BorderLine: true,
	}
}

// ColumnInfo describes one exported column.
type ColumnInfo struct {
	FieldName string
	Header    string
	Width     float64
	Format    string // number format, or a Go time layout for time.Time fields
	Wrap      bool
	Hidden    bool
}
