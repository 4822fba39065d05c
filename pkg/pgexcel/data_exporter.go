package pgexcel

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DataExporter exports slices of structs to a workbook. Sheets keep the order
// they were added in.
type DataExporter struct {
	sheets      []sheetData
	headerStyle *CellStyle
	dataStyle   *CellStyle
}

type sheetData struct {
	name string
	rows interface{}
}

// NewDataExporter creates an exporter with the default styles.
func NewDataExporter() *DataExporter {
	return &DataExporter{
		headerStyle: DefaultHeaderStyle(),
		dataStyle:   DefaultDataStyle(),
	}
}

// WithData adds a sheet. rows must be a slice of structs or struct pointers;
// columns come from exported fields and their `excel` tags.
func (e *DataExporter) WithData(sheetName string, rows interface{}) *DataExporter {
	e.sheets = append(e.sheets, sheetData{name: sheetName, rows: rows})
	return e
}

// WithHeaderStyle replaces the header style.
func (e *DataExporter) WithHeaderStyle(style *CellStyle) *DataExporter {
	if style != nil {
		e.headerStyle = style
	}
	return e
}

// Export writes the workbook to writer.
func (e *DataExporter) Export(ctx context.Context, writer io.Writer) error {
	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := createStyle(f, e.headerStyle, "")
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range e.sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := e.exportSheet(f, s.name, s.rows, headerStyle); err != nil {
			return fmt.Errorf("exporting sheet '%s': %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(writer)
}

// ExportToFile exports to a file path
func (e *DataExporter) ExportToFile(ctx context.Context, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()
	return e.Export(ctx, file)
}

func (e *DataExporter) exportSheet(f *excelize.File, sheetName string, data interface{}, headerStyle int) error {
	dataVal := reflect.ValueOf(data)
	if dataVal.Kind() == reflect.Ptr {
		dataVal = dataVal.Elem()
	}
	if dataVal.Kind() != reflect.Slice {
		return fmt.Errorf("data must be a slice, got %s", dataVal.Kind())
	}

	elemType := dataVal.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("unsupported row type: %s", elemType.Kind())
	}
	columns := ExtractColumns(elemType)

	colStyles := make([]int, len(columns))
	for i, col := range columns {
		style := *e.dataStyle
		style.WrapText = col.Wrap
		id, err := createStyle(f, &style, col.Format)
		if err != nil {
			return fmt.Errorf("creating style for %s: %w", col.Header, err)
		}
		colStyles[i] = id
	}

	for colIdx, col := range columns {
		cell := columnIndexToName(colIdx) + "1"
		if err := f.SetCellValue(sheetName, cell, col.Header); err != nil {
			return fmt.Errorf("setting header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("setting header style: %w", err)
		}
		if col.Width > 0 {
			name := columnIndexToName(colIdx)
			if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
				return fmt.Errorf("setting column width: %w", err)
			}
		}
	}

	for rowIdx := 0; rowIdx < dataVal.Len(); rowIdx++ {
		rowVal := dataVal.Index(rowIdx)
		if rowVal.Kind() == reflect.Ptr {
			if rowVal.IsNil() {
				continue
			}
			rowVal = rowVal.Elem()
		}
		rowNum := rowIdx + 2

		for colIdx, col := range columns {
			cell := fmt.Sprintf("%s%d", columnIndexToName(colIdx), rowNum)
			value := formatDataValue(rowVal.FieldByName(col.FieldName).Interface(), col)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("setting cell value: %w", err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, colStyles[colIdx]); err != nil {
				return fmt.Errorf("setting cell style: %w", err)
			}
		}
	}

	if len(columns) == 0 {
		return nil
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("setting freeze panes: %w", err)
	}
	lastCol := columnIndexToName(len(columns) - 1)
	if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:%s%d", lastCol, dataVal.Len()+1), nil); err != nil {
		return fmt.Errorf("setting auto filter: %w", err)
	}
	return nil
}

// ExtractColumns lists the visible columns of a struct type.
// Tags look like `excel:"header:Texto,width:60,wrap:true"`; `excel:"-"` hides
// the field. Without a header the json name, then the field name, is used.
func ExtractColumns(t reflect.Type) []ColumnInfo {
	var columns []ColumnInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		col := ColumnInfo{FieldName: field.Name}
		if tag := field.Tag.Get("excel"); tag != "" {
			parseExcelTag(&col, tag)
		}
		if col.Hidden {
			continue
		}
		if col.Header == "" {
			col.Header = field.Name
			if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" && name != "-" {
				col.Header = name
			}
		}
		columns = append(columns, col)
	}
	return columns
}

func parseExcelTag(col *ColumnInfo, tag string) {
	if tag == "-" {
		col.Hidden = true
		return
	}

	for _, part := range strings.Split(tag, ",") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "header":
			col.Header = value
		case "width":
			fmt.Sscanf(value, "%f", &col.Width)
		case "format":
			col.Format = value
		case "wrap":
			col.Wrap = value == "true"
		case "hidden":
			col.Hidden = value == "true"
		}
	}
}

func formatDataValue(value interface{}, col ColumnInfo) interface{} {
	if value == nil {
		return ""
	}

	if t, ok := value.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		if col.Format != "" {
			return t.Format(col.Format)
		}
		return t
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return ""
		}
		return formatDataValue(val.Elem().Interface(), col)
	}
	return value
}

// createStyle builds an excelize style. numFmt is ignored when it is a time
// layout, since times are written preformatted.
func createStyle(f *excelize.File, style *CellStyle, numFmt string) (int, error) {
	excelStyle := &excelize.Style{
		Font: &excelize.Font{
			Bold:   style.FontBold,
			Size:   style.FontSize,
			Family: style.FontName,
		},
		Alignment: &excelize.Alignment{
			Horizontal: style.Alignment,
			Vertical:   "top",
			WrapText:   style.WrapText,
		},
	}

	if style.FontColor != "" {
		excelStyle.Font.Color = strings.TrimPrefix(style.FontColor, "#")
	}
	if style.FillColor != "" {
		excelStyle.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(style.FillColor, "#")},
		}
	}
	if style.BorderLine {
		excelStyle.Border = []excelize.Border{
			{Type: "left", Color: "BFBFBF", Style: 1},
			{Type: "top", Color: "BFBFBF", Style: 1},
			{Type: "bottom", Color: "BFBFBF", Style: 1},
			{Type: "right", Color: "BFBFBF", Style: 1},
		}
	}
	if numFmt != "" && !strings.Contains(numFmt, "2006") {
		excelStyle.CustomNumFmt = &numFmt
	}

	return f.NewStyle(excelStyle)
}

// columnIndexToName converts column index (0-based) to Excel column name
func columnIndexToName(index int) string {
	name := ""
	index++

	for index > 0 {
		index--
		name = string(rune('A'+index%26)) + name
		index /= 26
	}

	return name
}
