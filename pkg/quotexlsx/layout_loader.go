package quotexlsx

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// layout_loader.go - Layout loading, defaults and validation

//go:embed layouts/default.yaml
var embeddedLayouts embed.FS

const (
	defaultDateFormat       = "02/01/2006"
	defaultConditionsRows   = 10
	defaultSearchRows       = 200
	defaultSearchCols       = 20
	defaultConditionsOffset = 1
)

// DefaultLayout returns the built-in layout of Formato-cotizacion.xlsx.
func DefaultLayout() (*Layout, error) {
	data, err := embeddedLayouts.ReadFile("layouts/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded layout: %w", err)
	}
	return LoadLayoutFromBytes(data)
}

// LoadLayout loads a layout from a YAML file.
func LoadLayout(path string) (*Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layout file: %w", err)
	}
	defer file.Close()

	return LoadLayoutFromReader(file)
}

// LoadLayoutFromReader loads a layout from an io.Reader.
func LoadLayoutFromReader(r io.Reader) (*Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	return LoadLayoutFromBytes(data)
}

// LoadLayoutFromString loads a layout from a YAML string.
func LoadLayoutFromString(content string) (*Layout, error) {
	return LoadLayoutFromReader(strings.NewReader(content))
}

// LoadLayoutFromBytes parses, defaults and validates a YAML layout.
func LoadLayoutFromBytes(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parsing YAML layout: %w", err)
	}

	layout.applyDefaults()

	if err := ValidateLayout(&layout); err != nil {
		return nil, fmt.Errorf("validating layout: %w", err)
	}
	return &layout, nil
}

// ValidateLayout checks that every configured reference is usable.
func ValidateLayout(l *Layout) error {
	if l == nil {
		return errors.New("layout is nil")
	}
	if l.ItemRow < 1 {
		return fmt.Errorf("layout '%s': item_row must be >= 1", l.Name)
	}
	if _, _, err := l.Band.Columns(); err != nil {
		return fmt.Errorf("layout '%s' band: %w", l.Name, err)
	}

	required := map[string]string{
		"items.code":          l.Items.Code,
		"items.description":   l.Items.Description,
		"items.unit_cost":     l.Items.UnitCost,
		"items.quantity":      l.Items.Quantity,
		"header.quote_number": l.Header.QuoteNumber,
	}
	for field, v := range required {
		if v == "" {
			return fmt.Errorf("layout '%s': %s is required", l.Name, field)
		}
	}

	for field, col := range l.Items.fields() {
		if col == "" {
			continue
		}
		if _, err := columnNumber(col); err != nil {
			return fmt.Errorf("layout '%s': invalid column '%s' for items.%s", l.Name, col, field)
		}
	}

	cells := l.Header.fields()
	for k, v := range l.Totals.fields() {
		cells["totals."+k] = v
	}
	for field, cell := range cells {
		if cell == "" {
			continue
		}
		if _, _, err := excelize.CellNameToCoordinates(cell); err != nil {
			return fmt.Errorf("layout '%s': invalid cell '%s' for %s", l.Name, cell, field)
		}
	}

	if c := l.Conditions; c.AnchorText != "" {
		if _, err := columnNumber(c.Column); err != nil {
			return fmt.Errorf("layout '%s': invalid conditions column '%s'", l.Name, c.Column)
		}
		if _, _, err := c.Band.Columns(); err != nil {
			return fmt.Errorf("layout '%s' conditions band: %w", l.Name, err)
		}
	}
	return nil
}

// applyDefaults fills optional settings.
func (l *Layout) applyDefaults() {
	if l.Version == "" {
		l.Version = "1.0"
	}
	if l.DateFormat == "" {
		l.DateFormat = defaultDateFormat
	}

	c := &l.Conditions
	if c.Offset <= 0 {
		c.Offset = defaultConditionsOffset
	}
	if c.MaxRows <= 0 {
		c.MaxRows = defaultConditionsRows
	}
	if c.SearchRows <= 0 {
		c.SearchRows = defaultSearchRows
	}
	if c.SearchCols <= 0 {
		c.SearchCols = defaultSearchCols
	}
	if c.Band.From == "" && c.Band.To == "" {
		c.Band = l.Band
	}
	if c.Column == "" {
		c.Column = c.Band.From
	}
}

// Columns returns the 1-based bounds of the band.
func (b ColumnBand) Columns() (int, int, error) {
	from, err := columnNumber(b.From)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column '%s'", b.From)
	}
	to, err := columnNumber(b.To)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column '%s'", b.To)
	}
	if from > to {
		return 0, 0, fmt.Errorf("column '%s' is after '%s'", b.From, b.To)
	}
	return from, to, nil
}

func (c ItemColumns) fields() map[string]string {
	return map[string]string{
		"code":        c.Code,
		"description": c.Description,
		"standard":    c.Standard,
		"accredited":  c.Accredited,
		"unit_cost":   c.UnitCost,
		"quantity":    c.Quantity,
		"total":       c.Total,
	}
}

func (h HeaderCells) fields() map[string]string {
	return map[string]string{
		"header.quote_number":      h.QuoteNumber,
		"header.client":            h.Client,
		"header.ruc":               h.RUC,
		"header.contact":           h.Contact,
		"header.phone":             h.Phone,
		"header.email":             h.Email,
		"header.project":           h.Project,
		"header.location":          h.Location,
		"header.commercial":        h.Commercial,
		"header.commercial_phone":  h.CommercialPhone,
		"header.commercial_email":  h.CommercialEmail,
		"header.request_date":      h.RequestDate,
		"header.issue_date":        h.IssueDate,
		"header.delivery_days":     h.DeliveryDays,
		"header.payment_condition": h.PaymentCondition,
	}
}

func (t TotalsCells) fields() map[string]string {
	return map[string]string{
		"subtotal": t.Subtotal,
		"igv":      t.IGV,
		"total":    t.Total,
	}
}

// LayoutSet resolves the layout of a template variant: a <VARIANT>.yaml file
// from the override directory when present, the built-in layout otherwise.
type LayoutSet struct {
	dir      string
	fallback *Layout
}

// NewLayoutSet builds a set over dir. An empty dir uses only the built-in
// layout; a non-empty one must be an existing directory.
func NewLayoutSet(dir string) (*LayoutSet, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("layouts directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("layouts directory %q is not a directory", dir)
		}
	}
	def, err := DefaultLayout()
	if err != nil {
		return nil, err
	}
	return &LayoutSet{dir: dir, fallback: def}, nil
}

// For returns the layout of variant. The returned value is a private copy.
func (s *LayoutSet) For(variant string) (*Layout, error) {
	if s.dir != "" && variant != "" {
		p := filepath.Join(s.dir, strings.ToUpper(variant)+".yaml")
		if _, err := os.Stat(p); err == nil {
			return LoadLayout(p)
		}
	}
	l := *s.fallback
	return &l, nil
}
