package quotexlsx

// layout_types.go - YAML-mappable description of where a quotation template
// keeps its fields. Cell references are template coordinates, before any row
// insertion.

// Layout maps document fields to cells of one template variant.
type Layout struct {
	Version    string           `yaml:"version"`
	Name       string           `yaml:"name"`
	Sheet      string           `yaml:"sheet,omitempty"` // Empty selects the first sheet
	ItemRow    int              `yaml:"item_row"`        // Prototype row of the items table
	Band       ColumnBand       `yaml:"band"`            // Columns styled and merged per item row
	Items      ItemColumns      `yaml:"items"`
	Header     HeaderCells      `yaml:"header"`
	Totals     TotalsCells      `yaml:"totals"`
	Conditions ConditionsLayout `yaml:"conditions"`
	DateFormat string           `yaml:"date_format,omitempty"` // Go layout, default 02/01/2006
}

// ColumnBand is an inclusive column interval given by letters.
type ColumnBand struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ItemColumns holds the column letter of every line item field.
type ItemColumns struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Standard    string `yaml:"standard,omitempty"`
	Accredited  string `yaml:"accredited,omitempty"`
	UnitCost    string `yaml:"unit_cost"`
	Quantity    string `yaml:"quantity"`
	Total       string `yaml:"total,omitempty"`
}

// HeaderCells holds the cell of every header field. Empty cells are not
// written.
type HeaderCells struct {
	QuoteNumber      string `yaml:"quote_number"`
	Client           string `yaml:"client,omitempty"`
	RUC              string `yaml:"ruc,omitempty"`
	Contact          string `yaml:"contact,omitempty"`
	Phone            string `yaml:"phone,omitempty"`
	Email            string `yaml:"email,omitempty"`
	Project          string `yaml:"project,omitempty"`
	Location         string `yaml:"location,omitempty"`
	Commercial       string `yaml:"commercial,omitempty"`
	CommercialPhone  string `yaml:"commercial_phone,omitempty"`
	CommercialEmail  string `yaml:"commercial_email,omitempty"`
	RequestDate      string `yaml:"request_date,omitempty"`
	IssueDate        string `yaml:"issue_date,omitempty"`
	DeliveryDays     string `yaml:"delivery_days,omitempty"`
	PaymentCondition string `yaml:"payment_condition,omitempty"`
}

// TotalsCells holds the cells receiving the computed amounts.
type TotalsCells struct {
	Subtotal string `yaml:"subtotal,omitempty"`
	IGV      string `yaml:"igv,omitempty"`
	Total    string `yaml:"total,omitempty"`
}

// ConditionsLayout places the specific conditions below an anchor row found
// by its text.
type ConditionsLayout struct {
	AnchorText string     `yaml:"anchor_text,omitempty"` // Case-insensitive substring
	Offset     int        `yaml:"offset,omitempty"`      // Rows between anchor and first condition
	MaxRows    int        `yaml:"max_rows,omitempty"`    // Extra conditions are joined into the last row
	Column     string     `yaml:"column,omitempty"`      // Column receiving the text
	Band       ColumnBand `yaml:"band,omitempty"`        // Forced merge band of every condition row
	SearchRows int        `yaml:"search_rows,omitempty"`
	SearchCols int        `yaml:"search_cols,omitempty"`
}
