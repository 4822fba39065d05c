package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of payload dates.
const DateLayout = "2006-01-02"

// Date is a calendar day carried as "YYYY-MM-DD" in JSON.
type Date struct {
	time.Time
}

// UnmarshalJSON accepts "YYYY-MM-DD", an RFC 3339 timestamp, null or "".
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
		}
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the day as "YYYY-MM-DD", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// QuoteItem is one line of a quotation.
type QuoteItem struct {
	Code        string  `json:"codigo" validate:"required"`
	Description string  `json:"descripcion" validate:"required"`
	Standard    string  `json:"norma"`
	Accredited  string  `json:"acreditado"`
	UnitCost    float64 `json:"costo_unitario" validate:"gte=0"`
	Quantity    float64 `json:"cantidad" validate:"gte=0"`
}

// QuoteExportRequest is the payload of an export.
type QuoteExportRequest struct {
	QuoteNumber      string      `json:"cotizacion_numero" validate:"omitempty,numeric,max=6"`
	IssueDate        *Date       `json:"fecha_emision"`
	RequestDate      *Date       `json:"fecha_solicitud"`
	Client           string      `json:"cliente"`
	RUC              string      `json:"ruc" validate:"omitempty,numeric,max=11"`
	Contact          string      `json:"contacto"`
	ContactPhone     string      `json:"telefono_contacto"`
	Email            string      `json:"correo" validate:"omitempty,email"`
	Project          string      `json:"proyecto"`
	Location         string      `json:"ubicacion"`
	Commercial       string      `json:"personal_comercial"`
	CommercialPhone  string      `json:"telefono_comercial"`
	SellerEmail      string      `json:"correo_vendedor" validate:"omitempty,email"`
	DeliveryDays     int         `json:"plazo_dias" validate:"gte=0"`
	PaymentCondition string      `json:"condicion_pago"`
	ConditionIDs     []string    `json:"condiciones_ids"`
	IncludeIGV       *bool       `json:"include_igv"`
	IGVRate          *float64    `json:"igv_rate" validate:"omitempty,gte=0,lte=1"`
	Items            []QuoteItem `json:"items" validate:"dive"`
	TemplateID       string      `json:"template_id" validate:"omitempty,max=8"`
}

// IGVIncluded reports whether IGV applies; it defaults to true.
func (r *QuoteExportRequest) IGVIncluded() bool {
	return r.IncludeIGV == nil || *r.IncludeIGV
}

// NextNumber is an allocated quote number.
type NextNumber struct {
	Year       int    `json:"year"`
	Sequential int    `json:"sequential"`
	Number     string `json:"number"`
	Token      string `json:"token"`
}

// Condition is a row of condiciones_especificas.
type Condition struct {
	ID       string `json:"id" yaml:"id" db:"id" excel:"header:ID,width:14"`
	Text     string `json:"texto" yaml:"texto" db:"texto" excel:"header:Texto,width:80,wrap:true"`
	Category string `json:"categoria" yaml:"categoria" db:"categoria" excel:"header:Categoría,width:18"`
	Order    int    `json:"orden" yaml:"orden" db:"orden" excel:"header:Orden,width:8"`
	Active   bool   `json:"activo" yaml:"activo" db:"activo" excel:"header:Activo,width:8"`
}

// SequenceState is the last number issued for a year.
type SequenceState struct {
	Year      int `json:"year" db:"year" excel:"header:Año,width:8"`
	LastValue int `json:"last_value" db:"last_value" excel:"header:Último correlativo,width:20"`
}
