package quotexlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultTemplateFile is used when no variant, or an unknown one, is requested.
const DefaultTemplateFile = "Formato-cotizacion.xlsx"

// Variants maps template identifiers to their file names.
var Variants = map[string]string{
	"V1": "V1 - MUESTRA DE SUELO Y AGREGADO.xlsx",
	"V2": "V2 - PROBETAS.xlsx",
	"V3": "V3 - DENSIDAD DE CAMPO Y MUESTREO.xlsx",
	"V4": "V4 - EXTRACCIÓN DE DIAMANTINA.xlsx",
	"V5": "V5 - DIAMANTINA PARA PASES.xlsx",
	"V6": "V6 - ALBAÑILERÍA.xlsx",
	"V7": "V7 - VIGA BECKELMAN.xlsx",
	"V8": "V8 - CONTROL DE CALIDAD DE CONCRETO FRESCO EN OBRA.xlsx",
}

// TemplateFile returns the file name of variant.
func TemplateFile(variant string) string {
	if name, ok := Variants[strings.ToUpper(strings.TrimSpace(variant))]; ok {
		return name
	}
	return DefaultTemplateFile
}

// TemplateSet finds template files in an ordered list of directories.
type TemplateSet struct {
	dirs []string
}

// NewTemplateSet builds a set searching dirs in order. Empty entries are
// ignored.
func NewTemplateSet(dirs ...string) *TemplateSet {
	ts := &TemplateSet{}
	for _, d := range dirs {
		if d = strings.TrimSpace(d); d != "" {
			ts.dirs = append(ts.dirs, d)
		}
	}
	return ts
}

// Dirs returns the candidate directories.
func (ts *TemplateSet) Dirs() []string {
	return append([]string(nil), ts.dirs...)
}

// Resolve returns the path of the first existing file for variant. It fails
// with ErrTemplateNotFound naming every path tried.
func (ts *TemplateSet) Resolve(variant string) (string, error) {
	name := TemplateFile(variant)
	tried := make([]string, 0, len(ts.dirs))
	for _, dir := range ts.dirs {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
		tried = append(tried, p)
	}
	return "", fmt.Errorf("%w: %q (tried %s)", ErrTemplateNotFound, name, strings.Join(tried, ", "))
}

// Load reads the template file of variant.
func (ts *TemplateSet) Load(variant string) (string, []byte, error) {
	p, err := ts.Resolve(variant)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", nil, fmt.Errorf("reading template %q: %w", p, err)
	}
	return p, data, nil
}

// Available lists the variants with a template on disk.
func (ts *TemplateSet) Available() []string {
	var out []string
	for id := range Variants {
		if _, err := ts.Resolve(id); err == nil {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
