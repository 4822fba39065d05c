package quotexlsx

import (
	"errors"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultAnchorMaxRow is the largest 0-based anchor row still considered to
// belong to the quotation sheet.
const DefaultAnchorMaxRow = 200

var (
	reDrawingRow = regexp.MustCompile(`(<xdr:row>)(\d+)(</xdr:row>)`)
	reAnyRow     = regexp.MustCompile(`(<[A-Za-z0-9_]+:row>)(\d+)(</[A-Za-z0-9_]+:row>)`)
	reVMLRow     = regexp.MustCompile(`(<x:Row>)(\d+)(</x:Row>)`)
	reVMLAnchor  = regexp.MustCompile(`(<x:Anchor>)([^<]+)(</x:Anchor>)`)
)

// AnchorShifter moves drawing and VML anchors down after rows were inserted.
// It remembers which parts it already rewrote and never shifts a part twice.
// An AnchorShifter belongs to a single export and is not safe for concurrent
// use.
type AnchorShifter struct {
	StartRow0 int
	Delta     int
	MaxRow    int

	applied map[string]bool
}

// NewAnchorShifter builds a shifter for ev. A maxRow <= 0 selects
// DefaultAnchorMaxRow.
func NewAnchorShifter(ev InsertionEvent, maxRow int) *AnchorShifter {
	if maxRow <= 0 {
		maxRow = DefaultAnchorMaxRow
	}
	delta := ev.Delta
	if delta < 0 {
		delta = 0
	}
	return &AnchorShifter{
		StartRow0: ev.StartRow0(),
		Delta:     delta,
		MaxRow:    maxRow,
		applied:   make(map[string]bool),
	}
}

// Shift rewrites the anchors of a drawing (.xml) or VML (.vml) part under
// xl/drawings/. Other parts are returned as is. A part already handled by
// this shifter is returned unchanged. On decode failure the original bytes
// are returned along with an *AnchorDecodeError.
func (s *AnchorShifter) Shift(part string, data []byte) ([]byte, error) {
	if !IsAnchorPart(part) || s.applied[part] {
		return data, nil
	}
	s.applied[part] = true

	var (
		out []byte
		err error
	)
	switch path.Ext(part) {
	case ".xml":
		out, err = s.shiftDrawing(data)
	case ".vml":
		out, err = s.shiftVML(data)
	default:
		return data, nil
	}
	if err != nil {
		var de *AnchorDecodeError
		if errors.As(err, &de) {
			de.Part = part
		}
		return data, err
	}
	return out, nil
}

// Applied reports whether part was already processed.
func (s *AnchorShifter) Applied(part string) bool {
	return s.applied[part]
}

// IsAnchorPart reports whether the part can hold row anchors.
func IsAnchorPart(name string) bool {
	if !strings.HasPrefix(name, "xl/drawings/") || strings.Contains(name, "/_rels/") {
		return false
	}
	ext := path.Ext(name)
	return ext == ".xml" || ext == ".vml"
}

// shiftDrawing shifts <xdr:row> values of a DrawingML part. When the part has
// no <xdr:row> tags, any namespaced <prefix:row> tag is used instead.
func (s *AnchorShifter) shiftDrawing(data []byte) ([]byte, error) {
	if s.Delta == 0 {
		return data, nil
	}
	if !utf8.Valid(data) {
		return data, &AnchorDecodeError{Reason: "drawing part is not valid UTF-8"}
	}
	text := string(data)

	re := reDrawingRow
	rows := rowValues(re, text)
	if len(rows) == 0 {
		re = reAnyRow
		rows = rowValues(re, text)
	}
	if !s.inScope(rows) {
		return data, nil
	}

	text = re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		v, _ := strconv.Atoi(sub[2])
		return sub[1] + strconv.Itoa(s.shift(v)) + sub[3]
	})
	return []byte(text), nil
}

// shiftVML shifts the <x:Row> tags and the row fields (3rd and 7th) of every
// <x:Anchor> descriptor in a legacy VML part. Parts that are not UTF-8 are
// decoded as ISO-8859-1 and written back in the same encoding.
func (s *AnchorShifter) shiftVML(data []byte) ([]byte, error) {
	if s.Delta == 0 {
		return data, nil
	}

	latin1 := false
	text := string(data)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return data, &AnchorDecodeError{Reason: "vml part is neither UTF-8 nor ISO-8859-1"}
		}
		text = string(decoded)
		latin1 = true
	}

	rows := rowValues(reVMLRow, text)
	for _, m := range reVMLAnchor.FindAllStringSubmatch(text, -1) {
		nums, err := parseVMLAnchor(m[2])
		if err != nil {
			return data, err
		}
		rows = append(rows, nums[2], nums[6])
	}
	if !s.inScope(rows) {
		return data, nil
	}

	text = reVMLRow.ReplaceAllStringFunc(text, func(m string) string {
		sub := reVMLRow.FindStringSubmatch(m)
		v, _ := strconv.Atoi(sub[2])
		return sub[1] + strconv.Itoa(s.shift(v)) + sub[3]
	})
	text = reVMLAnchor.ReplaceAllStringFunc(text, func(m string) string {
		sub := reVMLAnchor.FindStringSubmatch(m)
		nums, _ := parseVMLAnchor(sub[2])
		nums[2] = s.shift(nums[2])
		nums[6] = s.shift(nums[6])
		fields := make([]string, len(nums))
		for i, n := range nums {
			fields[i] = strconv.Itoa(n)
		}
		return sub[1] + strings.Join(fields, ", ") + sub[3]
	})

	if latin1 {
		encoded, err := charmap.ISO8859_1.NewEncoder().String(text)
		if err != nil {
			return data, &AnchorDecodeError{Reason: "re-encoding vml part: " + err.Error()}
		}
		return []byte(encoded), nil
	}
	return []byte(text), nil
}

func (s *AnchorShifter) shift(v int) int {
	if v >= s.StartRow0 {
		return v + s.Delta
	}
	return v
}

// inScope reports whether any row is plausibly on the quotation sheet and at
// or below the insertion threshold.
func (s *AnchorShifter) inScope(rows []int) bool {
	for _, v := range rows {
		if v >= s.StartRow0 && v <= s.MaxRow {
			return true
		}
	}
	return false
}

func rowValues(re *regexp.Regexp, text string) []int {
	var out []int
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(m[2]); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func parseVMLAnchor(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 8 {
		return nil, &AnchorDecodeError{Reason: "anchor " + strconv.Quote(raw) + " does not have 8 fields"}
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, &AnchorDecodeError{Reason: "anchor " + strconv.Quote(raw) + " has a non-numeric field"}
		}
		nums[i] = n
	}
	return nums, nil
}
