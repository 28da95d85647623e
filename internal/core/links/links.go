package links

import (
	"fmt"
	"strings"

	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/pkg/logger"
)

// Kind classifies a link record by its destination.
type Kind string

const (
	KindExternal Kind = "external"
	KindInternal Kind = "internal"
	KindNamed    Kind = "named"
)

// RawKind is the link type tag reported by the PDF layer.
type RawKind int

const (
	RawUnknown RawKind = iota
	RawURI
	RawGoTo
	RawNamed
)

func (k RawKind) String() string {
	switch k {
	case RawURI:
		return "uri"
	case RawGoTo:
		return "goto"
	case RawNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Rect is a bounding region in page coordinates.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Normalized returns r with X0 <= X1 and Y0 <= Y1.
func (r Rect) Normalized() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Contains reports whether (x, y) lies inside r, borders included.
func (r Rect) Contains(x, y float64) bool {
	n := r.Normalized()
	return x >= n.X0 && x <= n.X1 && y >= n.Y0 && y <= n.Y1
}

// RawLink is one hyperlink as supplied by the PDF layer.
type RawLink struct {
	Kind RawKind
	// URI is set for RawURI links.
	URI string
	// DestPage is the zero-based destination page of RawGoTo links.
	DestPage int
	// Name is the named destination or action, empty when missing.
	Name string
	Rect Rect
}

// Record is a link with its target and the text under it.
type Record struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target"`
	Text   string `json:"text"`
	Page   int    `json:"page"`
}

// TextLookup returns the page text lying within a rectangle.
type TextLookup interface {
	TextInRect(r Rect) string
}

// TextLookupFunc adapts a function to TextLookup.
type TextLookupFunc func(r Rect) string

func (f TextLookupFunc) TextInRect(r Rect) string { return f(r) }

// Extract converts the raw links of page (1-based) into records. Links whose
// destination cannot be determined are dropped and logged at debug level.
// lookup may be nil, in which case every anchor is empty.
func Extract(page int, raws []RawLink, lookup TextLookup) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec := Record{Page: page}
		switch raw.Kind {
		case RawURI:
			rec.Kind = KindExternal
			rec.Target = raw.URI
		case RawGoTo:
			rec.Kind = KindInternal
			rec.Target = fmt.Sprintf("page_%d", raw.DestPage+1)
		case RawNamed:
			rec.Kind = KindNamed
			if raw.Name != "" {
				rec.Target = raw.Name
			} else {
				logger.Debug("links: page %d: named link without a name, dropped: %+v", page, raw)
			}
		default:
			logger.Debug("links: page %d: unsupported link kind %s, dropped", page, raw.Kind)
		}
		// Targets are written inline into chunk text, anchors are matched
		// against normalized page text; both get the page text treatment.
		rec.Target = chunker.Normalize(rec.Target)
		if rec.Target == "" {
			logger.Debug("links: page %d: %s link with blank target, dropped", page, raw.Kind)
			continue
		}
		if lookup != nil {
			rec.Text = chunker.Normalize(lookup.TextInRect(raw.Rect))
		}
		logger.Debug("links: page %d: found %s link %q -> %s", page, rec.Kind, rec.Text, rec.Target)
		records = append(records, rec)
	}
	return records
}

// ContextSet marks every sentence containing a non-empty anchor, plus its
// immediate neighbours. Splits are never placed next to these sentences.
func ContextSet(sentences []string, records []Record) map[int]bool {
	set := make(map[int]bool)
	for _, rec := range records {
		if rec.Text == "" {
			continue
		}
		for i, s := range sentences {
			if !strings.Contains(s, rec.Text) {
				continue
			}
			set[i] = true
			if i > 0 {
				set[i-1] = true
			}
			if i < len(sentences)-1 {
				set[i+1] = true
			}
		}
	}
	return set
}

// Within returns the records whose anchor text occurs in text.
func Within(text string, records []Record) []Record {
	var out []Record
	for _, rec := range records {
		if rec.Text != "" && strings.Contains(text, rec.Text) {
			out = append(out, rec)
		}
	}
	return out
}
