package chunker

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// zeroWidth holds ZWSP, ZWNJ, ZWJ and the byte-order mark.
var zeroWidth = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200B, Hi: 0x200D, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

func isControl(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.In(r, unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs)
}

// Normalize cleans raw page text: whitespace runs become one space, control
// characters become spaces, zero-width characters and BOMs are dropped, the
// result is NFKC-normalized and trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = collapseSpace(text)

	// Zero-width characters are format (Cf) runes, so they must go before the
	// control mapping would turn them into spaces.
	t := transform.Chain(
		runes.Remove(runes.In(zeroWidth)),
		runes.Map(func(r rune) rune {
			if isControl(r) {
				return ' '
			}
			return r
		}),
		norm.NFKC,
	)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = norm.NFKC.String(text)
	}

	// Control replacement and NFKC can both introduce spaces.
	return collapseSpace(out)
}

// collapseSpace replaces every whitespace run with a single space and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
