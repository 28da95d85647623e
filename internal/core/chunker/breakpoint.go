package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var transitionWords = []string{"However", "Moreover", "Furthermore"}

var abbreviationSuffixes = []string{" etc.", "e.g.", "i.e."}

// IsGoodBreakPoint approves a soft split between a (ending the chunk) and b
// (starting the next one).
func IsGoodBreakPoint(a, b string) bool {
	if !strings.HasSuffix(a, ".") || b == "" {
		return false
	}
	for _, w := range transitionWords {
		if strings.HasPrefix(b, w) {
			return true
		}
	}
	lower := strings.ToLower(a)
	for _, suffix := range abbreviationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	first, _ := utf8.DecodeRuneInString(b)
	return unicode.IsUpper(first)
}
