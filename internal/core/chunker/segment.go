package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits cleaned text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// SegmenterFunc adapts a plain function to Segmenter.
type SegmenterFunc func(text string) []string

func (f SegmenterFunc) Segment(text string) []string { return f(text) }

var abbreviations = map[string]struct{}{
	"Mr":   {},
	"Mrs":  {},
	"Ms":   {},
	"Dr":   {},
	"Jr":   {},
	"Sr":   {},
	"Prof": {},
}

// HeuristicSegmenter splits at whitespace preceded by '.', '!' or '?' and
// followed by an uppercase letter, unless the punctuation closes a title
// abbreviation (Mr., Dr., ...) or an initials pattern (J.R., e.g.).
type HeuristicSegmenter struct{}

// Segment returns trimmed, non-empty sentences in text order.
func (HeuristicSegmenter) Segment(text string) []string {
	var (
		sentences []string
		start     int
	)
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			i += size
			continue
		}
		// i is the first byte of a whitespace run ending at j.
		j := i + size
		for j < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r2) {
				break
			}
			j += s2
		}
		if j < len(text) && isBoundary(text[start:i], text[j:]) {
			emit(text[start:i])
			start = j
		}
		i = j
	}
	emit(text[start:])
	return sentences
}

func isBoundary(before, after string) bool {
	last, _ := utf8.DecodeLastRuneInString(before)
	if last != '.' && last != '!' && last != '?' {
		return false
	}
	next, _ := utf8.DecodeRuneInString(after)
	if !unicode.IsUpper(next) {
		return false
	}
	return !endsWithAbbreviation(before)
}

// endsWithAbbreviation reports whether s (ending in terminal punctuation) ends
// with "Dr." style titles or a single-letter.single-letter. pattern.
func endsWithAbbreviation(s string) bool {
	body := s[:len(s)-1]
	word := lastWord(body)
	if _, ok := abbreviations[word]; ok && s[len(s)-1] == '.' {
		return true
	}
	return isInitials(word + s[len(s)-1:])
}

// lastWord returns the trailing run of letters and dots of s.
func lastWord(s string) string {
	i := len(s)
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' {
			break
		}
		i -= size
	}
	return s[i:]
}

// isInitials matches "x.y." (optionally longer: "a.b.c.") where each x is one
// letter or digit.
func isInitials(word string) bool {
	parts := strings.Split(word, ".")
	// "J.R." splits into ["J", "R", ""].
	if len(parts) < 3 || parts[len(parts)-1] != "" {
		return false
	}
	for _, p := range parts[:len(parts)-1] {
		if utf8.RuneCountInString(p) != 1 {
			return false
		}
	}
	return true
}
