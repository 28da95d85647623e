package links

import (
	"regexp"
	"sort"
	"strings"
)

const annotationPrefix = "[link:"

var annotationRe = regexp.MustCompile(`\[link:[^\]]*\]`)

// Enrich appends "[link:target]" after every occurrence of each record's
// anchor text. Longer anchors are applied first so that an anchor containing
// a shorter one is annotated whole. Occurrences already followed by an
// annotation, or lying inside one, are left alone, which makes Enrich
// idempotent. Overlapping anchors are handled best-effort only.
func Enrich(text string, records []Record) string {
	if len(records) == 0 {
		return text
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Text) > len(sorted[j].Text)
	})

	for _, rec := range sorted {
		anchor := strings.TrimSpace(rec.Text)
		if anchor == "" || rec.Target == "" {
			continue
		}
		if !strings.Contains(text, anchor) {
			continue
		}
		text = annotate(text, anchor, rec.Target)
	}
	return text
}

func annotate(text, anchor, target string) string {
	spans := annotationRe.FindAllStringIndex(text, -1)
	inAnnotation := func(pos int) bool {
		for _, s := range spans {
			if pos >= s[0] && pos < s[1] {
				return true
			}
		}
		return false
	}

	var b strings.Builder
	b.Grow(len(text) + len(target) + len(annotationPrefix) + 1)
	pos := 0
	for {
		idx := strings.Index(text[pos:], anchor)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(anchor)
		b.WriteString(text[pos:end])
		if !inAnnotation(start) && !strings.HasPrefix(text[end:], annotationPrefix) {
			b.WriteString(annotationPrefix)
			b.WriteString(target)
			b.WriteByte(']')
		}
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}
