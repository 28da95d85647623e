package chunker

import (
	"strings"
	"unicode/utf8"
)

// Group is a half-open range [Start, End) of sentence indices forming one chunk.
type Group struct {
	Start int
	End   int
}

// Len returns the number of sentences in the group.
func (g Group) Len() int { return g.End - g.Start }

// Text joins the group's sentences with single spaces.
func (g Group) Text(sentences []string) string {
	return strings.Join(sentences[g.Start:g.End], " ")
}

// Builder packs sentences into chunk groups.
type Builder struct {
	cfg Config
}

// NewBuilder validates cfg and returns a Builder for it.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build greedily groups consecutive sentences in one forward pass.
//
// A group is closed before sentence i when adding it would exceed
// MaxChunkSize, the group holds at least MinSentencesPerChunk sentences and
// i is not link context. A group is also closed after sentence i when it
// holds at least 2*MinSentencesPerChunk sentences and MinChunkSize chars, and
// IsGoodBreakPoint approves the boundary between i and i+1, neither of which
// is link context. Each new group starts with the trailing OverlapSentences
// sentences of the previous one. Link context may push a group past
// MaxChunkSize; the last group of a page may be shorter than the minimum.
func (b *Builder) Build(sentences []string, linkContext map[int]bool) []Group {
	if len(sentences) == 0 {
		return nil
	}
	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = utf8.RuneCountInString(s)
	}

	var (
		groups  []Group
		cur     = Group{}
		curLen  int
		minSent = b.cfg.MinSentencesPerChunk
	)
	restart := func() {
		groups = append(groups, cur)
		start := cur.End - b.cfg.OverlapSentences
		if start < cur.Start {
			start = cur.Start
		}
		cur = Group{Start: start, End: cur.End}
		curLen = 0
		for k := cur.Start; k < cur.End; k++ {
			curLen += lengths[k]
		}
	}

	for i := range sentences {
		isLinkContext := linkContext[i]

		if curLen+lengths[i] > b.cfg.MaxChunkSize && cur.Len() >= minSent && !isLinkContext {
			restart()
		}

		cur.End = i + 1
		curLen += lengths[i]

		hasNext := i+1 < len(sentences)
		if cur.Len() >= 2*minSent &&
			curLen >= b.cfg.MinChunkSize &&
			hasNext &&
			!isLinkContext &&
			!linkContext[i+1] &&
			IsGoodBreakPoint(sentences[i], sentences[i+1]) {
			restart()
		}
	}

	if cur.Len() > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// Chunk packs sentences and returns the joined chunk texts.
func (b *Builder) Chunk(sentences []string, linkContext map[int]bool) []string {
	groups := b.Build(sentences, linkContext)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Text(sentences)
	}
	return out
}
