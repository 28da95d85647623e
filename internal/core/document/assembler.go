package document

import (
	"context"
	"fmt"
	"time"

	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/internal/core/links"
	"pdf2tsv/pkg/logger"
)

// Chunk is one emitted unit of a document.
type Chunk struct {
	ID int64 `json:"id"`
	// Page is the 1-based page the chunk was cut from.
	Page int `json:"page"`
	// Index is the 0-based position of the chunk within its page.
	Index int `json:"index"`
	// Text carries the inline "[link:target]" annotations.
	Text string `json:"text"`
	// Links are the records whose anchors occur in the chunk.
	Links []links.Record `json:"links,omitempty"`
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSeed starts the ID counter at seed; the first chunk gets seed+1.
func WithSeed(seed int64) Option {
	return func(a *Assembler) { a.lastID = seed }
}

// WithSegmenter replaces the default sentence segmenter.
func WithSegmenter(s chunker.Segmenter) Option {
	return func(a *Assembler) { a.segmenter = s }
}

// Assembler drives the per-page pipeline and owns the chunk ID counter.
// It is not safe for concurrent use.
type Assembler struct {
	builder   *chunker.Builder
	segmenter chunker.Segmenter
	lastID    int64
}

// NewAssembler validates cfg. Unless WithSeed is given, the ID counter is
// seeded with the current Unix time in milliseconds.
func NewAssembler(cfg chunker.Config, opts ...Option) (*Assembler, error) {
	builder, err := chunker.NewBuilder(cfg)
	if err != nil {
		return nil, err
	}
	a := &Assembler{
		builder:   builder,
		segmenter: chunker.HeuristicSegmenter{},
		lastID:    time.Now().UnixMilli(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// LastID returns the most recently issued chunk ID (the seed before any).
func (a *Assembler) LastID() int64 { return a.lastID }

func (a *Assembler) nextID() int64 {
	a.lastID++
	return a.lastID
}

// Convert processes every page of src in order. On any extraction failure it
// returns ErrExtraction and no chunks.
func (a *Assembler) Convert(ctx context.Context, src PageSource) ([]Chunk, error) {
	total := src.PageCount()
	var out []Chunk
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("document: processing page %d of %d", n, total)
		page, err := src.Page(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtraction, n, err)
		}
		out = append(out, a.Page(page)...)
	}
	logger.Info("document: produced %d chunks from %d pages", len(out), total)
	return out, nil
}

// Page turns a single page into chunks, issuing IDs in emission order. A page
// without text yields nothing and consumes no IDs.
func (a *Assembler) Page(page Page) []Chunk {
	text := chunker.Normalize(page.Text)
	if text == "" {
		return nil
	}
	sentences := a.segmenter.Segment(text)
	if len(sentences) == 0 {
		return nil
	}
	records := links.Extract(page.Number, page.RawLinks, page.Lookup)
	linkContext := links.ContextSet(sentences, records)

	groups := a.builder.Build(sentences, linkContext)
	chunks := make([]Chunk, 0, len(groups))
	for i, g := range groups {
		joined := g.Text(sentences)
		matched := links.Within(joined, records)
		chunks = append(chunks, Chunk{
			ID:    a.nextID(),
			Page:  page.Number,
			Index: i,
			Text:  links.Enrich(joined, matched),
			Links: matched,
		})
	}
	logger.Debug("document: page %d: %d sentences, %d links, %d chunks", page.Number, len(sentences), len(records), len(chunks))
	return chunks
}
