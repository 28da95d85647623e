package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/internal/core/links"
)

type failingSource struct {
	pages  Pages
	failAt int
}

func (f failingSource) PageCount() int { return len(f.pages) }

func (f failingSource) Page(ctx context.Context, n int) (Page, error) {
	if n == f.failAt {
		return Page{}, errors.New("corrupt content stream")
	}
	return f.pages.Page(ctx, n)
}

func testConfig() chunker.Config {
	return chunker.Config{MinChunkSize: 10, MaxChunkSize: 60, MinSentencesPerChunk: 2, OverlapSentences: 1}
}

func TestNewAssemblerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.OverlapSentences = cfg.MinSentencesPerChunk
	_, err := NewAssembler(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, chunker.ErrInvalidConfig)
}

func TestNewAssemblerSeedsFromClock(t *testing.T) {
	a, err := NewAssembler(testConfig())
	require.NoError(t, err)
	assert.Greater(t, a.LastID(), int64(1_600_000_000_000))
}

func TestConvert(t *testing.T) {
	src := Pages{
		{Text: "First sentence here. Second sentence here. Third sentence here."},
		{Text: "   \n\t "},
		{Text: "Only page three."},
	}
	a, err := NewAssembler(testConfig(), WithSeed(1000))
	require.NoError(t, err)

	chunks, err := a.Convert(context.Background(), src)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, int64(1001+i), c.ID)
		assert.NotEqual(t, 2, c.Page, "blank page must not produce chunks")
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, 3, last.Page)
	assert.Equal(t, 0, last.Index)
	assert.Equal(t, "Only page three.", last.Text)
	assert.Equal(t, last.ID, a.LastID())
}

func TestConvertContinuesCounterAcrossCalls(t *testing.T) {
	a, err := NewAssembler(testConfig(), WithSeed(0))
	require.NoError(t, err)

	first, err := a.Convert(context.Background(), Pages{{Text: "One page."}})
	require.NoError(t, err)
	second, err := a.Convert(context.Background(), Pages{{Text: "Another page."}})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, int64(1), first[0].ID)
	assert.Equal(t, int64(2), second[0].ID)
}

func TestConvertFailsFast(t *testing.T) {
	src := failingSource{
		pages:  Pages{{Text: "Fine page."}, {Text: "Never read."}, {Text: "Never read."}},
		failAt: 2,
	}
	a, err := NewAssembler(testConfig(), WithSeed(0))
	require.NoError(t, err)

	chunks, err := a.Convert(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "page 2")
	assert.Nil(t, chunks)
}

func TestConvertHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, err := NewAssembler(testConfig(), WithSeed(0))
	require.NoError(t, err)

	_, err = a.Convert(ctx, Pages{{Text: "Text."}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageEnrichesLinks(t *testing.T) {
	rect := links.Rect{X0: 0, Y0: 0, X1: 100, Y1: 20}
	page := Page{
		Number: 4,
		Text:   "Read the manual first. Then open the setup guide online. Finally run it.",
		RawLinks: []links.RawLink{
			{Kind: links.RawURI, URI: "https://example.com/guide", Rect: rect},
			{Kind: links.RawGoTo, DestPage: 0, Rect: links.Rect{X0: 0, Y0: 30, X1: 50, Y1: 40}},
		},
		Lookup: links.TextLookupFunc(func(r links.Rect) string {
			if r == rect {
				return "setup guide"
			}
			return "manual"
		}),
	}
	cfg := chunker.Config{MinChunkSize: 10, MaxChunkSize: 1000, MinSentencesPerChunk: 2, OverlapSentences: 1}
	a, err := NewAssembler(cfg, WithSeed(41))
	require.NoError(t, err)

	chunks := a.Page(page)
	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, int64(42), c.ID)
	assert.Equal(t, 4, c.Page)
	assert.Equal(t, "Read the manual[link:page_1] first. Then open the setup guide[link:https://example.com/guide] online. Finally run it.", c.Text)
	assert.Len(t, c.Links, 2)
}

func TestPageMatchesLigatureAnchors(t *testing.T) {
	page := Page{
		Number:   1,
		Text:     "Open the \ufb01le now. Then go home.",
		RawLinks: []links.RawLink{{Kind: links.RawURI, URI: "https://example.com/file"}},
		Lookup:   links.TextLookupFunc(func(links.Rect) string { return "the \ufb01le" }),
	}
	cfg := chunker.Config{MinChunkSize: 10, MaxChunkSize: 1000, MinSentencesPerChunk: 2, OverlapSentences: 1}
	a, err := NewAssembler(cfg, WithSeed(0))
	require.NoError(t, err)

	chunks := a.Page(page)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Open the file[link:https://example.com/file] now. Then go home.", chunks[0].Text)
	require.Len(t, chunks[0].Links, 1)
	assert.Equal(t, "the file", chunks[0].Links[0].Text)
}

func TestPageNormalizesText(t *testing.T) {
	whole := chunker.SegmenterFunc(func(text string) []string { return []string{text} })
	a, err := NewAssembler(testConfig(), WithSeed(0), WithSegmenter(whole))
	require.NoError(t, err)

	chunks := a.Page(Page{Number: 1, Text: "  x\u200by \n\n z  "})
	require.Len(t, chunks, 1)
	assert.Equal(t, "xy z", chunks[0].Text)
}

func TestPagesOutOfRange(t *testing.T) {
	_, err := Pages{{Text: "x"}}.Page(context.Background(), 2)
	assert.Error(t, err)
}
