package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/core/links"
)

func glyphs(x, y, step float64, s string) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for i, r := range s {
		out = append(out, pdf.Text{X: x + float64(i)*step, Y: y, W: step, S: string(r)})
	}
	return out
}

func TestTextInRect(t *testing.T) {
	page := append(glyphs(10, 700, 5, "Intro "), glyphs(40, 700, 5, "click here")...)
	page = append(page, glyphs(10, 680, 5, "next line")...)

	rect := links.Rect{X0: 39, Y0: 695, X1: 95, Y1: 710}
	assert.Equal(t, "click here", textInRect(page, rect))
	assert.Equal(t, "", textInRect(page, links.Rect{X0: 500, Y0: 500, X1: 510, Y1: 510}))
}

func TestTextInRectCollapsesWhitespace(t *testing.T) {
	page := glyphs(0, 0, 1, "  a   b  ")
	assert.Equal(t, "a b", textInRect(page, links.Rect{X0: 0, Y0: -1, X1: 100, Y1: 1}))
}

func TestNewPDFSourceRejectsGarbage(t *testing.T) {
	data := []byte("definitely not a pdf")
	_, err := NewPDFSource(bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrExtraction)
}

func TestOpenPDFMissingFile(t *testing.T) {
	_, err := OpenPDF(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, document.ErrExtraction)
}

func TestFetchToLocalTempCopiesLocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 body"), 0o644))

	path, cleanup, err := FetchToLocalTemp(context.Background(), src)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchToLocalTempMissingFile(t *testing.T) {
	_, cleanup, err := FetchToLocalTemp(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
	cleanup()
}

func TestPDFSourceReadsPagesAndLinks(t *testing.T) {
	data := buildTestPDF(
		[]string{"Hello world. Read |the guide| today.", "Second page text."},
		[]string{"https://example.com/guide", ""},
	)
	src, err := NewPDFSource(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, 2, src.PageCount())

	first, err := src.Page(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Number)
	assert.Contains(t, first.Text, "Hello world")
	require.Len(t, first.RawLinks, 1)
	assert.Equal(t, links.RawURI, first.RawLinks[0].Kind)
	assert.Equal(t, "https://example.com/guide", first.RawLinks[0].URI)
	assert.Equal(t, links.Rect{X0: 70, Y0: 687, X1: 400, Y1: 700}, first.RawLinks[0].Rect)
	require.NotNil(t, first.Lookup)
	assert.Equal(t, "the guide", first.Lookup.TextInRect(first.RawLinks[0].Rect))

	second, err := src.Page(context.Background(), 2)
	require.NoError(t, err)
	assert.Contains(t, second.Text, "Second page")
	assert.Empty(t, second.RawLinks)
	assert.Nil(t, second.Lookup)
}

func TestPDFSourceFeedsAssembler(t *testing.T) {
	data := buildTestPDF(
		[]string{"Hello world. Read |the guide| today.", "Second page text."},
		[]string{"https://example.com/guide", ""},
	)
	src, err := NewPDFSource(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	cfg := chunker.Config{MinChunkSize: 10, MaxChunkSize: 1000, MinSentencesPerChunk: 2, OverlapSentences: 1}
	a, err := document.NewAssembler(cfg, document.WithSeed(0))
	require.NoError(t, err)
	chunks, err := a.Convert(context.Background(), src)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	first := chunks[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 1, first.Page)
	assert.Contains(t, first.Text, "Hello world.")
	assert.Contains(t, first.Text, "the guide[link:https://example.com/guide]")
	require.Len(t, first.Links, 1)
	assert.Equal(t, links.Record{Kind: links.KindExternal, Target: "https://example.com/guide", Text: "the guide", Page: 1}, first.Links[0])
}

func TestPDFSourceHonorsCancellation(t *testing.T) {
	data := buildTestPDF([]string{"Text."}, nil)
	src, err := NewPDFSource(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Page(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
