package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/core/links"
)

func withConfig(t *testing.T) {
	saved := config.Cfg
	t.Cleanup(func() { config.Cfg = saved })
}

func TestChunkingConfig(t *testing.T) {
	withConfig(t)
	config.Cfg.Chunking.MinChunkSize = 50
	config.Cfg.Chunking.MaxChunkSize = 500
	config.Cfg.Chunking.MinSentencesPerChunk = 3
	config.Cfg.Chunking.OverlapSentences = 2

	cfg := ChunkingConfig()
	assert.Equal(t, 50, cfg.MinChunkSize)
	assert.Equal(t, 500, cfg.MaxChunkSize)
	assert.Equal(t, 3, cfg.MinSentencesPerChunk)
	assert.Equal(t, 2, cfg.OverlapSentences)

	_, err := NewAssembler(document.WithSeed(0))
	assert.NoError(t, err)
}

func TestNewAssemblerRejectsBadConfig(t *testing.T) {
	withConfig(t)
	config.Cfg.Chunking.OverlapSentences = config.Cfg.Chunking.MinSentencesPerChunk
	_, err := NewAssembler()
	assert.Error(t, err)
}

func TestChunkRows(t *testing.T) {
	chunks := []document.Chunk{
		{ID: 11, Page: 1, Index: 0, Text: "Plain chunk."},
		{ID: 12, Page: 2, Index: 0, Text: "See docs[link:https://x.com].", Links: []links.Record{
			{Kind: links.KindExternal, Target: "https://x.com", Text: "docs", Page: 2},
		}},
	}
	rows, err := chunkRows(9, chunks, "chunks")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(11), rows[0].ID)
	assert.Equal(t, int64(9), rows[0].DocumentID)
	assert.Nil(t, rows[0].Links)
	assert.Len(t, rows[0].ContentHash, 64)
	assert.Equal(t, "chunks", rows[0].MilvusCollection)

	assert.Equal(t, int32(2), rows[1].PageIndex)
	require.NotNil(t, rows[1].Links)
	assert.JSONEq(t, `[{"kind":"external","target":"https://x.com","text":"docs","page":2}]`, *rows[1].Links)
}

func TestBuildContentPreview(t *testing.T) {
	assert.Equal(t, "abc", buildContentPreview("\ufeffabc", 10))
	assert.Equal(t, "ab", buildContentPreview("a\x00bcdef", 2))
	assert.Equal(t, "héllo", buildContentPreview("héllo wörld", 5))
}

func TestStoreArtifactLocal(t *testing.T) {
	withConfig(t)
	config.Cfg.S3.Bucket = ""
	config.Cfg.Ingest.ArtifactPrefix = "outputs"
	t.Chdir(t.TempDir())

	loc, err := storeArtifact(context.Background(), 42, []document.Chunk{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("storage", "outputs", "42.tsv"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "1\ta\n2\tb\n", string(data))
	assert.True(t, strings.HasSuffix(loc, artifactName(42)))
}
