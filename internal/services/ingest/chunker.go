package ingest

import (
	"pdf2tsv/config"
	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/internal/core/document"
)

// ChunkingConfig maps the chunking section of the loaded configuration.
func ChunkingConfig() chunker.Config {
	c := config.Cfg.Chunking
	return chunker.Config{
		MinChunkSize:         c.MinChunkSize,
		MaxChunkSize:         c.MaxChunkSize,
		MinSentencesPerChunk: c.MinSentencesPerChunk,
		OverlapSentences:     c.OverlapSentences,
	}
}

// NewAssembler builds a document assembler from the loaded configuration.
func NewAssembler(opts ...document.Option) (*document.Assembler, error) {
	return document.NewAssembler(ChunkingConfig(), opts...)
}
