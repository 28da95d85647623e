package main

import (
	"os"
	"path/filepath"
	"testing"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.tsv"},
		{"/data/Annual.PDF", "/data/Annual.tsv"},
		{"s3://bucket/docs/guide.pdf", "guide.tsv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultOutput(tt.in), tt.in)
	}
}

func TestRunRejectsNonPDFInput(t *testing.T) {
	err := newApp().Run([]string{"pdf2tsv", "notes.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a .pdf")
}

func TestRunRejectsMissingInput(t *testing.T) {
	err := newApp().Run([]string{"pdf2tsv"})
	assert.Error(t, err)
}

func TestRunRejectsInvalidChunking(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.tsv")
	err := newApp().Run([]string{"pdf2tsv",
		"--config", filepath.Join(dir, "none.yaml"),
		"--min-sentences", "1", "--overlap", "1",
		"--out", out,
		filepath.Join(dir, "in.pdf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OverlapSentences")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunFlagsRepairFileChunking(t *testing.T) {
	t.Cleanup(func() { config.Cfg = config.Default() })
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("chunking:\n  min_sentences_per_chunk: 2\n  overlap_sentences: 5\n"), 0o644))
	in := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(in, []byte("not a pdf"), 0o644))

	err := newApp().Run([]string{"pdf2tsv", "--config", cfgPath, "--overlap", "1", in})
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrExtraction)
	assert.NotContains(t, err.Error(), "validation")
	assert.Equal(t, 1, config.Cfg.Chunking.OverlapSentences)

	err = newApp().Run([]string{"pdf2tsv", "--config", cfgPath, in})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OverlapSentences")
}

func TestRunFailsOnUnreadablePDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(in, []byte("not a pdf"), 0o644))

	err := newApp().Run([]string{"pdf2tsv", "--config", filepath.Join(dir, "none.yaml"), in})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "broken.tsv"))
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}
