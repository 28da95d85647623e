package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/document"
	s3client "pdf2tsv/pkg/s3"
)

const (
	localArtifactDir = "storage"
	tsvContentType   = "text/tab-separated-values"
)

func artifactName(docID int64) string {
	return fmt.Sprintf("%d.tsv", docID)
}

// storeArtifact writes the TSV rendition of chunks to S3 when a bucket is
// configured, otherwise under storage/<artifact_prefix>/. Returns its location.
func storeArtifact(ctx context.Context, docID int64, chunks []document.Chunk) (string, error) {
	prefix := strings.Trim(config.Cfg.Ingest.ArtifactPrefix, "/")
	if strings.TrimSpace(config.Cfg.S3.Bucket) != "" {
		var buf bytes.Buffer
		if err := document.WriteTSV(&buf, chunks); err != nil {
			return "", err
		}
		return s3client.Put(ctx, path.Join(prefix, artifactName(docID)), &buf, tsvContentType)
	}

	dir := filepath.Join(localArtifactDir, filepath.FromSlash(prefix))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	dst := filepath.Join(dir, artifactName(docID))
	if err := document.WriteTSVFile(dst, chunks); err != nil {
		return "", err
	}
	return dst, nil
}
