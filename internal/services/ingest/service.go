package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdf2tsv/config"
	coreingest "pdf2tsv/internal/core/ingest"
	"pdf2tsv/internal/database"
	"pdf2tsv/pkg/logger"

	"gorm.io/gorm"
)

// ErrDocumentNotFound is returned for an unknown document ID.
var ErrDocumentNotFound = errors.New("document not found")

const ingestTimeout = 10 * time.Minute

// RunIngestion runs Ingest in the background style of the HTTP handlers:
// failures are logged, never returned.
func RunIngestion(docID int64, force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()
	if err := Ingest(ctx, docID, force); err != nil {
		logger.Error(err, "%v: document %d failed", config.ModuleIngest, docID)
	}
}

// Ingest converts the stored PDF of docID into chunks, stores the TSV
// artifact, indexes embeddings in Milvus and persists chunk rows. Documents
// that already have chunks are skipped unless force is set.
func Ingest(ctx context.Context, docID int64, force bool) error {
	db, err := database.GetDB()
	if err != nil {
		return fmt.Errorf("db unavailable: %w", err)
	}

	doc, err := GetDocumentByID(db.WithContext(ctx), docID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", ErrDocumentNotFound, docID)
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if doc.FilePath == nil || *doc.FilePath == "" {
		return fmt.Errorf("document %d has no stored file", docID)
	}
	log := logger.WithFields(map[string]interface{}{
		"module":    config.ModuleIngest,
		"doc_id":    docID,
		"file_path": *doc.FilePath,
	})
	log.Info("ingest: start")

	// Idempotency
	exists, err := HasChunks(db.WithContext(ctx), docID)
	if err != nil {
		return fmt.Errorf("check chunks: %w", err)
	}
	if exists && !force {
		log.Info("ingest: chunks already exist; skip (no force)")
		return nil
	}

	if err := UpdateDocumentStatus(ctx, docID, StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if err := process(ctx, docID, *doc.FilePath); err != nil {
		// ctx may be the reason for the failure
		if markErr := MarkFailed(context.WithoutCancel(ctx), docID, err); markErr != nil {
			log.WithError(markErr).Warn("ingest: mark failed")
		}
		return err
	}
	log.Info("ingest: done")
	return nil
}

func process(ctx context.Context, docID int64, filePath string) error {
	tmpPath, cleanup, err := coreingest.FetchToLocalTemp(ctx, filePath)
	if err != nil {
		return fmt.Errorf("fetch file: %w", err)
	}
	defer cleanup()

	src, err := coreingest.OpenPDF(tmpPath)
	if err != nil {
		return err
	}
	defer src.Close()

	assembler, err := NewAssembler()
	if err != nil {
		return err
	}
	chunks, err := assembler.Convert(ctx, src)
	if err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  src.PageCount(),
		"chunks": len(chunks),
	}).Info("ingest: chunks built")

	tsvPath, err := storeArtifact(ctx, docID, chunks)
	if err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		inputs = append(inputs, ch.Text)
	}
	vectors, err := coreingest.EmbedOpenAI(ctx, inputs)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	vectorRows := make([]coreingest.VectorRow, len(chunks))
	for i, ch := range chunks {
		vectorRows[i] = coreingest.VectorRow{
			ID:         ch.ID,
			PageIndex:  int32(ch.Page),
			ChunkIndex: int32(ch.Index),
			Content:    ch.Text,
			Vector:     vectors[i],
		}
	}
	collection, err := coreingest.UpsertMilvusVectors(ctx, docID, vectorRows)
	if err != nil {
		return fmt.Errorf("milvus upsert: %w", err)
	}

	rows, err := chunkRows(docID, chunks, collection)
	if err != nil {
		return err
	}
	if err := SaveResult(ctx, docID, rows, src.PageCount(), tsvPath); err != nil {
		return fmt.Errorf("db insert chunks: %w", err)
	}
	return nil
}
