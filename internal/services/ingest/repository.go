package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"

	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/database"
	"pdf2tsv/internal/database/model"

	"gorm.io/gorm"
)

const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

const previewRunes = 512

func GetDocumentByID(db *gorm.DB, docID int64) (*model.Document, error) {
	var doc model.Document
	if err := db.First(&doc, docID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func HasChunks(db *gorm.DB, docID int64) (bool, error) {
	var count int64
	if err := db.Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func DeleteChunksByDocID(db *gorm.DB, docID int64) error {
	return db.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error
}

func UpdateDocumentStatus(ctx context.Context, docID int64, status string) error {
	return database.UpdateEntityByID[model.Document](ctx, docID, map[string]interface{}{"status": status})
}

// MarkFailed records the failure reason alongside the failed status.
func MarkFailed(ctx context.Context, docID int64, cause error) error {
	return database.UpdateEntityByID[model.Document](ctx, docID, map[string]interface{}{
		"status":     StatusFailed,
		"last_error": cause.Error(),
	})
}

// SaveResult replaces the chunk rows of docID and marks it ready, atomically.
func SaveResult(ctx context.Context, docID int64, rows []model.Chunk, pages int, tsvPath string) error {
	return database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := DeleteChunksByDocID(tx, docID); err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 500).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Document{}).Where("id = ?", docID).Updates(map[string]interface{}{
			"status":      StatusReady,
			"page_count":  pages,
			"chunk_count": len(rows),
			"tsv_path":    tsvPath,
			"last_error":  nil,
		}).Error
	})
}

// chunkRows converts assembled chunks into rows for the chunks table.
func chunkRows(docID int64, chunks []document.Chunk, collection string) ([]model.Chunk, error) {
	rows := make([]model.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		preview := buildContentPreview(ch.Text, previewRunes)
		h := sha256.Sum256([]byte(ch.Text))
		var links *string
		if len(ch.Links) > 0 {
			raw, err := json.Marshal(ch.Links)
			if err != nil {
				return nil, err
			}
			s := string(raw)
			links = &s
		}
		rows = append(rows, model.Chunk{
			ID:               ch.ID,
			DocumentID:       docID,
			PageIndex:        int32(ch.Page),
			ChunkIndex:       int32(ch.Index),
			Content:          ch.Text,
			ContentPreview:   &preview,
			Links:            links,
			MilvusCollection: collection,
			ContentHash:      hex.EncodeToString(h[:]),
		})
	}
	return rows, nil
}

// buildContentPreview sanitizes the preview to valid UTF-8 printable characters
// and truncates by runes to avoid splitting multi-byte sequences.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(min(len(s), maxRunes*4))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep common whitespace
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
