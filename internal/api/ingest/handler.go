package ingest

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/database"
	"pdf2tsv/internal/database/model"
	services "pdf2tsv/internal/services/ingest"
	"pdf2tsv/pkg/apperror"
	"pdf2tsv/pkg/apperror/status"
	s3client "pdf2tsv/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"
)

const presignTTL = 15 * time.Minute

type ingestResponse struct {
	DocID int64 `json:"doc_id"`
}

type statusResponse struct {
	DocID      int64   `json:"doc_id"`
	Status     string  `json:"status"`
	PageCount  *int32  `json:"page_count,omitempty"`
	ChunkCount *int32  `json:"chunk_count,omitempty"`
	TsvURL     string  `json:"tsv_url,omitempty"`
	LastError  *string `json:"last_error,omitempty"`
}

func parseDocID(c fiber.Ctx) (int64, bool) {
	docID, err := strconv.ParseInt(c.Params("docID"), 10, 64)
	return docID, err == nil && docID > 0
}

func HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	docID, ok := parseDocID(c)
	if !ok {
		return apperror.BadRequest(config.ModuleIngest, c, status.IngestInvalidDocID, "invalid docID")
	}

	q := c.Query("force")
	force := q == "1" || q == "true" || q == "yes"

	// Fire and forget
	go services.RunIngestion(docID, force)

	return apperror.Accepted(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.Accepted,
		Message:    "ingest started",
		TrackingID: trackingID,
		Data:       ingestResponse{DocID: docID},
	})
}

// HandleStatus reports the ingestion state of a document and where its TSV lives.
func HandleStatus(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	docID, ok := parseDocID(c)
	if !ok {
		return apperror.BadRequest(config.ModuleIngest, c, status.IngestInvalidDocID, "invalid docID")
	}
	doc, err := database.GetEntityByID[model.Document](c.Context(), docID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(config.ModuleIngest, c, status.IngestDocumentNotFound, "document not found")
	}
	if err != nil {
		return apperror.InternalError(config.ModuleIngest, c, err)
	}

	resp := statusResponse{
		DocID:      doc.ID,
		Status:     doc.Status,
		PageCount:  doc.PageCount,
		ChunkCount: doc.ChunkCount,
		LastError:  doc.LastError,
	}
	if doc.TsvPath != nil {
		resp.TsvURL = *doc.TsvPath
		if strings.HasPrefix(*doc.TsvPath, "s3://") {
			if signed, err := presign(c, *doc.TsvPath); err == nil {
				resp.TsvURL = signed
			}
		}
	}
	return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ok",
		TrackingID: trackingID,
		Data:       resp,
	})
}

func presign(c fiber.Ctx, location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	cli, err := s3client.GetPresignClient()
	if err != nil {
		return "", err
	}
	req, err := cli.PresignGetObject(c.Context(), &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
