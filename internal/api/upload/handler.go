package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/database"
	"pdf2tsv/internal/database/model"
	services "pdf2tsv/internal/services/ingest"
	"pdf2tsv/pkg/apperror"
	"pdf2tsv/pkg/apperror/status"
	s3client "pdf2tsv/pkg/s3"

	"github.com/gofiber/fiber/v3"
)

const (
	localDocumentDir = "storage/documents"
	s3DocumentPrefix = "documents"
)

type uploadResponse struct {
	DocID     int64 `json:"doc_id"`
	Duplicate bool  `json:"duplicate"`
}

func HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	fh, err := c.FormFile("file")
	if err != nil || fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.FileUploadMissingParams, "file is required")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return apperror.BadRequest(config.ModuleUpload, c, status.FileUploadInvalidRequestBody, "file must be a .pdf")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.FileUploadMissingParams, "cannot open file")
	}
	defer file.Close()

	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	userID, err := EnsureDefaultUser(db)
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	// Buffer to a temp file while hashing; the name depends on the hash.
	tmp, shaHex, err := spool(file)
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.New(status.FileUploadStoreFailed, err))
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if existing, err := FindBySha256(db, shaHex); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	} else if existing != nil {
		return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
			Code:       status.OK,
			Message:    "File already uploaded",
			TrackingID: trackingID,
			Data:       uploadResponse{DocID: existing.ID, Duplicate: true},
		})
	}

	name := storedName(shaHex, fh)
	var storedPath string
	if strings.TrimSpace(config.Cfg.S3.Bucket) != "" {
		storedPath, err = s3client.Put(c.Context(), path.Join(s3DocumentPrefix, name), tmp, "application/pdf")
	} else {
		storedPath, err = storeToLocal(tmp, name)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.New(status.FileUploadStoreFailed, err))
	}

	original := fh.Filename
	now := time.Now()
	doc := model.Document{
		UserID:           userID,
		OriginalFilename: &original,
		FilePath:         &storedPath,
		Sha256:           &shaHex,
		Status:           services.StatusUploaded,
		UploadedAt:       &now,
	}
	if err := database.CreateEntity(c.Context(), &doc); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "File uploaded successfully",
		TrackingID: trackingID,
		Data:       uploadResponse{DocID: doc.ID},
	})
}

// spool copies r into a temp file, rewound to the start, and returns the hex sha256 of its bytes.
func spool(r io.Reader) (*os.File, string, error) {
	tmp, err := os.CreateTemp("", "upload-*.tmp")
	if err != nil {
		return nil, "", fmt.Errorf("tempfile: %w", err)
	}
	var hasher hash.Hash = sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), r); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, "", fmt.Errorf("stream copy: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, "", fmt.Errorf("seek: %w", err)
	}
	return tmp, hex.EncodeToString(hasher.Sum(nil)), nil
}

func storedName(shaHex string, fh *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	return shaHex + ext
}

func storeToLocal(r io.Reader, name string) (string, error) {
	if err := os.MkdirAll(localDocumentDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(localDocumentDir, "upload-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()
	if _, err := io.Copy(tmpFile, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	finalPath := filepath.Join(localDocumentDir, name)
	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return finalPath, nil
}
