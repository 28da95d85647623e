package convert

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/chunker"
	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/core/ingest"
	services "pdf2tsv/internal/services/ingest"
	"pdf2tsv/pkg/apperror"
	"pdf2tsv/pkg/apperror/status"
	"pdf2tsv/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

const tsvContentType = "text/tab-separated-values; charset=utf-8"

// convertQuery holds optional per-request overrides of the chunking config.
type convertQuery struct {
	MinChunkSize         *int   `query:"min_chunk_size"`
	MaxChunkSize         *int   `query:"max_chunk_size"`
	MinSentencesPerChunk *int   `query:"min_sentences"`
	OverlapSentences     *int   `query:"overlap"`
	Seed                 *int64 `query:"seed"`
}

func (q convertQuery) apply(cfg chunker.Config) chunker.Config {
	if q.MinChunkSize != nil {
		cfg.MinChunkSize = *q.MinChunkSize
	}
	if q.MaxChunkSize != nil {
		cfg.MaxChunkSize = *q.MaxChunkSize
	}
	if q.MinSentencesPerChunk != nil {
		cfg.MinSentencesPerChunk = *q.MinSentencesPerChunk
	}
	if q.OverlapSentences != nil {
		cfg.OverlapSentences = *q.OverlapSentences
	}
	return cfg
}

// HandleConvert turns an uploaded PDF into TSV chunks in the response body.
func HandleConvert(c fiber.Ctx) error {
	var q convertQuery
	if err := c.Bind().Query(&q); err != nil {
		return apperror.BadRequest(config.ModuleConvert, c, status.ConvertInvalidParams, "invalid query parameters")
	}
	var opts []document.Option
	if q.Seed != nil {
		opts = append(opts, document.WithSeed(*q.Seed))
	}
	assembler, err := document.NewAssembler(q.apply(services.ChunkingConfig()), opts...)
	if err != nil {
		return apperror.BadRequest(config.ModuleConvert, c, status.ConvertInvalidParams, err.Error())
	}

	fh, err := c.FormFile("file")
	if err != nil || fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleConvert, c, status.ConvertMissingFile, "file is required")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return apperror.BadRequest(config.ModuleConvert, c, status.ConvertInvalidParams, "file must be a .pdf")
	}
	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleConvert, c, status.ConvertMissingFile, "cannot open file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperror.InternalError(config.ModuleConvert, c, status.New(status.ConvertFailed, err))
	}
	src, err := ingest.NewPDFSource(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return apperror.UnprocessableEntity(config.ModuleConvert, c, status.ConvertUnreadablePDF, err)
	}

	chunks, err := assembler.Convert(c.Context(), src)
	if errors.Is(err, document.ErrExtraction) {
		return apperror.UnprocessableEntity(config.ModuleConvert, c, status.ConvertUnreadablePDF, err)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleConvert, c, status.New(status.ConvertFailed, err))
	}

	var out bytes.Buffer
	if err := document.WriteTSV(&out, chunks); err != nil {
		return apperror.InternalError(config.ModuleConvert, c, status.New(status.ConvertFailed, err))
	}
	logger.WithFields(map[string]interface{}{
		"module":   config.ModuleConvert,
		"filename": fh.Filename,
		"pages":    src.PageCount(),
		"chunks":   len(chunks),
	}).Info("convert: done")

	c.Set(fiber.HeaderContentType, tsvContentType)
	return c.Status(fiber.StatusOK).Send(out.Bytes())
}

