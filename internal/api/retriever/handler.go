package retriever

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/retriever"
	"pdf2tsv/pkg/apperror"
	"pdf2tsv/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

const maxTopK = 64

type searchResponse struct {
	Hits []retriever.Hit `json:"hits"`
}

func HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return apperror.BadRequest(config.ModuleRetriever, c, status.RetrieverInvalidQuery, "q is required")
	}
	topK := parseTopK(c.Query("top_k"))
	docIDs := parseDocIDs(c.Query("doc_ids"))
	pages := parsePages(c.Query("pages"))

	// Embed with a longer timeout (network call), e.g., 3s
	embedCtx, cancelEmbed := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancelEmbed()
	vec, err := retriever.EmbedQuestion(embedCtx, q)
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, status.New(status.RetrieverSearchFailed, err))
	}
	// Search with slightly higher timeout to account for initial collection load (1s)
	searchCtx, cancelSearch := context.WithTimeout(c.Context(), 1*time.Second)
	defer cancelSearch()
	hits, err := retriever.SearchMilvus(searchCtx, vec, topK, retriever.Filters{DocIDs: docIDs, Pages: pages})
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, status.New(status.RetrieverSearchFailed, err))
	}

	return apperror.Success(config.ModuleRetriever, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       searchResponse{Hits: hits},
	})
}

// parseTopK accepts 1..maxTopK and falls back to the default otherwise.
func parseTopK(raw string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 && v <= maxTopK {
		return v
	}
	return retriever.DefaultTopK
}

// parseDocIDs reads a comma separated id list, skipping malformed entries.
func parseDocIDs(raw string) []int64 {
	var ids []int64
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// parsePages reads a comma separated list of 1-based page numbers.
func parsePages(raw string) []int32 {
	var pages []int32
	for _, id := range parseDocIDs(raw) {
		if id > 0 && id <= math.MaxInt32 {
			pages = append(pages, int32(id))
		}
	}
	return pages
}
