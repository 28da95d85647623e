package retriever

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/ingest"
	"pdf2tsv/pkg/logger"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// DefaultTopK is used when the caller asks for no particular number of hits.
const DefaultTopK = 8

const defaultSearchTimeout = 200 * time.Millisecond

// Chunk collection columns returned with every hit.
const (
	fieldDocID      = "doc_id"
	fieldPageIndex  = "page_index"
	fieldChunkIndex = "chunk_index"
	fieldContent    = "content"
	fieldEmbedding  = "embedding"
)

var hitFields = []string{fieldDocID, fieldPageIndex, fieldChunkIndex, fieldContent}

// SearchMilvus returns up to topK chunks closest to query, restricted by
// filters. Without a caller deadline the search is capped at 200ms.
func SearchMilvus(ctx context.Context, query []float32, topK int, filters Filters) ([]Hit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(query) == 0 {
		return []Hit{}, nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultSearchTimeout)
		defer cancel()
	}

	cli, err := ingest.ConnectMilvus(ctx, 1, defaultSearchTimeout, 0)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if err := loadCollection(ctx, cli, collection); err != nil {
		return nil, err
	}

	hnsw := config.Cfg.Milvus.IndexHNSWConfig
	param, err := milvusentity.NewIndexHNSWSearchParam(hnsw.SearchEf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := cli.Search(ctx, collection, nil, buildExpr(filters), hitFields,
		[]milvusentity.Vector{milvusentity.FloatVector(query)},
		fieldEmbedding, milvusentity.MetricType(hnsw.MetricType), topK, param)
	if err != nil {
		logger.Error(err, "%v: milvus search failed", config.ModuleRetriever)
		return nil, err
	}
	if len(results) == 0 {
		return []Hit{}, nil
	}
	hits, err := hitsFromResult(results[0])
	if err != nil {
		return nil, err
	}
	logger.Info("%v: milvus search done in %dms, %d hits", config.ModuleRetriever, time.Since(start).Milliseconds(), len(hits))
	return hits, nil
}

func loadCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%v: collection %q not found", config.ModuleRetriever, collection)
	}
	return cli.LoadCollection(ctx, collection, false)
}

// hitsFromResult maps one result set to hits. Unknown columns are ignored;
// a non-int64 primary key is an error.
func hitsFromResult(rs milvusclient.SearchResult) ([]Hit, error) {
	if rs.ResultCount == 0 {
		return []Hit{}, nil
	}
	ids, ok := rs.IDs.(*milvusentity.ColumnInt64)
	if !ok {
		return nil, fmt.Errorf("%v: unexpected id column %T", config.ModuleRetriever, rs.IDs)
	}
	n := rs.ResultCount
	if len(ids.Data()) < n || len(rs.Scores) < n {
		return nil, fmt.Errorf("%v: result count %d exceeds returned rows", config.ModuleRetriever, n)
	}

	hits := make([]Hit, n)
	for i := range hits {
		hits[i].ChunkID = ids.Data()[i]
		hits[i].Score = rs.Scores[i]
	}
	for _, field := range rs.Fields {
		switch col := field.(type) {
		case *milvusentity.ColumnInt64:
			if col.Name() == fieldDocID {
				for i, v := range col.Data()[:min(n, len(col.Data()))] {
					hits[i].DocID = v
				}
			}
		case *milvusentity.ColumnInt32:
			data := col.Data()[:min(n, len(col.Data()))]
			for i, v := range data {
				switch col.Name() {
				case fieldPageIndex:
					hits[i].PageIndex = v
				case fieldChunkIndex:
					hits[i].ChunkIndex = v
				}
			}
		case *milvusentity.ColumnVarChar:
			if col.Name() == fieldContent {
				for i, v := range col.Data()[:min(n, len(col.Data()))] {
					hits[i].Content = v
				}
			}
		}
	}
	return hits, nil
}

// buildExpr renders filters as a Milvus boolean expression, e.g.
// "doc_id in [1,2] && page_index in [3]".
func buildExpr(f Filters) string {
	var terms []string
	if len(f.DocIDs) > 0 {
		vals := make([]string, len(f.DocIDs))
		for i, id := range f.DocIDs {
			vals[i] = strconv.FormatInt(id, 10)
		}
		terms = append(terms, inExpr(fieldDocID, vals))
	}
	if len(f.Pages) > 0 {
		vals := make([]string, len(f.Pages))
		for i, p := range f.Pages {
			vals[i] = strconv.FormatInt(int64(p), 10)
		}
		terms = append(terms, inExpr(fieldPageIndex, vals))
	}
	return strings.Join(terms, " && ")
}

func inExpr(field string, vals []string) string {
	return field + " in [" + strings.Join(vals, ",") + "]"
}
