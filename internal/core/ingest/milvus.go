package ingest

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"pdf2tsv/config"
	"pdf2tsv/pkg/logger"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	milvusVectorDim  = 1536
	milvusContentMax = 65535
)

// VectorRow is one chunk ready for the vector store. ID is the chunk ID
// written to the TSV output.
type VectorRow struct {
	ID         int64
	PageIndex  int32
	ChunkIndex int32
	Content    string
	Vector     []float32
}

// ConnectMilvus dials Milvus, retrying while it boots.
func ConnectMilvus(ctx context.Context, attempts int, perAttemptTimeout, delay time.Duration) (milvusclient.Client, error) {
	address := config.Cfg.Milvus.Address
	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttemptTimeout)
		cli, err := milvusclient.NewClient(attemptCtx, milvusclient.Config{Address: address})
		cancel()
		if err == nil {
			return cli, nil
		}
		lastErr = err
		logger.Warn("%v: connect attempt %d/%d to %s failed: %v", config.ModuleMilvus, i+1, attempts, address, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%v: connect %s: %w", config.ModuleMilvus, address, lastErr)
}

// UpsertMilvusVectors ensures the collection and index exist, drops earlier
// vectors of docID and inserts rows. Returns the collection name.
func UpsertMilvusVectors(ctx context.Context, docID int64, rows []VectorRow) (string, error) {
	collection := config.Cfg.Milvus.Collection
	if len(rows) == 0 {
		return collection, nil
	}
	cli, err := ConnectMilvus(ctx, 3, 5*time.Second, time.Second)
	if err != nil {
		return "", err
	}
	defer cli.Close()

	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := createChunksCollection(ctx, cli, collection); err != nil {
			return "", err
		}
	} else if err := cli.Delete(ctx, collection, "", fmt.Sprintf("doc_id == %d", docID)); err != nil {
		return "", err
	}

	ids := make([]int64, len(rows))
	docIDs := make([]int64, len(rows))
	pageIdxs := make([]int32, len(rows))
	chunkIdxs := make([]int32, len(rows))
	contents := make([]string, len(rows))
	vectors := make([][]float32, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		docIDs[i] = docID
		pageIdxs[i] = r.PageIndex
		chunkIdxs[i] = r.ChunkIndex
		contents[i] = truncateBytes(r.Content, milvusContentMax)
		vectors[i] = r.Vector
	}

	if _, err := cli.Insert(ctx, collection, "",
		milvusentity.NewColumnInt64("id", ids),
		milvusentity.NewColumnInt64("doc_id", docIDs),
		milvusentity.NewColumnInt32("page_index", pageIdxs),
		milvusentity.NewColumnInt32("chunk_index", chunkIdxs),
		milvusentity.NewColumnVarChar("content", contents),
		milvusentity.NewColumnFloatVector("embedding", milvusVectorDim, vectors),
	); err != nil {
		return "", err
	}
	if err := cli.Flush(ctx, collection, false); err != nil {
		return "", err
	}
	logger.Info("%v: inserted %d vectors for document %d into %s", config.ModuleMilvus, len(rows), docID, collection)
	return collection, nil
}

func createChunksCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	schema := milvusentity.NewSchema().WithName(collection).WithDescription("pdf chunks")
	// Primary key is the chunk ID; AutoID stays off.
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("doc_id").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("page_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("content").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(milvusContentMax))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(milvusVectorDim))

	if err := cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	hnsw := config.Cfg.Milvus.IndexHNSWConfig
	idx, err := milvusentity.NewIndexHNSW(milvusentity.MetricType(hnsw.MetricType), hnsw.M, hnsw.EfConstruction)
	if err != nil {
		return err
	}
	if err := cli.CreateIndex(ctx, collection, "embedding", idx, false); err != nil {
		return err
	}
	logger.Info("%v: created collection %s with HNSW index", config.ModuleMilvus, collection)
	return nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
