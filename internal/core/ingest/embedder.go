package ingest

import (
	"context"
	"errors"

	"pdf2tsv/config"
	"pdf2tsv/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrMissingKey is returned when no OpenAI key is configured.
var ErrMissingKey = errors.New("missing openai key")

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// EmbedOpenAI embeds inputs in batches of config.Cfg.Ingest.EmbedBatchSize and
// returns one vector per input, in input order.
func EmbedOpenAI(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	key := config.Cfg.OpenAI.Key
	if key == "" {
		return nil, ErrMissingKey
	}
	model := config.Cfg.OpenAI.EmbeddingModel
	client := openai.NewClient(
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	)

	var all [][]float32
	for _, b := range batches(len(inputs), config.Cfg.Ingest.EmbedBatchSize) {
		batch := inputs[b[0]:b[1]]
		fields := map[string]interface{}{
			"model":       model,
			"batch_start": b[0],
			"batch_end":   b[1],
		}
		logger.WithFields(fields).Info("openai: embedding batch start")

		vectors, err := embedBatch(ctx, client, model, batch)
		if err != nil {
			logger.WithFields(fields).WithError(err).Error("openai: embedding batch failed")
			return nil, err
		}
		logger.WithFields(fields).WithField("vectors", len(vectors)).Info("openai: embedding batch done")
		all = append(all, vectors...)
	}
	return all, nil
}

// batches splits n items into [start, end) windows of at most size.
func batches(n, size int) [][2]int {
	if size <= 0 {
		size = 100
	}
	var out [][2]int
	for i := 0; i < n; i += size {
		out = append(out, [2]int{i, min(i+size, n)})
	}
	return out
}

func embedBatch(ctx context.Context, client openai.Client, model string, batch []string) ([][]float32, error) {
	reqBody := openAIEmbeddingRequest{Model: model, Input: batch}
	var out openAIEmbeddingResponse
	if err := client.Post(ctx, "/embeddings", reqBody, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	if len(out.Data) != len(batch) {
		return nil, errors.New("openai: embedding count mismatch")
	}
	vectors := make([][]float32, len(out.Data))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, errors.New("openai: embedding index out of range")
		}
		vec := make([]float32, len(d.Embedding))
		for k, f := range d.Embedding {
			vec[k] = float32(f)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}
