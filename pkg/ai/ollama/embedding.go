package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/hexmerlin/kgseed/pkg/ai"
)

const embedTimeout = 5 * time.Minute

// GenerateEmbeddings embeds a batch of texts in a single request against the
// configured embedding model. One vector is returned per input, in input
// order. Inputs longer than the configured token budget are truncated first.
func (c *EmbedClient) GenerateEmbeddings(
	ctx context.Context,
	inputs []string,
) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	batch := make([]string, len(inputs))
	for i, in := range inputs {
		text := strings.TrimSpace(in)
		if c.maxTokens > 0 {
			truncated, err := truncateToTokens(text, c.maxTokens)
			if err != nil {
				return nil, err
			}
			text = truncated
		}
		batch[i] = text
	}

	rCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: batch,
	}
	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}
	if len(res.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d want %d", len(res.Embeddings), len(inputs))
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	out := make([][]float32, len(res.Embeddings))
	for i, vec := range res.Embeddings {
		converted := make([]float32, len(vec))
		for j, v := range vec {
			converted[j] = float32(v)
		}
		out[i] = converted
	}
	return out, nil
}
