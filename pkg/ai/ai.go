package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable is returned when the embedding service cannot
	// be reached or refuses the request.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrEmbeddingDimensionMismatch is returned when the service answers
	// with vectors of a different length than the declared dimensionality.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")
)

// EmbeddingClient turns a batch of texts into one vector per text,
// preserving input order.
type EmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// CompletionClient produces a single-turn completion. The retrieval engine
// requires one even for import-only runs.
type CompletionClient interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// ModelMetrics contains accumulated token usage and timing from AI calls.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// EmbeddingCapability wraps an embedding client together with its declared
// vector dimensionality and maximum input size. VerifySelfTest must pass
// before the capability is handed to the bulk loader.
type EmbeddingCapability struct {
	Dimensions int
	MaxTokens  int

	client EmbeddingClient
}

// NewEmbeddingCapability builds a capability around client with the declared
// shape. The capability is not verified until VerifySelfTest is called.
func NewEmbeddingCapability(client EmbeddingClient, dimensions, maxTokens int) *EmbeddingCapability {
	return &EmbeddingCapability{
		Dimensions: dimensions,
		MaxTokens:  maxTokens,
		client:     client,
	}
}

// Embed embeds a batch of texts and checks every returned vector against the
// declared dimensionality.
func (c *EmbeddingCapability) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := c.client.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingDimensionMismatch, len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) != c.Dimensions {
			return nil, fmt.Errorf("%w: vector %d has length %d, declared %d", ErrEmbeddingDimensionMismatch, i, len(vec), c.Dimensions)
		}
	}
	return vectors, nil
}

// VerifySelfTest embeds a single short literal and confirms exactly one
// vector of the declared length comes back. A capability that fails here
// must not be used for a load.
func (c *EmbeddingCapability) VerifySelfTest(ctx context.Context) error {
	vectors, err := c.Embed(ctx, []string{"test"})
	if err != nil {
		return err
	}
	if len(vectors) != 1 {
		return fmt.Errorf("%w: self-test returned %d vectors", ErrEmbeddingDimensionMismatch, len(vectors))
	}
	return nil
}
