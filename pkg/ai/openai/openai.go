package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/hexmerlin/kgseed/pkg/ai"
)

// EmbedClient implements the ai.EmbeddingClient and ai.CompletionClient
// interfaces against any OpenAI-compatible endpoint.
type EmbedClient struct {
	embeddingModel  string
	completionModel string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *openai.Client
}

// NewEmbedClientParams contains configuration for creating an EmbedClient.
type NewEmbedClientParams struct {
	EmbeddingModel  string
	CompletionModel string

	BaseURL string
	APIKey  string

	MaxConcurrentRequests int64
}

// NewEmbedClient creates a client for the given OpenAI-compatible endpoint.
func NewEmbedClient(params NewEmbedClientParams) *EmbedClient {
	options := []option.RequestOption{
		option.WithAPIKey(params.APIKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}
	client := openai.NewClient(options...)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &EmbedClient{
		embeddingModel:  params.EmbeddingModel,
		completionModel: params.CompletionModel,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		Client: &client,
	}
}

// GetMetrics returns the accumulated token usage and timing metrics.
func (c *EmbedClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *EmbedClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}
