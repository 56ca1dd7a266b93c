package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/hexmerlin/kgseed/pkg/ai"
)

// EmbedClient implements the ai.EmbeddingClient and ai.CompletionClient
// interfaces against an Ollama server.
type EmbedClient struct {
	embeddingModel  string
	completionModel string
	maxTokens       int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// NewEmbedClientParams contains configuration for creating an EmbedClient.
type NewEmbedClientParams struct {
	EmbeddingModel  string
	CompletionModel string
	MaxTokens       int

	BaseURL string
	APIKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewEmbedClient creates an Ollama-backed client for the given server and
// models. The request semaphore bounds in-flight calls to the server.
func NewEmbedClient(params NewEmbedClientParams) (*EmbedClient, error) {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &EmbedClient{
		embeddingModel:  params.EmbeddingModel,
		completionModel: params.CompletionModel,
		maxTokens:       params.MaxTokens,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		Client: api.NewClient(u, httpClient),
	}, nil
}
