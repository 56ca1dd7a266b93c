package ollama

import (
	"context"

	"github.com/ollama/ollama/api"

	"github.com/hexmerlin/kgseed/pkg/ai"
)

// GenerateCompletion sends a single-turn prompt to the configured completion
// model and returns the assistant text.
func (c *EmbedClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
) (string, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	stream := false
	req := &api.ChatRequest{
		Model: c.completionModel,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.3},
	}

	tokens, err := countTokens(prompt)
	if err != nil {
		return "", err
	}
	if tokens+200 > 4096 {
		req.Options["num_ctx"] = tokens + 200
	}

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return final.Message.Content, nil
}
