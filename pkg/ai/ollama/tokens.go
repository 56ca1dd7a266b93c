package ollama

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding("cl100k_base")
	})
	return enc, encErr
}

func countTokens(text string) (int, error) {
	e, err := encoding()
	if err != nil {
		return 0, err
	}
	return len(e.Encode(text, nil, nil)), nil
}

// truncateToTokens cuts text down to at most maxTokens tokens. Most inputs
// fit the budget, so the encode happens only once for those.
func truncateToTokens(text string, maxTokens int) (string, error) {
	e, err := encoding()
	if err != nil {
		return "", err
	}
	tokens := e.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return e.Decode(tokens[:maxTokens]), nil
}
