package ai

import (
	"context"
	"errors"
	"testing"
)

type fakeEmbeddingClient struct {
	dim   int
	count int
	err   error
	calls [][]string
}

func (f *fakeEmbeddingClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls = append(f.calls, inputs)
	if f.err != nil {
		return nil, f.err
	}
	count := f.count
	if count == 0 {
		count = len(inputs)
	}
	out := make([][]float32, count)
	for i := range out {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func TestVerifySelfTest_Success(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 1024}
	cap := NewEmbeddingCapability(client, 1024, 32768)

	if err := cap.VerifySelfTest(context.Background()); err != nil {
		t.Fatalf("expected self-test to pass, got %v", err)
	}
	if len(client.calls) != 1 || len(client.calls[0]) != 1 || client.calls[0][0] != "test" {
		t.Fatalf("expected one call with a single literal, got %v", client.calls)
	}
}

func TestVerifySelfTest_DimensionMismatch(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 768}
	cap := NewEmbeddingCapability(client, 1024, 32768)

	err := cap.VerifySelfTest(context.Background())
	if !errors.Is(err, ErrEmbeddingDimensionMismatch) {
		t.Fatalf("expected ErrEmbeddingDimensionMismatch, got %v", err)
	}
}

func TestVerifySelfTest_ServiceUnavailable(t *testing.T) {
	client := &fakeEmbeddingClient{err: errors.New("connection refused")}
	cap := NewEmbeddingCapability(client, 1024, 32768)

	err := cap.VerifySelfTest(context.Background())
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEmbed_VectorCountMismatch(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 1024, count: 1}
	cap := NewEmbeddingCapability(client, 1024, 32768)

	_, err := cap.Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrEmbeddingDimensionMismatch) {
		t.Fatalf("expected ErrEmbeddingDimensionMismatch for count mismatch, got %v", err)
	}
}

func TestEmbed_EmptyBatch(t *testing.T) {
	client := &fakeEmbeddingClient{dim: 1024}
	cap := NewEmbeddingCapability(client, 1024, 32768)

	vectors, err := cap.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil result for empty batch, got %v", vectors)
	}
	if len(client.calls) != 0 {
		t.Fatal("empty batch must not reach the client")
	}
}
