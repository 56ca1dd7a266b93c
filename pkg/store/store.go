package store

import (
	"context"

	"github.com/hexmerlin/kgseed/pkg/kg"
)

// Storage is the retrieval engine's bulk-import contract. Callers must
// initialize storages before importing and finalize them afterwards, on
// both the success and the failure path.
type Storage interface {
	InitializeStorages(ctx context.Context) error
	ImportKnowledgeGraph(ctx context.Context, doc *kg.Document) error
	FinalizeStorages(ctx context.Context) error
}

// ChunkRange walks [0, total) in chunkSize steps, calling fn with each
// half-open [start, end) window. A chunkSize <= 0 means a single window.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
