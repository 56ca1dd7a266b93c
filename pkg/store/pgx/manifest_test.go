package pgx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hexmerlin/kgseed/pkg/ai"
	"github.com/hexmerlin/kgseed/pkg/config"
	"github.com/hexmerlin/kgseed/pkg/kg"
)

func TestWriteManifest_ChunkKeysMatchStoredRows(t *testing.T) {
	dir := t.TempDir()
	s := &GraphDBStorage{
		cfg:      &config.Config{WorkingDir: dir},
		embedder: ai.NewEmbeddingCapability(nil, 8, 1024),
	}

	doc := &kg.Document{
		Chunks: []kg.Chunk{
			{Content: "clean chunk", SourceID: "doc-1", Tokens: 3},
			{Content: "dirty\x00chunk\xff", SourceID: "doc-1", Tokens: 3},
		},
	}
	if err := s.writeManifest(doc); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, chunkStoreFile))
	if err != nil {
		t.Fatalf("read chunk store: %v", err)
	}
	entries := make(map[string]chunkManifestEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("decode chunk store: %v", err)
	}

	rows := buildChunkRows(doc.Chunks)
	if len(entries) != len(rows) {
		t.Fatalf("expected %d entries, got %d", len(rows), len(entries))
	}
	for _, row := range rows {
		entry, ok := entries[row.ChunkID]
		if !ok {
			t.Fatalf("stored chunk id %s missing from manifest keys", row.ChunkID)
		}
		if entry.OrderIndex != row.OrderIndex || entry.SourceID != row.SourceID {
			t.Fatalf("manifest entry %+v does not match row %+v", entry, row)
		}
	}

	rawKey := contentHash("chunk", "dirty\x00chunk\xff")
	if _, ok := entries[rawKey]; ok {
		t.Fatal("manifest keyed by unsanitized content")
	}
}
