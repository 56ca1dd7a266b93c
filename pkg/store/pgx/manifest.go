package pgx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hexmerlin/kgseed/pkg/kg"
)

const (
	manifestFile   = "import_manifest.json"
	chunkStoreFile = "kv_store_text_chunks.json"
)

type importManifest struct {
	ImportedAt    string `json:"imported_at"`
	Entities      int    `json:"entities"`
	Relationships int    `json:"relationships"`
	Chunks        int    `json:"chunks"`
	EmbeddingDim  int    `json:"embedding_dim"`
}

type chunkManifestEntry struct {
	SourceID   string `json:"source_id,omitempty"`
	OrderIndex int    `json:"chunk_order_index"`
	Tokens     int    `json:"tokens,omitempty"`
}

// writeManifest records what was imported into the working directory so the
// retrieval engine's non-database state reflects the load.
func (s *GraphDBStorage) writeManifest(doc *kg.Document) error {
	stats := doc.Stats()
	manifest := importManifest{
		ImportedAt:    time.Now().UTC().Format(time.RFC3339),
		Entities:      stats.Entities,
		Relationships: stats.Relationships,
		Chunks:        stats.Chunks,
		EmbeddingDim:  s.embedder.Dimensions,
	}
	if err := writeJSONFile(filepath.Join(s.cfg.WorkingDir, manifestFile), manifest); err != nil {
		return err
	}

	rows := buildChunkRows(doc.Chunks)
	chunkEntries := make(map[string]chunkManifestEntry, len(rows))
	for _, row := range rows {
		chunkEntries[row.ChunkID] = chunkManifestEntry{
			SourceID:   row.SourceID,
			OrderIndex: row.OrderIndex,
			Tokens:     row.Tokens,
		}
	}
	return writeJSONFile(filepath.Join(s.cfg.WorkingDir, chunkStoreFile), chunkEntries)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
