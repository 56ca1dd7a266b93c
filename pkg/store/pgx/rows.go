package pgx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hexmerlin/kgseed/internal/util"
	"github.com/hexmerlin/kgseed/pkg/kg"
)

// chunkRow is one kg_chunks row, minus its embedding.
type chunkRow struct {
	ChunkID    string
	Content    string
	SourceID   string
	OrderIndex int
	Tokens     int
}

// contentHash derives a stable identifier from text so repeated imports of
// the same document produce the same rows.
func contentHash(prefix, text string) string {
	sum := sha256.Sum256([]byte(text))
	return prefix + "-" + hex.EncodeToString(sum[:])[:16]
}

// buildChunkRows maps document chunks to rows in document order. Chunks
// without any ordering key fall back to their position.
func buildChunkRows(chunks []kg.Chunk) []chunkRow {
	rows := make([]chunkRow, 0, len(chunks))
	for i, c := range chunks {
		content := util.SanitizePostgresText(c.Content)
		rows = append(rows, chunkRow{
			ChunkID:    contentHash("chunk", content),
			Content:    content,
			SourceID:   c.SourceID,
			OrderIndex: c.OrderIndex(i),
			Tokens:     c.Tokens,
		})
	}
	return rows
}

// chunkEmbeddingText returns the text embedded for a chunk.
func chunkEmbeddingText(c kg.Chunk) string {
	return c.Content
}

// entityEmbeddingText returns the text embedded for an entity: its name
// (or id) plus its description, matching what retrieval compares against.
func entityEmbeddingText(e kg.Entity) string {
	name := e.EntityName
	if name == "" {
		name = e.EntityID
	}
	if e.Description == "" {
		return name
	}
	return name + "\n" + e.Description
}

// relationshipEmbeddingText returns the text embedded for an edge.
func relationshipEmbeddingText(r kg.Relationship) string {
	parts := make([]string, 0, 4)
	parts = append(parts, r.SrcID, r.TgtID)
	if r.Keywords != "" {
		parts = append(parts, r.Keywords)
	}
	if r.Description != "" {
		parts = append(parts, r.Description)
	}
	return strings.Join(parts, "\n")
}

// describeDocument summarizes a document for error context.
func describeDocument(doc *kg.Document) string {
	stats := doc.Stats()
	return fmt.Sprintf("entities=%d relationships=%d chunks=%d", stats.Entities, stats.Relationships, stats.Chunks)
}
