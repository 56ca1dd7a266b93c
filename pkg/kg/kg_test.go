package kg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_graph.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeTestFile(t, "{not json")
	_, err := Load(path)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestLoad_MissingSequence(t *testing.T) {
	path := writeTestFile(t, `{"entities":[],"relationships":[]}`)
	_, err := Load(path)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument for missing chunks, got %v", err)
	}
}

func TestLoad_EmptySequencesAllowed(t *testing.T) {
	path := writeTestFile(t, `{"entities":[],"relationships":[],"chunks":[]}`)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("expected empty sequences to load, got %v", err)
	}
	stats := doc.Stats()
	if stats.Entities != 0 || stats.Relationships != 0 || stats.Chunks != 0 {
		t.Fatalf("expected zero counts, got %+v", stats)
	}
}

func TestNormalize_EntityIDFallbacks(t *testing.T) {
	doc := &Document{
		Entities: []Entity{
			{EntityID: "kept"},
			{EntityName: "Ada Lovelace"},
			{},
		},
	}
	doc.Normalize()

	if doc.Entities[0].EntityID != "kept" {
		t.Fatalf("existing entity_id must be preserved, got %q", doc.Entities[0].EntityID)
	}
	if doc.Entities[1].EntityID != "Ada Lovelace" {
		t.Fatalf("expected entity_name fallback, got %q", doc.Entities[1].EntityID)
	}
	if doc.Entities[2].EntityID != "unknown" {
		t.Fatalf("expected literal unknown, got %q", doc.Entities[2].EntityID)
	}
}

func TestNormalize_ChunkOrderFallback(t *testing.T) {
	three := 3
	zero := 0
	seven := 7
	doc := &Document{
		Chunks: []Chunk{
			{ChunkOrderIndex: &three, SourceChunkIndex: &seven},
			{SourceChunkIndex: &zero},
			{},
		},
	}
	doc.Normalize()

	if *doc.Chunks[0].ChunkOrderIndex != 3 {
		t.Fatalf("existing chunk_order_index must be preserved, got %d", *doc.Chunks[0].ChunkOrderIndex)
	}
	if doc.Chunks[1].ChunkOrderIndex == nil || *doc.Chunks[1].ChunkOrderIndex != 0 {
		t.Fatal("expected source_chunk_index 0 to be promoted")
	}
	if doc.Chunks[2].ChunkOrderIndex != nil {
		t.Fatal("chunk with no index fields must stay unset")
	}
	if doc.Chunks[2].OrderIndex(2) != 2 {
		t.Fatalf("expected positional fallback 2, got %d", doc.Chunks[2].OrderIndex(2))
	}
}

func TestLoad_EndToEndNormalization(t *testing.T) {
	path := writeTestFile(t, `{
		"entities": [{"entity_name": "A"}],
		"relationships": [],
		"chunks": [{"source_chunk_index": 0, "content": "alpha"}]
	}`)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	doc.Normalize()

	if doc.Entities[0].EntityID != "A" {
		t.Fatalf("expected entity_id A, got %q", doc.Entities[0].EntityID)
	}
	if doc.Chunks[0].ChunkOrderIndex == nil || *doc.Chunks[0].ChunkOrderIndex != 0 {
		t.Fatal("expected chunk_order_index 0")
	}

	stats := doc.Stats()
	if stats.Entities != 1 || stats.Relationships != 0 || stats.Chunks != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	doc := &Document{
		Entities: []Entity{
			{EntityName: "first"},
			{EntityName: "second"},
			{EntityName: "third"},
		},
	}
	doc.Normalize()

	for i, want := range []string{"first", "second", "third"} {
		if doc.Entities[i].EntityID != want {
			t.Fatalf("order not preserved at %d: got %q", i, doc.Entities[i].EntityID)
		}
	}
}
