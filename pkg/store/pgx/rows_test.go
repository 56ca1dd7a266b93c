package pgx

import (
	"testing"

	"github.com/hexmerlin/kgseed/pkg/kg"
)

func TestBuildChunkRows_OrderAndFallback(t *testing.T) {
	five := 5
	chunks := []kg.Chunk{
		{Content: "first", ChunkOrderIndex: &five},
		{Content: "second"},
		{Content: "third"},
	}
	rows := buildChunkRows(chunks)

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].OrderIndex != 5 {
		t.Fatalf("explicit order index not kept: %d", rows[0].OrderIndex)
	}
	if rows[1].OrderIndex != 1 || rows[2].OrderIndex != 2 {
		t.Fatalf("positional fallback wrong: %d, %d", rows[1].OrderIndex, rows[2].OrderIndex)
	}
	if rows[0].Content != "first" || rows[1].Content != "second" || rows[2].Content != "third" {
		t.Fatal("document order not preserved")
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	a := contentHash("chunk", "same text")
	b := contentHash("chunk", "same text")
	c := contentHash("chunk", "other text")

	if a != b {
		t.Fatalf("hash not deterministic: %s != %s", a, b)
	}
	if a == c {
		t.Fatal("different content must hash differently")
	}
	if len(a) != len("chunk-")+16 {
		t.Fatalf("unexpected id shape: %s", a)
	}
}

func TestEntityEmbeddingText(t *testing.T) {
	e := kg.Entity{EntityID: "ada", EntityName: "Ada Lovelace", Description: "mathematician"}
	if got := entityEmbeddingText(e); got != "Ada Lovelace\nmathematician" {
		t.Fatalf("unexpected embedding text: %q", got)
	}

	e = kg.Entity{EntityID: "ada"}
	if got := entityEmbeddingText(e); got != "ada" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestRelationshipEmbeddingText(t *testing.T) {
	r := kg.Relationship{SrcID: "a", TgtID: "b", Keywords: "works with", Description: "colleagues"}
	want := "a\nb\nworks with\ncolleagues"
	if got := relationshipEmbeddingText(r); got != want {
		t.Fatalf("unexpected embedding text: %q", got)
	}

	r = kg.Relationship{SrcID: "a", TgtID: "b"}
	if got := relationshipEmbeddingText(r); got != "a\nb" {
		t.Fatalf("unexpected embedding text without optional fields: %q", got)
	}
}
