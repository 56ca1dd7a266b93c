package kg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrFileNotFound is returned when the document path does not exist.
	ErrFileNotFound = errors.New("knowledge graph file not found")
	// ErrMalformedDocument is returned when the file is not valid JSON or
	// is missing one of the required top-level sequences.
	ErrMalformedDocument = errors.New("malformed knowledge graph document")
)

// Entity is a named node candidate in the knowledge graph. EntityID is the
// identity field; Normalize derives it from EntityName when absent.
type Entity struct {
	EntityID    string `json:"entity_id"`
	EntityName  string `json:"entity_name,omitempty"`
	EntityType  string `json:"entity_type,omitempty"`
	Description string `json:"description,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
}

// Relationship is a directed edge between two entity identifiers. Endpoint
// identifiers are not cross-checked against the entity list here; the bulk
// loader owns that.
type Relationship struct {
	SrcID       string  `json:"src_id"`
	TgtID       string  `json:"tgt_id"`
	Description string  `json:"description,omitempty"`
	Keywords    string  `json:"keywords,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	SourceID    string  `json:"source_id,omitempty"`
}

// Chunk is a unit of source text with an ordering key. Both index fields are
// pointers so an absent key can be told apart from an explicit zero.
type Chunk struct {
	Content          string `json:"content"`
	SourceID         string `json:"source_id,omitempty"`
	Tokens           int    `json:"tokens,omitempty"`
	ChunkOrderIndex  *int   `json:"chunk_order_index,omitempty"`
	SourceChunkIndex *int   `json:"source_chunk_index,omitempty"`
}

// Document is the unit of import: the full extracted knowledge graph.
// Sequence order is preserved from the file through to the bulk loader.
type Document struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Chunks        []Chunk        `json:"chunks"`
}

// Stats reports structural counts for diagnostics.
type Stats struct {
	Entities      int
	Relationships int
	Chunks        int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d entities, %d relationships, %d chunks", s.Entities, s.Relationships, s.Chunks)
}

// Load reads and deserializes a knowledge graph document from path. All
// three top-level sequences must be present; they may be empty.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	for _, key := range []string{"entities", "relationships", "chunks"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q sequence", ErrMalformedDocument, key)
		}
	}

	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// Normalize fills missing required fields in place: entities without an
// entity_id take their entity_name, or the literal "unknown" when neither
// is present; chunks without a chunk_order_index take source_chunk_index
// when it is set. Record order is untouched.
func (d *Document) Normalize() {
	for i := range d.Entities {
		if d.Entities[i].EntityID != "" {
			continue
		}
		if d.Entities[i].EntityName != "" {
			d.Entities[i].EntityID = d.Entities[i].EntityName
		} else {
			d.Entities[i].EntityID = "unknown"
		}
	}
	for i := range d.Chunks {
		if d.Chunks[i].ChunkOrderIndex == nil && d.Chunks[i].SourceChunkIndex != nil {
			idx := *d.Chunks[i].SourceChunkIndex
			d.Chunks[i].ChunkOrderIndex = &idx
		}
	}
}

// Stats returns the current entity, relationship and chunk counts.
func (d *Document) Stats() Stats {
	return Stats{
		Entities:      len(d.Entities),
		Relationships: len(d.Relationships),
		Chunks:        len(d.Chunks),
	}
}

// OrderIndex returns the chunk's ordering key, falling back to the given
// document position when the chunk never carried one.
func (c *Chunk) OrderIndex(position int) int {
	if c.ChunkOrderIndex != nil {
		return *c.ChunkOrderIndex
	}
	return position
}
