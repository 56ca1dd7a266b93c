package graphdb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EntityNode is one graph node to upsert during bulk import.
type EntityNode struct {
	ID          string
	Name        string
	Type        string
	Description string
	SourceID    string
}

// RelationshipEdge is one directed edge to upsert during bulk import. The
// edge type is derived from Keywords; endpoints are matched by entity id
// and created when missing so dangling references never fail the batch.
type RelationshipEdge struct {
	SrcID       string
	TgtID       string
	Keywords    string
	Description string
	Weight      float64
	SourceID    string
}

var labelCleaner = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// sanitizeLabel turns a free-form entity type into a usable node label.
func sanitizeLabel(entityType, fallback string) string {
	label := labelCleaner.ReplaceAllString(strings.TrimSpace(entityType), "_")
	label = strings.Trim(label, "_")
	if label == "" || !isLetter(rune(label[0])) {
		return fallback
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// sanitizeRelType turns the first keyword of an edge into a relationship
// type in the usual SCREAMING_SNAKE form.
func sanitizeRelType(keywords string) string {
	first := keywords
	if idx := strings.IndexAny(keywords, ",;"); idx >= 0 {
		first = keywords[:idx]
	}
	relType := labelCleaner.ReplaceAllString(strings.TrimSpace(first), "_")
	relType = strings.Trim(relType, "_")
	if relType == "" || !isLetter(rune(relType[0])) {
		return "RELATED"
	}
	return strings.ToUpper(relType)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// UpsertEntities merges entity nodes into the graph, batched per label so
// each batch runs as a single UNWIND. Input order decides which record wins
// when the same entity id appears twice.
func (c *Client) UpsertEntities(ctx context.Context, entities []EntityNode) error {
	if len(entities) == 0 {
		return nil
	}

	labelOrder := make([]string, 0)
	grouped := make(map[string][]map[string]any)
	for _, e := range entities {
		label := sanitizeLabel(e.Type, "Entity")
		if _, ok := grouped[label]; !ok {
			labelOrder = append(labelOrder, label)
		}
		grouped[label] = append(grouped[label], map[string]any{
			"entity_id":   e.ID,
			"name":        e.Name,
			"entity_type": e.Type,
			"description": e.Description,
			"source_id":   e.SourceID,
		})
	}

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range labelOrder {
			query := fmt.Sprintf(`
UNWIND $entities AS e
MERGE (n:Entity {entity_id: e.entity_id})
SET n += e
SET n:%s
`, "`"+label+"`")
			res, err := tx.Run(ctx, query, map[string]any{"entities": grouped[label]})
			if err != nil {
				return nil, err
			}
			if err := consume(ctx, res); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: upserting entities: %v", ErrUnreachable, err)
	}
	return nil
}

// UpsertRelationships merges directed edges into the graph, batched per
// derived relationship type.
func (c *Client) UpsertRelationships(ctx context.Context, relationships []RelationshipEdge) error {
	if len(relationships) == 0 {
		return nil
	}

	typeOrder := make([]string, 0)
	grouped := make(map[string][]map[string]any)
	for _, r := range relationships {
		relType := sanitizeRelType(r.Keywords)
		if _, ok := grouped[relType]; !ok {
			typeOrder = append(typeOrder, relType)
		}
		grouped[relType] = append(grouped[relType], map[string]any{
			"src_id":      r.SrcID,
			"tgt_id":      r.TgtID,
			"keywords":    r.Keywords,
			"description": r.Description,
			"weight":      r.Weight,
			"source_id":   r.SourceID,
		})
	}

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, relType := range typeOrder {
			query := fmt.Sprintf(`
UNWIND $rels AS r
MERGE (a:Entity {entity_id: r.src_id})
MERGE (b:Entity {entity_id: r.tgt_id})
MERGE (a)-[e:%s]->(b)
SET e.keywords = r.keywords,
    e.description = r.description,
    e.weight = r.weight,
    e.source_id = r.source_id
`, "`"+relType+"`")
			res, err := tx.Run(ctx, query, map[string]any{"rels": grouped[relType]})
			if err != nil {
				return nil, err
			}
			if err := consume(ctx, res); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: upserting relationships: %v", ErrUnreachable, err)
	}
	return nil
}

// EnsureConstraints creates the uniqueness constraint on entity ids.
// Failures are surfaced so the caller can decide whether to continue.
func (c *Client) EnsureConstraints(ctx context.Context) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx, `CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (n:Entity) REQUIRE n.entity_id IS UNIQUE`, nil)
	if err != nil {
		return fmt.Errorf("%w: creating constraints: %v", ErrUnreachable, err)
	}
	return consume(ctx, res)
}
