package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/hexmerlin/kgseed/internal/util"
	"github.com/hexmerlin/kgseed/pkg/graphdb"
	"github.com/hexmerlin/kgseed/pkg/kg"
	"github.com/hexmerlin/kgseed/pkg/logger"
	"github.com/hexmerlin/kgseed/pkg/store"
)

const (
	insertBatchSize  = 500
	parallelEmbedReq = 4
	embedMaxTries    = 3
)

// ImportKnowledgeGraph persists the full normalized document in one pass:
// chunks, then entities, then relationships, each embedded and written to
// PostgreSQL, the entity/relationship topology mirrored into Neo4j, and the
// import manifest written to the working directory. Document order is
// preserved throughout.
func (s *GraphDBStorage) ImportKnowledgeGraph(ctx context.Context, doc *kg.Document) error {
	if !s.initialized {
		return fmt.Errorf("storages not initialized")
	}

	logger.Info("[Store] Importing knowledge graph", "doc", describeDocument(doc))

	if err := s.importChunks(ctx, doc.Chunks); err != nil {
		return fmt.Errorf("importing chunks (%s): %w", describeDocument(doc), err)
	}
	if err := s.importEntities(ctx, doc.Entities); err != nil {
		return fmt.Errorf("importing entities (%s): %w", describeDocument(doc), err)
	}
	if err := s.importRelationships(ctx, doc.Relationships); err != nil {
		return fmt.Errorf("importing relationships (%s): %w", describeDocument(doc), err)
	}
	if err := s.syncGraph(ctx, doc); err != nil {
		return fmt.Errorf("syncing graph store (%s): %w", describeDocument(doc), err)
	}
	if err := s.writeManifest(doc); err != nil {
		return fmt.Errorf("writing import manifest: %w", err)
	}

	logger.Info("[Store] Import completed", "doc", describeDocument(doc))
	return nil
}

// embedAll embeds texts in fixed-size batches. Batches run concurrently up
// to parallelEmbedReq in flight; results land at their original index so
// input order is preserved.
func (s *GraphDBStorage) embedAll(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := s.cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	out := make([]pgvector.Vector, len(texts))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelEmbedReq)

	_ = store.ChunkRange(len(texts), batchSize, func(start, end int) error {
		eg.Go(func() error {
			vectors, err := util.RetryWithContext(ectx, embedMaxTries, func(ctx context.Context) ([][]float32, error) {
				return s.embedder.Embed(ctx, texts[start:end])
			})
			if err != nil {
				return err
			}
			for i, vec := range vectors {
				out[start+i] = pgvector.NewVector(vec)
			}
			return nil
		})
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GraphDBStorage) importChunks(ctx context.Context, chunks []kg.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = chunkEmbeddingText(c)
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return err
	}

	rows := buildChunkRows(chunks)
	return store.ChunkRange(len(rows), insertBatchSize, func(start, end int) error {
		batch := new(pgxv5.Batch)
		for i := start; i < end; i++ {
			batch.Queue(`
				INSERT INTO kg_chunks (chunk_id, content, source_id, chunk_order_index, tokens, embedding)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (chunk_id) DO UPDATE SET
					content = EXCLUDED.content,
					source_id = EXCLUDED.source_id,
					chunk_order_index = EXCLUDED.chunk_order_index,
					tokens = EXCLUDED.tokens,
					embedding = EXCLUDED.embedding`,
				rows[i].ChunkID, rows[i].Content, rows[i].SourceID, rows[i].OrderIndex, rows[i].Tokens, embeddings[i],
			)
		}
		return s.sendBatch(ctx, batch)
	})
}

func (s *GraphDBStorage) importEntities(ctx context.Context, entities []kg.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	texts := make([]string, len(entities))
	for i, e := range entities {
		texts[i] = entityEmbeddingText(e)
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return err
	}

	return store.ChunkRange(len(entities), insertBatchSize, func(start, end int) error {
		batch := new(pgxv5.Batch)
		for i := start; i < end; i++ {
			e := entities[i]
			batch.Queue(`
				INSERT INTO kg_entities (entity_id, name, entity_type, description, source_id, embedding)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (entity_id) DO UPDATE SET
					name = EXCLUDED.name,
					entity_type = EXCLUDED.entity_type,
					description = EXCLUDED.description,
					source_id = EXCLUDED.source_id,
					embedding = EXCLUDED.embedding`,
				e.EntityID, e.EntityName, e.EntityType, util.SanitizePostgresText(e.Description), e.SourceID, embeddings[i],
			)
		}
		return s.sendBatch(ctx, batch)
	})
}

func (s *GraphDBStorage) importRelationships(ctx context.Context, relationships []kg.Relationship) error {
	if len(relationships) == 0 {
		return nil
	}

	texts := make([]string, len(relationships))
	for i, r := range relationships {
		texts[i] = relationshipEmbeddingText(r)
	}
	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		return err
	}

	return store.ChunkRange(len(relationships), insertBatchSize, func(start, end int) error {
		batch := new(pgxv5.Batch)
		for i := start; i < end; i++ {
			r := relationships[i]
			batch.Queue(`
				INSERT INTO kg_relationships (src_id, tgt_id, keywords, description, weight, source_id, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (src_id, tgt_id, keywords) DO UPDATE SET
					description = EXCLUDED.description,
					weight = EXCLUDED.weight,
					source_id = EXCLUDED.source_id,
					embedding = EXCLUDED.embedding`,
				r.SrcID, r.TgtID, r.Keywords, util.SanitizePostgresText(r.Description), r.Weight, r.SourceID, embeddings[i],
			)
		}
		return s.sendBatch(ctx, batch)
	})
}

func (s *GraphDBStorage) sendBatch(ctx context.Context, batch *pgxv5.Batch) error {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return results.Close()
}

func (s *GraphDBStorage) syncGraph(ctx context.Context, doc *kg.Document) error {
	if err := s.graph.EnsureConstraints(ctx); err != nil {
		// Constraint creation needs privileges some deployments withhold;
		// the import itself does not depend on it.
		logger.Warn("[Store] Could not ensure graph constraints", "err", err)
	}

	nodes := make([]graphdb.EntityNode, len(doc.Entities))
	for i, e := range doc.Entities {
		nodes[i] = graphdb.EntityNode{
			ID:          e.EntityID,
			Name:        e.EntityName,
			Type:        e.EntityType,
			Description: e.Description,
			SourceID:    e.SourceID,
		}
	}
	if err := s.graph.UpsertEntities(ctx, nodes); err != nil {
		return err
	}

	edges := make([]graphdb.RelationshipEdge, len(doc.Relationships))
	for i, r := range doc.Relationships {
		edges[i] = graphdb.RelationshipEdge{
			SrcID:       r.SrcID,
			TgtID:       r.TgtID,
			Keywords:    r.Keywords,
			Description: r.Description,
			Weight:      r.Weight,
			SourceID:    r.SourceID,
		}
	}
	return s.graph.UpsertRelationships(ctx, edges)
}
