package pgx

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/hexmerlin/kgseed/pkg/ai"
	"github.com/hexmerlin/kgseed/pkg/config"
	"github.com/hexmerlin/kgseed/pkg/graphdb"
	"github.com/hexmerlin/kgseed/pkg/logger"
)

// GraphDBStorage persists a knowledge graph document across the three
// backing stores: chunk, entity and relationship rows with their vectors in
// PostgreSQL, the graph topology in Neo4j, and import manifests in the
// working directory.
type GraphDBStorage struct {
	cfg      *config.Config
	graph    *graphdb.Client
	embedder *ai.EmbeddingCapability
	llm      ai.CompletionClient

	pool        *pgxpool.Pool
	initialized bool
}

// NewGraphDBStorageParams contains the collaborators a storage needs. The
// embedding capability must have passed its self-test; the completion
// client is part of the engine contract even for import-only runs.
type NewGraphDBStorageParams struct {
	Config   *config.Config
	Graph    *graphdb.Client
	Embedder *ai.EmbeddingCapability
	LLM      ai.CompletionClient
}

// NewGraphDBStorage creates a storage bound to the given stores. No
// connections are opened until InitializeStorages.
func NewGraphDBStorage(params NewGraphDBStorageParams) (*GraphDBStorage, error) {
	if params.Config == nil || params.Graph == nil || params.Embedder == nil {
		return nil, fmt.Errorf("storage requires config, graph client and embedder")
	}
	return &GraphDBStorage{
		cfg:      params.Config,
		graph:    params.Graph,
		embedder: params.Embedder,
		llm:      params.LLM,
	}, nil
}

// InitializeStorages opens the relational pool, creates the engine's tables
// when missing and makes sure the working directory exists. It must be
// paired with FinalizeStorages.
func (s *GraphDBStorage) InitializeStorages(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.PostgresURL())
	if err != nil {
		return fmt.Errorf("parsing postgres config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	s.pool = pool

	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		s.pool = nil
		return err
	}

	if err := os.MkdirAll(s.cfg.WorkingDir, 0o755); err != nil {
		pool.Close()
		s.pool = nil
		return fmt.Errorf("creating working directory: %w", err)
	}

	s.initialized = true
	logger.Debug("[Store] Storages initialized", "postgres", s.cfg.Postgres.Database, "working_dir", s.cfg.WorkingDir)
	return nil
}

// FinalizeStorages releases the relational pool. Safe to call on a storage
// that never finished initializing.
func (s *GraphDBStorage) FinalizeStorages(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	s.initialized = false
	logger.Debug("[Store] Storages finalized")
	return nil
}

func (s *GraphDBStorage) createSchema(ctx context.Context) error {
	dim := s.embedder.Dimensions
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kg_chunks (
			id BIGSERIAL PRIMARY KEY,
			chunk_id TEXT UNIQUE NOT NULL,
			content TEXT NOT NULL,
			source_id TEXT,
			chunk_order_index INT NOT NULL,
			tokens INT,
			embedding vector(%d)
		)`, dim),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kg_entities (
			id BIGSERIAL PRIMARY KEY,
			entity_id TEXT UNIQUE NOT NULL,
			name TEXT,
			entity_type TEXT,
			description TEXT,
			source_id TEXT,
			embedding vector(%d)
		)`, dim),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kg_relationships (
			id BIGSERIAL PRIMARY KEY,
			src_id TEXT NOT NULL,
			tgt_id TEXT NOT NULL,
			keywords TEXT,
			description TEXT,
			weight DOUBLE PRECISION,
			source_id TEXT,
			embedding vector(%d),
			UNIQUE (src_id, tgt_id, keywords)
		)`, dim),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating engine schema: %w", err)
		}
	}
	return nil
}
