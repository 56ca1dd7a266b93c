package pipeline

import (
	"context"
	"fmt"

	"github.com/hexmerlin/kgseed/pkg/ai"
	"github.com/hexmerlin/kgseed/pkg/config"
	"github.com/hexmerlin/kgseed/pkg/kg"
	"github.com/hexmerlin/kgseed/pkg/logger"
	"github.com/hexmerlin/kgseed/pkg/store"
)

// Pipeline runs the full reset-validate-load-verify sequence as a forward
// only state machine. Every stage gates the next; the first fatal outcome
// moves the pipeline to StateFailed and aborts the run.
type Pipeline struct {
	cfg      *config.Config
	graph    GraphStore
	rel      RelationalStore
	storage  store.Storage
	embedder *ai.EmbeddingCapability

	state  State
	report *VerificationReport
}

type NewPipelineParams struct {
	Config   *config.Config
	Graph    GraphStore
	Rel      RelationalStore
	Storage  store.Storage
	Embedder *ai.EmbeddingCapability
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	return &Pipeline{
		cfg:      params.Config,
		graph:    params.Graph,
		rel:      params.Rel,
		storage:  params.Storage,
		embedder: params.Embedder,
		state:    StateIdle,
	}
}

// State returns the pipeline's current position.
func (p *Pipeline) State() State {
	return p.state
}

// Report returns the post-load verification report, or nil if the run never
// reached verification.
func (p *Pipeline) Report() *VerificationReport {
	return p.report
}

// Run executes the whole pipeline against the knowledge graph file at path.
// The document is loaded and validated before any store is touched, so a
// missing or malformed file never costs existing data. A non-nil error means
// the process should exit non-zero.
func (p *Pipeline) Run(ctx context.Context, path string) error {
	logger.Info(fmt.Sprintf("[Pipeline] Starting import run (%s)", p.cfg.Summary()))

	doc, err := kg.Load(path)
	if err != nil {
		return p.fail(fmt.Errorf("load knowledge graph file %s: %w", path, err))
	}
	doc.Normalize()

	p.state = StateResetting
	results := p.Reset(ctx)
	if !CanProceed(results) {
		fatal, _ := FirstFatal(results)
		return p.fail(fatal.Err)
	}

	remaining, err := p.graph.NodeCount(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("probe graph store after reset: %w", err))
	}
	if remaining != 0 {
		return p.fail(fmt.Errorf("graph store still holds %d nodes after reset", remaining))
	}
	p.state = StateConnectivityChecked

	stats := doc.Stats()
	logger.Info(fmt.Sprintf("[Pipeline] Loaded document: %s", stats))
	p.state = StateDocumentLoaded

	if err := p.embedder.VerifySelfTest(ctx); err != nil {
		return p.fail(fmt.Errorf("embedding self-test: %w", err))
	}
	logger.Info(fmt.Sprintf("[Pipeline] Embedding self-test passed (dim=%d)", p.embedder.Dimensions))
	p.state = StateEmbeddingVerified

	p.state = StateImporting
	if err := p.storage.InitializeStorages(ctx); err != nil {
		return p.fail(fmt.Errorf("%w: initialize storages: %v", ErrImportFailed, err))
	}
	importErr := p.storage.ImportKnowledgeGraph(ctx, doc)
	finalizeErr := p.storage.FinalizeStorages(ctx)
	if importErr != nil {
		return p.fail(fmt.Errorf("%w: %v (document: %s)", ErrImportFailed, importErr, stats))
	}
	if finalizeErr != nil {
		logger.Warn(fmt.Sprintf("[Pipeline] Finalizing storages failed after successful import: %v", finalizeErr))
	}

	report, err := p.Verify(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("post-load verification: %w", err))
	}
	p.report = report
	p.state = StateVerified

	logger.Info(fmt.Sprintf("[Pipeline] Import run complete: %s, %d nodes in graph store", stats, report.Nodes))
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.state = StateFailed
	logger.Error(fmt.Sprintf("[Pipeline] Run failed: %v", err))
	return err
}
