package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexmerlin/kgseed/pkg/logger"
)

// GraphStore is the slice of the graph client the pipeline needs. The
// concrete implementation lives in pkg/graphdb.
type GraphStore interface {
	NodeCount(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	LabelCounts(ctx context.Context) (map[string]int64, error)
	RelationshipTypeCounts(ctx context.Context) (map[string]int64, error)
	CreateDiagnosticNode(ctx context.Context, id string) error
	DeleteDiagnosticNode(ctx context.Context, id string) error
}

// RelationalStore resets the relational side of the storage engine.
type RelationalStore interface {
	TruncateAll(ctx context.Context) (int, error)
}

// Reset clears all three stores and returns one result per store. The graph
// reset is the only one whose failure is fatal: importing into a store with
// stale nodes would silently merge two datasets. The relational and
// working-dir resets degrade to warnings because the engine recreates both
// on initialization.
func (p *Pipeline) Reset(ctx context.Context) []StageResult {
	results := []StageResult{
		p.resetGraphStore(ctx),
		p.resetRelationalStore(ctx),
		resetWorkingDir(p.cfg.WorkingDir),
	}
	for _, r := range results {
		switch r.Severity {
		case OutcomeOK:
			logger.Info(fmt.Sprintf("[Reset] %s: %s", r.Stage, r.Detail))
		case OutcomeWarning:
			logger.Warn(fmt.Sprintf("[Reset] %s: %v", r.Stage, r.Err))
		case OutcomeFatal:
			logger.Error(fmt.Sprintf("[Reset] %s: %v", r.Stage, r.Err))
		}
	}
	return results
}

func (p *Pipeline) resetGraphStore(ctx context.Context) StageResult {
	deleted, err := p.graph.DeleteAll(ctx)
	if err != nil {
		return fatalResult("graph store", fmt.Errorf("delete all nodes: %w", err))
	}
	return okResult("graph store", fmt.Sprintf("deleted %d nodes", deleted))
}

func (p *Pipeline) resetRelationalStore(ctx context.Context) StageResult {
	truncated, err := p.rel.TruncateAll(ctx)
	if err != nil {
		return warnResult("relational store", fmt.Errorf("%w: %v", ErrStoreCleanup, err))
	}
	return okResult("relational store", fmt.Sprintf("truncated %d tables", truncated))
}

// resetWorkingDir removes every entry under dir, tolerating partial
// failure, and creates the directory when it does not exist yet.
func resetWorkingDir(dir string) StageResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return warnResult("working dir", fmt.Errorf("%w: create %s: %v", ErrStoreCleanup, dir, mkErr))
			}
			return okResult("working dir", fmt.Sprintf("created %s", dir))
		}
		return warnResult("working dir", fmt.Errorf("%w: read %s: %v", ErrStoreCleanup, dir, err))
	}

	removed := 0
	var lastErr error
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			lastErr = err
			logger.Warn(fmt.Sprintf("[Reset] Could not remove %s: %v", path, err))
			continue
		}
		removed++
	}
	if lastErr != nil {
		return warnResult("working dir", fmt.Errorf("%w: removed %d of %d entries: %v", ErrStoreCleanup, removed, len(entries), lastErr))
	}
	return okResult("working dir", fmt.Sprintf("removed %d entries from %s", removed, dir))
}
