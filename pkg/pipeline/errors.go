package pipeline

import "errors"

var (
	// ErrImportFailed wraps any failure surfaced by the storage engine
	// while the knowledge graph is being loaded.
	ErrImportFailed = errors.New("knowledge graph import failed")

	// ErrVerificationInconclusive marks a post-load check that found an
	// empty graph store even though the import reported success.
	ErrVerificationInconclusive = errors.New("post-load verification inconclusive")

	// ErrStoreCleanup marks a reset step that could not fully clear a
	// store. It is reported as a warning, never as a run failure.
	ErrStoreCleanup = errors.New("store cleanup incomplete")
)
