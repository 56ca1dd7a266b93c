package pipeline

// Severity classifies a stage result. Warnings are reported but never stop
// the run; a single fatal result does.
type Severity int

const (
	OutcomeOK Severity = iota
	OutcomeWarning
	OutcomeFatal
)

func (s Severity) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomeWarning:
		return "warning"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StageResult is the tagged outcome of one pipeline stage or sub-step.
type StageResult struct {
	Stage    string
	Severity Severity
	Detail   string
	Err      error
}

func okResult(stage, detail string) StageResult {
	return StageResult{Stage: stage, Severity: OutcomeOK, Detail: detail}
}

func warnResult(stage string, err error) StageResult {
	return StageResult{Stage: stage, Severity: OutcomeWarning, Err: err}
}

func fatalResult(stage string, err error) StageResult {
	return StageResult{Stage: stage, Severity: OutcomeFatal, Err: err}
}

// CanProceed reports whether the accumulated results allow the run to move
// past its gate: true exactly when no result is fatal.
func CanProceed(results []StageResult) bool {
	for _, r := range results {
		if r.Severity == OutcomeFatal {
			return false
		}
	}
	return true
}

// FirstFatal returns the first fatal result, if any.
func FirstFatal(results []StageResult) (StageResult, bool) {
	for _, r := range results {
		if r.Severity == OutcomeFatal {
			return r, true
		}
	}
	return StageResult{}, false
}

// State names the pipeline's position in its linear run. There are no
// backward transitions; any stage failure moves directly to StateFailed.
type State string

const (
	StateIdle                State = "idle"
	StateResetting           State = "resetting"
	StateConnectivityChecked State = "connectivity_checked"
	StateDocumentLoaded      State = "document_loaded"
	StateEmbeddingVerified   State = "embedding_verified"
	StateImporting           State = "importing"
	StateVerified            State = "verified"
	StateFailed              State = "failed"
)
