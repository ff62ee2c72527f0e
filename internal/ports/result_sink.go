package ports

import (
	"context"

	"github.com/mikey/lead-triage/internal/core"
)

// ResultSink receives the outcome of a triage run
type ResultSink interface {
	// Emit hands over a complete triage result. It is called once per run,
	// after the crawl and classification have finished.
	Emit(ctx context.Context, result *core.TriageResult) error

	// Close flushes and releases any resources held by the sink
	Close() error
}
