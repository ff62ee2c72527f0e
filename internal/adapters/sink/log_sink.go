package sink

import (
	"context"

	"github.com/mikey/lead-triage/internal/core"
	"go.uber.org/zap"
)

// LogSink writes one log line per lead not seen in an earlier run
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs through logger
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit logs new leads. Interested leads are logged at info level, the
// rest at debug.
func (s *LogSink) Emit(ctx context.Context, result *core.TriageResult) error {
	for _, queue := range [][]core.TriagedLead{result.Interested, result.NotInterested} {
		for _, l := range queue {
			if l.Known {
				continue
			}
			fields := []zap.Field{
				zap.String("run_id", result.RunID),
				zap.String("email_id", l.Email.ID),
				zap.String("from", l.Email.FromAddressEmail),
				zap.String("subject", l.Email.Subject),
				zap.String("thread_id", l.Email.ThreadID),
				zap.String("classification", string(l.Decision.Classification)),
				zap.String("rule", string(l.Decision.Rule)),
			}
			if l.Decision.Classification == core.Interested {
				s.logger.Info("New interested lead", fields...)
			} else {
				s.logger.Debug("New lead without interest", fields...)
			}
		}
	}
	return nil
}

// Close flushes the logger
func (s *LogSink) Close() error {
	_ = s.logger.Sync()
	return nil
}

// NopSink discards results
type NopSink struct{}

// Emit does nothing
func (NopSink) Emit(context.Context, *core.TriageResult) error { return nil }

// Close does nothing
func (NopSink) Close() error { return nil }
