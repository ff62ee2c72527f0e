package factory

import (
	"fmt"
	"os"

	"github.com/mikey/lead-triage/internal/adapters/sink"
	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/ports"
	"go.uber.org/zap"
)

// SinkFactory creates result sinks based on configuration
type SinkFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSinkFactory creates a new sink factory
func NewSinkFactory(cfg *config.Config, logger *zap.Logger) *SinkFactory {
	return &SinkFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultSink creates a result sink based on the configuration
func (f *SinkFactory) CreateResultSink() (ports.ResultSink, error) {
	format := f.cfg.GetString("output.format")

	switch format {
	case "text":
		return sink.NewTextSink(os.Stdout, f.cfg.GetBool("cli.verbose")), nil
	case "json":
		return sink.NewJSONSink(os.Stdout, true), nil
	case "log":
		return sink.NewLogSink(f.logger.Named("leads")), nil
	case "none":
		return sink.NopSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
