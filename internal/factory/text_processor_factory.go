package factory

import (
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory builds the text processor the mailbox client uses
// for response previews
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{logger: logger}
}

// CreateTextProcessor returns a processor logging under "text"
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger.Named("text"))
}
