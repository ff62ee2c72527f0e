package factory

import (
	"github.com/mikey/lead-triage/internal/adapters/instantly"
	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
)

// MailboxFactory creates mailbox clients
type MailboxFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *MailboxFactory {
	return &MailboxFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateMailboxClient creates the mailbox client for the configured provider
func (f *MailboxFactory) CreateMailboxClient() (core.MailboxClient, error) {
	factory := instantly.NewFactory(f.cfg, f.logger.Named("mailbox"), f.textProcessor)
	return factory.CreateMailboxClient()
}
