package instantly

import (
	"fmt"

	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of Client
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Client instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateMailboxClient creates a new Client from the mailbox configuration
func (f *Factory) CreateMailboxClient() (core.MailboxClient, error) {
	mailboxCfg, err := f.cfg.GetMailbox()
	if err != nil {
		return nil, err
	}
	if mailboxCfg.APIKey == "" {
		return nil, fmt.Errorf("mailbox API key is required")
	}
	if mailboxCfg.BaseURL == "" {
		return nil, fmt.Errorf("mailbox base URL is required")
	}

	return NewClient(
		mailboxCfg.BaseURL,
		mailboxCfg.APIKey,
		mailboxCfg.RequestTimeout,
		f.logger,
		f.textProcessor,
	), nil
}
