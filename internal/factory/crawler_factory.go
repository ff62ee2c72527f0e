package factory

import (
	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/crawler"
	"go.uber.org/zap"
)

// CrawlerFactory creates unread email crawlers
type CrawlerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCrawlerFactory creates a new crawler factory
func NewCrawlerFactory(cfg *config.Config, logger *zap.Logger) *CrawlerFactory {
	return &CrawlerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCrawler creates a crawler over the given mailbox client
func (f *CrawlerFactory) CreateCrawler(client core.MailboxClient) (core.LeadCrawler, error) {
	crawlerCfg, err := f.cfg.GetCrawler()
	if err != nil {
		return nil, err
	}

	return crawler.New(client, crawler.Options{
		PageSize:          crawlerCfg.PageSize,
		MaxRuntime:        crawlerCfg.MaxRuntime,
		MaxAttempts:       crawlerCfg.MaxAttempts,
		InitialRetryDelay: crawlerCfg.InitialRetryDelay,
		PageDelay:         crawlerCfg.PageDelay,
		ErrorPause:        crawlerCfg.ErrorPause,
	}, f.logger.Named("crawler")), nil
}
