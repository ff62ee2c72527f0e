package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/factory"
	"github.com/mikey/lead-triage/internal/logging"
	"github.com/mikey/lead-triage/internal/ports"
	"github.com/mikey/lead-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideTriage registers everything downstream of the config and logger.
// Both the daemon and the CLI containers share it.
func provideTriage(container *dig.Container) error {
	// Register factories
	for _, constructor := range []interface{}{
		factory.NewTextProcessorFactory,
		factory.NewMailboxFactory,
		factory.NewCrawlerFactory,
		factory.NewClassifierFactory,
		factory.NewCacheFactory,
		factory.NewSinkFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register mailbox client
	if err := container.Provide(func(f *factory.MailboxFactory) (core.MailboxClient, error) {
		return f.CreateMailboxClient()
	}); err != nil {
		return err
	}

	// Register crawler
	if err := container.Provide(func(f *factory.CrawlerFactory, client core.MailboxClient) (core.LeadCrawler, error) {
		return f.CreateCrawler(client)
	}); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.LeadClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}

	// Register triage service
	if err := container.Provide(func(
		crawler core.LeadCrawler,
		classifier core.LeadClassifier,
		cacheRepo core.CacheRepository,
		f *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.TriageService, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewTriageService(
			crawler,
			classifier,
			cacheRepo,
			logger.Named("triage"),
			f.IsCacheEnabled(),
			ttl,
		), nil
	}); err != nil {
		return err
	}

	// Register result sink
	if err := container.Provide(func(f *factory.SinkFactory) (ports.ResultSink, error) {
		return f.CreateResultSink()
	}); err != nil {
		return err
	}

	return nil
}
