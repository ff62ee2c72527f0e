package factory

import (
	"github.com/mikey/lead-triage/internal/classifier"
	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"go.uber.org/zap"
)

// ClassifierFactory creates interest classifiers
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClassifier builds a classifier from the rules file when one is
// configured, otherwise from the built-in rules of the configured locales
func (f *ClassifierFactory) CreateClassifier() (core.LeadClassifier, error) {
	clsCfg := f.cfg.GetClassifier()

	var (
		rules classifier.RuleSet
		err   error
	)
	if clsCfg.RulesFile != "" {
		rules, err = classifier.LoadRuleSet(clsCfg.RulesFile)
		f.logger.Info("Loaded classifier rules", zap.String("file", clsCfg.RulesFile))
	} else {
		rules, err = classifier.RulesForLocales(clsCfg.Locales)
	}
	if err != nil {
		return nil, err
	}

	return classifier.New(rules, f.logger.Named("classifier"))
}
