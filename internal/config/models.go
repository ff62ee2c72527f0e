package config

import (
	"fmt"
	"time"
)

// MailboxConfig represents the configuration for the mailbox provider
type MailboxConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

// CrawlerConfig represents the configuration for the unread email crawler
type CrawlerConfig struct {
	PageSize          int
	MaxRuntime        time.Duration
	MaxAttempts       int
	InitialRetryDelay time.Duration
	PageDelay         time.Duration
	ErrorPause        time.Duration
}

// ClassifierConfig represents the configuration for the interest classifier
type ClassifierConfig struct {
	Locales   []string
	RulesFile string
}

// TriageConfig represents the configuration for the triage loop
type TriageConfig struct {
	PollInterval time.Duration
}

// GetMailbox returns the mailbox configuration
func (c *Config) GetMailbox() (MailboxConfig, error) {
	timeout, err := c.GetDuration("mailbox.request_timeout")
	if err != nil {
		return MailboxConfig{}, fmt.Errorf("invalid mailbox request timeout: %w", err)
	}
	return MailboxConfig{
		BaseURL:        c.GetString("mailbox.base_url"),
		APIKey:         c.GetString("mailbox.api_key"),
		RequestTimeout: timeout,
	}, nil
}

// GetCrawler returns the crawler configuration
func (c *Config) GetCrawler() (CrawlerConfig, error) {
	durations := map[string]*time.Duration{}
	cfg := CrawlerConfig{
		PageSize:    c.GetInt("crawler.page_size"),
		MaxAttempts: c.GetInt("crawler.max_attempts"),
	}
	durations["crawler.max_runtime"] = &cfg.MaxRuntime
	durations["crawler.initial_retry_delay"] = &cfg.InitialRetryDelay
	durations["crawler.page_delay"] = &cfg.PageDelay
	durations["crawler.error_pause"] = &cfg.ErrorPause

	for key, dst := range durations {
		d, err := c.GetDuration(key)
		if err != nil {
			return CrawlerConfig{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}
	return cfg, nil
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Locales:   c.GetStringSlice("classifier.locales"),
		RulesFile: c.GetString("classifier.rules_file"),
	}
}

// GetTriage returns the triage loop configuration
func (c *Config) GetTriage() (TriageConfig, error) {
	interval, err := c.GetDuration("triage.poll_interval")
	if err != nil {
		return TriageConfig{}, fmt.Errorf("invalid triage poll interval: %w", err)
	}
	return TriageConfig{PollInterval: interval}, nil
}
