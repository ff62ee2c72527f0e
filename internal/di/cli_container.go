package di

import (
	"flag"
	"os"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Mailbox flags
	APIKey  string
	BaseURL string

	// Crawler flags
	PageSize    int
	MaxRuntime  time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	PageDelay   time.Duration

	// Classifier flags
	Locales   string
	RulesFile string

	// Output flags
	Format     string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *CLIFlags {
	flags := &CLIFlags{}

	// Mailbox flags
	fs.StringVar(&flags.APIKey, "api-key", os.Getenv("INSTANTLY_API_KEY"), "API key for the mailbox provider")
	fs.StringVar(&flags.BaseURL, "base-url", "https://api.instantly.ai/api/v2", "Base URL of the mailbox API")

	// Crawler flags
	fs.IntVar(&flags.PageSize, "page-size", 50, "Number of emails requested per page")
	fs.DurationVar(&flags.MaxRuntime, "max-runtime", time.Hour, "Time budget for one crawl")
	fs.IntVar(&flags.MaxAttempts, "max-attempts", 5, "Maximum attempts per page fetch")
	fs.DurationVar(&flags.RetryDelay, "retry-delay", 5*time.Second, "Initial retry delay, doubled on each attempt")
	fs.DurationVar(&flags.PageDelay, "page-delay", time.Second, "Minimum delay between page requests")

	// Classifier flags
	fs.StringVar(&flags.Locales, "locale", "it", "Comma separated classifier locales (it, en)")
	fs.StringVar(&flags.RulesFile, "rules", "", "YAML rules file replacing the built-in rules")

	// Output flags
	fs.StringVar(&flags.Format, "format", "text", "Output format (text, json, log, none)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	// flag.CommandLine exits on bad input
	_ = fs.Parse(args)
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("cli.verbose", flags.Verbose)

	// One-shot runs never reuse state
	v.Set("cache.enabled", false)
	v.Set("cache.cleanup_frequency", "0s")

	v.Set("mailbox.api_key", flags.APIKey)
	v.Set("mailbox.base_url", flags.BaseURL)

	v.Set("crawler.page_size", flags.PageSize)
	v.Set("crawler.max_runtime", flags.MaxRuntime.String())
	v.Set("crawler.max_attempts", flags.MaxAttempts)
	v.Set("crawler.initial_retry_delay", flags.RetryDelay.String())
	v.Set("crawler.page_delay", flags.PageDelay.String())

	v.Set("classifier.locales", splitList(flags.Locales))
	v.Set("classifier.rules_file", flags.RulesFile)

	v.Set("output.format", flags.Format)

	return config.NewFromViper(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
