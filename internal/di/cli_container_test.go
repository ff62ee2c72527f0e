package di

import (
	"flag"
	"reflect"
	"testing"
	"time"

	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/ports"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("lead-check", flag.ContinueOnError)
	flags := parseFlags(fs, []string{
		"-api-key", "k",
		"-page-size", "20",
		"-max-runtime", "2m",
		"-locale", "it, en",
		"-format", "json",
	})

	if flags.APIKey != "k" || flags.PageSize != 20 || flags.MaxRuntime != 2*time.Minute {
		t.Fatalf("unexpected flags: %+v", flags)
	}
	if flags.MaxAttempts != 5 || flags.RetryDelay != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", flags)
	}

	cfg := createConfigFromFlags(flags)
	crawlerCfg, err := cfg.GetCrawler()
	if err != nil {
		t.Fatalf("GetCrawler: %v", err)
	}
	if crawlerCfg.PageSize != 20 || crawlerCfg.MaxRuntime != 2*time.Minute || crawlerCfg.PageDelay != time.Second {
		t.Fatalf("unexpected crawler config: %+v", crawlerCfg)
	}
	if got := cfg.GetClassifier().Locales; !reflect.DeepEqual(got, []string{"it", "en"}) {
		t.Fatalf("locales = %v", got)
	}
	if cfg.GetBool("cache.enabled") {
		t.Fatal("cache should be disabled for one-shot runs")
	}
	if cfg.GetString("output.format") != "json" {
		t.Fatalf("format = %q", cfg.GetString("output.format"))
	}
}

func TestBuildCLIContainer_ResolvesTriage(t *testing.T) {
	flags := parseFlags(flag.NewFlagSet("lead-check", flag.ContinueOnError), []string{
		"-api-key", "test-key",
		"-format", "none",
		"-locale", "en",
	})

	container, err := BuildCLIContainer(flags)
	if err != nil {
		t.Fatalf("BuildCLIContainer: %v", err)
	}

	err = container.Invoke(func(svc *core.TriageService, sink ports.ResultSink, classifier core.LeadClassifier) {
		if svc == nil || sink == nil {
			t.Fatal("missing dependencies")
		}
		d := classifier.Decide(&core.EmailRecord{ContentPreview: "No thanks, not interested"})
		if d.Classification != core.NonInterested || d.Rule != core.RuleNegativePattern {
			t.Fatalf("english rules not wired: %+v", d)
		}
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
}

func TestBuildCLIContainer_MissingAPIKey(t *testing.T) {
	flags := parseFlags(flag.NewFlagSet("lead-check", flag.ContinueOnError), []string{"-api-key", ""})

	container, err := BuildCLIContainer(flags)
	if err != nil {
		t.Fatalf("BuildCLIContainer: %v", err)
	}
	if err := container.Invoke(func(*core.TriageService) {}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestBuildCLIContainer_UnknownFormat(t *testing.T) {
	flags := parseFlags(flag.NewFlagSet("lead-check", flag.ContinueOnError), []string{"-api-key", "k", "-format", "xml"})

	container, err := BuildCLIContainer(flags)
	if err != nil {
		t.Fatalf("BuildCLIContainer: %v", err)
	}
	if err := container.Invoke(func(ports.ResultSink) {}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
