package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TriageService is the core service that crawls unread leads and sorts them
// into interested and not interested queues
type TriageService struct {
	crawler      LeadCrawler
	classifier   LeadClassifier
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	now          func() time.Time
}

// NewTriageService creates a new triage service
func NewTriageService(
	crawler LeadCrawler,
	classifier LeadClassifier,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *TriageService {
	return &TriageService{
		crawler:      crawler,
		classifier:   classifier,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Triage runs one crawl and classifies every collected email. It never
// fails because of the mailbox; a flaky provider yields a partial result.
func (s *TriageService) Triage(ctx context.Context) (*TriageResult, error) {
	started := s.now()
	result := &TriageResult{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	emails := s.crawler.Crawl(ctx)
	for i := range emails {
		lead := s.classify(ctx, logger, &emails[i])
		if lead.Decision.Classification == Interested {
			result.Interested = append(result.Interested, lead)
		} else {
			result.NotInterested = append(result.NotInterested, lead)
		}
	}

	result.Total = len(emails)
	result.Duration = s.now().Sub(started)

	logger.Info("Triage finished",
		zap.Int("total", result.Total),
		zap.Int("interested", len(result.Interested)),
		zap.Int("not_interested", len(result.NotInterested)),
		zap.Int("new", result.NewCount()),
		zap.Duration("duration", result.Duration))

	return result, ctx.Err()
}

// classify decides one email and records it in the cache if enabled
func (s *TriageService) classify(ctx context.Context, logger *zap.Logger, email *EmailRecord) TriagedLead {
	decision := s.classifier.Decide(email)
	lead := TriagedLead{
		Email:     *email,
		Decision:  decision,
		FirstSeen: s.now(),
	}

	if !s.cacheEnabled {
		return lead
	}

	// A lead classified in an earlier run keeps its original first-seen time.
	// The decision itself is recomputed since the lead data may have changed.
	if entry, err := s.cache.Get(ctx, email.ID); err == nil {
		lead.Known = true
		lead.FirstSeen = entry.FirstSeen
		if entry.Classification != decision.Classification {
			logger.Info("Lead classification changed",
				zap.String("email_id", email.ID),
				zap.String("previous", string(entry.Classification)),
				zap.String("current", string(decision.Classification)))
		}
	}

	entry := &CacheEntry{
		EmailID:        email.ID,
		Classification: decision.Classification,
		Rule:           decision.Rule,
		FirstSeen:      lead.FirstSeen,
		ExpiresAt:      s.now().Add(s.cacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		logger.Error("Failed to update cache", zap.Error(err), zap.String("email_id", email.ID))
	}

	return lead
}
