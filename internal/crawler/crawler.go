// Package crawler walks the provider's unread listing page by page,
// deduplicating emails and narrowing a created-before cursor as it goes.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/lead-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SortDescending is the only sort order the crawler requests
const SortDescending = "desc"

type Options struct {
	PageSize   int
	MaxRuntime time.Duration

	// MaxAttempts and InitialRetryDelay configure the fetcher's backoff
	MaxAttempts       int
	InitialRetryDelay time.Duration

	// PageDelay is the minimum spacing between page requests. Set to <=0 to disable.
	PageDelay time.Duration
	// ErrorPause is how long the crawl waits after an unexpected error
	// before trying the page again.
	ErrorPause time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.MaxRuntime <= 0 {
		o.MaxRuntime = time.Hour
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialRetryDelay < 0 {
		o.InitialRetryDelay = 0
	}
	if o.ErrorPause < 0 {
		o.ErrorPause = 0
	}
	return o
}

// Crawler implements core.LeadCrawler
type Crawler struct {
	fetcher *Fetcher
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a crawler over the given mailbox client
func New(client core.MailboxClient, opts Options, logger *zap.Logger) *Crawler {
	opts = opts.withDefaults()
	return &Crawler{
		fetcher: NewFetcher(client, opts.MaxAttempts, opts.InitialRetryDelay, logger),
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// crawlState lives for a single Crawl call
type crawlState struct {
	offset  int
	cursor  string
	seen    map[string]struct{}
	results []core.EmailRecord
}

// Crawl collects every unread email, newest first, each id at most once.
// It stops on an empty or short page, after the fetcher gives up, when the
// runtime budget is spent, or when ctx is done, and in every case returns
// what it has so far. Unexpected errors pause the crawl for ErrorPause and
// the same page is tried again; only the runtime budget bounds those retries.
func (c *Crawler) Crawl(ctx context.Context) []core.EmailRecord {
	start := c.now()
	logger := c.logger.With(zap.String("crawl_id", uuid.NewString()))
	st := &crawlState{seen: make(map[string]struct{})}

	var limiter *rate.Limiter
	if c.opts.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.opts.PageDelay), 1)
	}

	logger.Info("Starting unread email crawl",
		zap.Int("page_size", c.opts.PageSize),
		zap.Duration("max_runtime", c.opts.MaxRuntime))

	for {
		if elapsed := c.now().Sub(start); elapsed >= c.opts.MaxRuntime {
			logger.Warn("Maximum runtime reached, stopping crawl", zap.Duration("elapsed", elapsed))
			break
		}
		if ctx.Err() != nil {
			logger.Info("Crawl cancelled", zap.Error(ctx.Err()))
			break
		}

		done, err := c.step(ctx, logger, limiter, st)
		if err == nil {
			if done {
				break
			}
			continue
		}

		if ctx.Err() != nil {
			logger.Info("Crawl cancelled", zap.Error(ctx.Err()))
			break
		}
		if errors.Is(err, ErrFetchExhausted) {
			logger.Error("Could not get a valid response, stopping crawl", zap.Error(err))
			break
		}

		logger.Error("Unexpected error while fetching emails, pausing",
			zap.Error(err),
			zap.Int("offset", st.offset),
			zap.Duration("pause", c.opts.ErrorPause))
		if err := c.sleep(ctx, c.opts.ErrorPause); err != nil {
			logger.Info("Crawl cancelled", zap.Error(err))
			break
		}
	}

	logger.Info("Unread email crawl finished",
		zap.Int("total", len(st.results)),
		zap.String("cursor", st.cursor),
		zap.Duration("elapsed", c.now().Sub(start)))
	return st.results
}

// step fetches and absorbs one page. It reports done when there is nothing
// left to fetch.
func (c *Crawler) step(ctx context.Context, logger *zap.Logger, limiter *rate.Limiter, st *crawlState) (done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			done, err = false, fmt.Errorf("panic during crawl step: %v", r)
		}
	}()

	params := core.PageParams{
		Limit:           c.opts.PageSize,
		Offset:          st.offset,
		SortOrder:       SortDescending,
		UnreadOnly:      true,
		IncludeLeadData: true,
		CreatedBefore:   st.cursor,
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return false, err
		}
	}

	page, err := c.fetcher.Fetch(ctx, params)
	if err != nil {
		return false, err
	}
	if page.Received() == 0 {
		logger.Info("No more unread emails")
		return true, nil
	}

	added := 0
	for _, email := range page.Items {
		if email.ID == "" {
			logger.Warn("Skipping email without id", zap.String("timestamp_created", email.TimestampCreated))
			continue
		}
		if _, ok := st.seen[email.ID]; ok {
			continue
		}
		st.seen[email.ID] = struct{}{}
		st.results = append(st.results, email)
		added++

		ts := email.TimestampCreated
		if ts != "" && (st.cursor == "" || ts < st.cursor) {
			st.cursor = ts
		}
	}

	logger.Info("Processed page of unread emails",
		zap.Int("offset", st.offset),
		zap.Int("received", page.Received()),
		zap.Int("skipped", page.Skipped),
		zap.Int("new", added),
		zap.Int("total", len(st.results)),
		zap.String("cursor", st.cursor))

	if page.Received() < c.opts.PageSize {
		logger.Info("Reached the last page of unread emails")
		return true, nil
	}

	st.offset += c.opts.PageSize
	return false, nil
}
