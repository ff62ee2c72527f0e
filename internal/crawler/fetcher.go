package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/mikey/lead-triage/internal/core"
	"go.uber.org/zap"
)

// ErrFetchExhausted is returned once every retry attempt for a page has failed
var ErrFetchExhausted = errors.New("fetch retries exhausted")

// ErrNoPage is returned when the mailbox reports success without a page
var ErrNoPage = errors.New("mailbox returned no page")

// Fetcher requests one page from the mailbox with bounded exponential backoff
type Fetcher struct {
	client       core.MailboxClient
	maxAttempts  int
	initialDelay time.Duration
	logger       *zap.Logger
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a new fetcher. maxAttempts below 1 is treated as 1.
func NewFetcher(client core.MailboxClient, maxAttempts int, initialDelay time.Duration, logger *zap.Logger) *Fetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		client:       client,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		logger:       logger,
		sleep:        sleepContext,
	}
}

// Fetch requests one page. Transient failures are retried, waiting
// initialDelay * 2^attempt between attempts. When every attempt fails the
// returned error wraps ErrFetchExhausted. Other failures are returned as is.
func (f *Fetcher) Fetch(ctx context.Context, params core.PageParams) (*core.PageResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f.logger.Debug("Requesting unread emails",
			zap.Int("attempt", attempt+1),
			zap.Int("limit", params.Limit),
			zap.Int("offset", params.Offset),
			zap.String("created_before", params.CreatedBefore))

		page, err := f.client.ListUnread(ctx, params)
		if err == nil && page == nil {
			return nil, ErrNoPage
		}
		if err == nil {
			f.logger.Debug("Received unread emails",
				zap.Int("offset", params.Offset),
				zap.Int("count", len(page.Items)),
				zap.Int("skipped", page.Skipped))
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt == f.maxAttempts-1 {
			break
		}
		wait := backoffDelay(f.initialDelay, attempt)
		f.logger.Warn("Request attempt failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", f.maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := f.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	f.logger.Error("All request attempts failed",
		zap.Int("attempts", f.maxAttempts),
		zap.Error(lastErr))
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrFetchExhausted, f.maxAttempts, lastErr)
}

// backoffDelay returns initial * 2^attempt
func backoffDelay(initial time.Duration, attempt int) time.Duration {
	return initial << uint(attempt)
}

func isTransient(err error) bool {
	if core.Temporary(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
