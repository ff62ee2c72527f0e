package core

import (
	"context"
	"errors"
	"fmt"
)

// MailboxClient defines the interface for listing unread emails from the provider
type MailboxClient interface {
	// ListUnread fetches one page of unread emails
	ListUnread(ctx context.Context, params PageParams) (*PageResult, error)
}

// LeadCrawler collects every unread email the provider will give us
type LeadCrawler interface {
	// Crawl never fails; it returns whatever was collected
	Crawl(ctx context.Context) []EmailRecord
}

// LeadClassifier decides whether a lead shows interest
type LeadClassifier interface {
	Decide(email *EmailRecord) Decision
}

// CacheRepository defines the interface for remembering triaged leads
type CacheRepository interface {
	// Get retrieves a cached entry for an email id
	Get(ctx context.Context, emailID string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, emailID string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// TransientError marks a failure that is worth retrying, such as a timeout
// or a connection reset.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Temporary reports whether an error should be retried. Adapters can opt in
// by returning a *TransientError or any error with a Temporary() bool method
// that returns true.
func Temporary(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}
