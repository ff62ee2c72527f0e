package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Classification is the outcome of interest classification for a lead
type Classification string

const (
	Interested    Classification = "interested"
	NonInterested Classification = "non_interested"
)

// Rule identifies which step of the classification cascade produced a decision
type Rule string

const (
	RuleNegativePattern    Rule = "negative_pattern"
	RulePositiveKeyword    Rule = "positive_keyword"
	RuleLeadStatus         Rule = "lead_status"
	RuleLeadInterestStatus Rule = "lead_interest_status"
	RuleLeadLabels         Rule = "lead_labels"
	RuleLeadNote           Rule = "lead_note"
	RuleDefault            Rule = "default"
)

// EmailRecord represents an unread inbound email as returned by the mailbox provider
type EmailRecord struct {
	ID                 string      `json:"id"`
	Subject            string      `json:"subject"`
	ContentPreview     string      `json:"content_preview"`
	TimestampCreated   string      `json:"timestamp_created"`
	LeadData           *LeadData   `json:"lead_data,omitempty"`
	FromAddressEmail   string      `json:"from_address_email"`
	ToAddressEmailList AddressList `json:"to_address_email_list"`
	ThreadID           string      `json:"thread_id"`
}

// LeadData holds the CRM fields the provider attaches to a lead
type LeadData struct {
	Status         FlexString `json:"status"`
	InterestStatus FlexString `json:"interest_status"`
	Labels         Labels     `json:"labels"`
	Note           FlexString `json:"note"`
}

// FlexString is a CRM text field. Numbers and booleans are stringified and
// null decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexString(t)
	case float64, bool:
		*f = FlexString(fmt.Sprint(t))
	default:
		return fmt.Errorf("expected a scalar, got %T", v)
	}
	return nil
}

// AddressList accepts either a JSON array of addresses or a single
// comma separated string.
type AddressList []string

// UnmarshalJSON implements json.Unmarshaler
func (a *AddressList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}

	var joined *string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("to_address_email_list: expected list or string: %w", err)
	}
	if joined == nil || strings.TrimSpace(*joined) == "" {
		*a = nil
		return nil
	}

	parts := strings.Split(*joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*a = out
	return nil
}

// Labels is a list of CRM labels. Non-string scalars are stringified and a
// bare scalar is read as a single label.
type Labels []string

// UnmarshalJSON implements json.Unmarshaler
func (l *Labels) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	var raw []any
	switch t := v.(type) {
	case nil:
		*l = nil
		return nil
	case []any:
		raw = t
	case string:
		if strings.TrimSpace(t) == "" {
			*l = nil
			return nil
		}
		raw = []any{t}
	case float64, bool:
		raw = []any{t}
	default:
		return fmt.Errorf("labels: unexpected %T", v)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(v))
	}
	*l = out
	return nil
}

// PageParams describes one request against the unread listing endpoint
type PageParams struct {
	Limit           int
	Offset          int
	SortOrder       string
	UnreadOnly      bool
	IncludeLeadData bool
	// CreatedBefore is empty when no cursor has been established yet
	CreatedBefore string
}

// PageResult is one page of the unread listing
type PageResult struct {
	Items []EmailRecord `json:"items"`
	// Skipped counts records the client dropped because they did not decode
	Skipped int `json:"-"`
}

// Received is the number of records the provider sent, decodable or not
func (p *PageResult) Received() int {
	return len(p.Items) + p.Skipped
}

// Decision is a classification together with the rule that produced it
type Decision struct {
	Classification Classification
	Rule           Rule
	// Match is the pattern, keyword or term that fired, empty for the default rule
	Match string
}

// TriagedLead is a crawled email with its classification
type TriagedLead struct {
	Email     EmailRecord
	Decision  Decision
	FirstSeen time.Time
	// Known is true when an earlier triage run already classified this email
	Known bool
}

// TriageResult is the output of one crawl-and-classify run
type TriageResult struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Interested    []TriagedLead
	NotInterested []TriagedLead
	Total         int
}

// NewCount returns how many leads in the result were not known from earlier runs
func (r *TriageResult) NewCount() int {
	n := 0
	for _, queue := range [][]TriagedLead{r.Interested, r.NotInterested} {
		for _, lead := range queue {
			if !lead.Known {
				n++
			}
		}
	}
	return n
}

// CacheEntry records a previously classified lead
type CacheEntry struct {
	EmailID        string
	Classification Classification
	Rule           Rule
	FirstSeen      time.Time
	ExpiresAt      time.Time
}
