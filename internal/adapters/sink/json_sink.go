package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mikey/lead-triage/internal/core"
)

// JSONSink writes each triage result as one JSON document
type JSONSink struct {
	w      io.Writer
	indent bool
}

// NewJSONSink creates a sink writing to w
func NewJSONSink(w io.Writer, indent bool) *JSONSink {
	return &JSONSink{w: w, indent: indent}
}

type jsonDocument struct {
	RunID         string     `json:"run_id"`
	StartedAt     time.Time  `json:"started_at"`
	DurationMS    int64      `json:"duration_ms"`
	Interested    []jsonLead `json:"interested"`
	NotInterested []jsonLead `json:"not_interested"`
	Total         int        `json:"total"`
}

type jsonLead struct {
	core.EmailRecord
	Triage jsonTriage `json:"triage"`
}

type jsonTriage struct {
	Classification core.Classification `json:"classification"`
	Rule           core.Rule           `json:"rule"`
	Match          string              `json:"match,omitempty"`
	FirstSeen      time.Time           `json:"first_seen"`
	Known          bool                `json:"known"`
}

func toJSONLeads(leads []core.TriagedLead) []jsonLead {
	out := make([]jsonLead, 0, len(leads))
	for _, l := range leads {
		out = append(out, jsonLead{
			EmailRecord: l.Email,
			Triage: jsonTriage{
				Classification: l.Decision.Classification,
				Rule:           l.Decision.Rule,
				Match:          l.Decision.Match,
				FirstSeen:      l.FirstSeen,
				Known:          l.Known,
			},
		})
	}
	return out
}

// Emit writes the result document
func (s *JSONSink) Emit(ctx context.Context, result *core.TriageResult) error {
	doc := jsonDocument{
		RunID:         result.RunID,
		StartedAt:     result.StartedAt,
		DurationMS:    result.Duration.Milliseconds(),
		Interested:    toJSONLeads(result.Interested),
		NotInterested: toJSONLeads(result.NotInterested),
		Total:         result.Total,
	}

	enc := json.NewEncoder(s.w)
	if s.indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write triage result: %w", err)
	}
	return nil
}

// Close is a no-op; the writer belongs to the caller
func (s *JSONSink) Close() error {
	return nil
}
