package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mikey/lead-triage/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleResult() *core.TriageResult {
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &core.TriageResult{
		RunID:     "run-1",
		StartedAt: seen,
		Duration:  1500 * time.Millisecond,
		Interested: []core.TriagedLead{{
			Email: core.EmailRecord{
				ID:                 "e1",
				Subject:            "Re: demo",
				ContentPreview:     "Mi interessa",
				FromAddressEmail:   "lead@example.com",
				ToAddressEmailList: core.AddressList{"sales@example.com"},
				TimestampCreated:   "2024-05-01T10:00:00Z",
			},
			Decision:  core.Decision{Classification: core.Interested, Rule: core.RulePositiveKeyword, Match: "mi interessa"},
			FirstSeen: seen,
		}},
		NotInterested: []core.TriagedLead{{
			Email:     core.EmailRecord{ID: "e2", Subject: "No grazie", FromAddressEmail: "other@example.com"},
			Decision:  core.Decision{Classification: core.NonInterested, Rule: core.RuleNegativePattern},
			FirstSeen: seen.Add(-time.Hour),
			Known:     true,
		}},
		Total: 2,
	}
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONSink(&buf, false).Emit(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var doc struct {
		Interested []struct {
			ID                 string   `json:"id"`
			ToAddressEmailList []string `json:"to_address_email_list"`
			Triage             struct {
				Classification string `json:"classification"`
				Rule           string `json:"rule"`
				Known          bool   `json:"known"`
			} `json:"triage"`
		} `json:"interested"`
		NotInterested []json.RawMessage `json:"not_interested"`
		Total         int               `json:"total"`
		DurationMS    int64             `json:"duration_ms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if doc.Total != 2 || len(doc.Interested) != 1 || len(doc.NotInterested) != 1 {
		t.Fatalf("unexpected document: %s", buf.String())
	}
	lead := doc.Interested[0]
	if lead.ID != "e1" || lead.Triage.Classification != "interested" || lead.Triage.Rule != "positive_keyword" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if len(lead.ToAddressEmailList) != 1 {
		t.Fatalf("to list = %v", lead.ToAddressEmailList)
	}
	if doc.DurationMS != 1500 {
		t.Fatalf("duration_ms = %d", doc.DurationMS)
	}
}

func TestJSONSinkEmptyQueuesAreArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONSink(&buf, true).Emit(context.Background(), &core.TriageResult{RunID: "r"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"interested": []`) || !strings.Contains(out, `"not_interested": []`) {
		t.Fatalf("expected empty arrays, got %s", out)
	}
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextSink(&buf, true).Emit(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Unread emails: 2",
		"Interested: 1",
		"Not interested: 1",
		"New since last run: 1",
		"lead@example.com",
		"[positive_keyword]",
		"Mi interessa",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogSinkSkipsKnownLeads(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	s := NewLogSink(zap.New(obsCore))
	if err := s.Emit(context.Background(), sampleResult()); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if n := logs.FilterMessage("New interested lead").Len(); n != 1 {
		t.Fatalf("expected 1 interested log line, got %d", n)
	}
	if n := logs.FilterMessage("New lead without interest").Len(); n != 0 {
		t.Fatalf("known lead should not be logged, got %d lines", n)
	}
	entry := logs.FilterMessage("New interested lead").All()[0]
	if got := entry.ContextMap()["email_id"]; got != "e1" {
		t.Fatalf("email_id = %v", got)
	}
}

func TestNopSink(t *testing.T) {
	var s NopSink
	if err := s.Emit(context.Background(), sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
