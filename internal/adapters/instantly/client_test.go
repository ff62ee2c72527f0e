package instantly

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/crawler"
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
)

func newTestClient(url string, timeout time.Duration) *Client {
	logger := zap.NewNop()
	return NewClient(url+"/", "test-key", timeout, logger, utils.NewTextProcessor(logger))
}

func TestListUnread_SendsQueryAndDecodes(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("path = %q, want /emails", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": "e1",
					"subject": "Re: demo",
					"content_preview": "Mi interessa",
					"timestamp_created": "2024-05-01T10:00:00.000Z",
					"from_address_email": "lead@example.com",
					"to_address_email_list": "sales@example.com, ceo@example.com",
					"thread_id": "t1",
					"lead_data": {"status": "Interessato", "labels": ["hot", 3], "note": "richiamare"}
				},
				{
					"id": "e2",
					"timestamp_created": "2024-05-01T09:00:00.000Z",
					"to_address_email_list": ["sales@example.com"]
				}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	page, err := c.ListUnread(context.Background(), core.PageParams{
		Limit:           50,
		Offset:          100,
		SortOrder:       "desc",
		UnreadOnly:      true,
		IncludeLeadData: true,
		CreatedBefore:   "2024-05-01T11:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("ListUnread: %v", err)
	}

	wantQuery := map[string]string{
		"limit":             "50",
		"offset":            "100",
		"sort_order":        "desc",
		"is_unread":         "true",
		"include_lead_data": "true",
		"created_before":    "2024-05-01T11:00:00.000Z",
	}
	for k, v := range wantQuery {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	first := page.Items[0]
	if first.ID != "e1" || first.ContentPreview != "Mi interessa" || first.ThreadID != "t1" {
		t.Fatalf("unexpected first item: %+v", first)
	}
	if len(first.ToAddressEmailList) != 2 || first.ToAddressEmailList[1] != "ceo@example.com" {
		t.Fatalf("to list = %v", first.ToAddressEmailList)
	}
	if first.LeadData == nil || first.LeadData.Status != "Interessato" {
		t.Fatalf("lead data = %+v", first.LeadData)
	}
	if labels := first.LeadData.Labels; len(labels) != 2 || labels[1] != "3" {
		t.Fatalf("labels = %v", labels)
	}
	if second := page.Items[1]; second.LeadData != nil || len(second.ToAddressEmailList) != 1 {
		t.Fatalf("unexpected second item: %+v", second)
	}
}

func TestListUnread_OmitsCursorWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["created_before"]; ok {
			t.Errorf("created_before should be omitted")
		}
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListUnread: %v", err)
	}
	if len(page.Items) != 0 {
		t.Fatalf("expected empty page")
	}
}

func TestListUnread_NonSuccessIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{})
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if herr.StatusCode != http.StatusTooManyRequests || herr.Message != "rate limit exceeded" {
		t.Fatalf("unexpected error: %+v", herr)
	}
	if !core.Temporary(err) {
		t.Fatal("HTTP errors should be temporary")
	}
}

func TestListUnread_PlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream\nunavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{})
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if herr.Snippet != "upstream unavailable" {
		t.Fatalf("snippet = %q", herr.Snippet)
	}
}

func TestListUnread_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(srv.URL, 20*time.Millisecond).ListUnread(context.Background(), core.PageParams{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !core.Temporary(err) {
		t.Fatalf("timeout should be temporary: %v", err)
	}
}

func TestListUnread_MalformedBodyIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{})
	if err == nil {
		t.Fatal("expected decode error")
	}
	if core.Temporary(err) {
		t.Fatalf("decode errors should not be temporary: %v", err)
	}
}

func TestListUnread_LenientLeadData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"id": "a", "lead_data": {"labels": "hot", "status": 1, "interest_status": null, "note": true}},
			{"id": "b", "lead_data": {"labels": null, "status": "Interessato"}},
			{"id": "c", "lead_data": {"labels": ""}}
		]}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{})
	if err != nil {
		t.Fatalf("ListUnread: %v", err)
	}
	if len(page.Items) != 3 || page.Skipped != 0 {
		t.Fatalf("items=%d skipped=%d", len(page.Items), page.Skipped)
	}

	a := page.Items[0].LeadData
	if len(a.Labels) != 1 || a.Labels[0] != "hot" {
		t.Fatalf("labels = %v", a.Labels)
	}
	if a.Status != "1" || a.InterestStatus != "" || a.Note != "true" {
		t.Fatalf("unexpected lead data %+v", a)
	}
	if b := page.Items[1].LeadData; b.Labels != nil || b.Status != "Interessato" {
		t.Fatalf("unexpected lead data %+v", b)
	}
	if c := page.Items[2].LeadData; len(c.Labels) != 0 {
		t.Fatalf("labels = %v", c.Labels)
	}
}

func TestListUnread_SkipsUndecodableRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [
			{"id": "a"},
			{"id": 42},
			{"id": "c", "lead_data": {"labels": {"nested": true}}},
			{"id": "d"}
		]}`))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL, time.Second).ListUnread(context.Background(), core.PageParams{})
	if err != nil {
		t.Fatalf("ListUnread: %v", err)
	}
	if page.Skipped != 2 || page.Received() != 4 {
		t.Fatalf("skipped=%d received=%d", page.Skipped, page.Received())
	}
	if len(page.Items) != 2 || page.Items[0].ID != "a" || page.Items[1].ID != "d" {
		t.Fatalf("unexpected items %+v", page.Items)
	}
}

func TestCrawl_OddRecordDoesNotStallCrawl(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"items": [
			{"id": "e1", "timestamp_created": "2024-05-01T10:00:03.000Z"},
			{"id": "e2", "timestamp_created": "2024-05-01T10:00:02.000Z"},
			{"id": "e3", "timestamp_created": "2024-05-01T10:00:01.000Z"},
			{"id": "bad", "lead_data": {"labels": "hot"}},
			{"id": 7}
		]}`))
	}))
	defer srv.Close()

	c := crawler.New(newTestClient(srv.URL, time.Second), crawler.Options{
		PageSize:   50,
		MaxRuntime: 300 * time.Millisecond,
		ErrorPause: 20 * time.Millisecond,
	}, zap.NewNop())

	got := c.Crawl(context.Background())
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	if n := requests.Load(); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}
