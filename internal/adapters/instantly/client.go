package instantly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
)

// previewSize is how much of each response body is logged at debug level
const previewSize = 500

// Client is an implementation of the MailboxClient interface over the
// Instantly email listing API
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new mailbox client. The baseURL is the API root,
// e.g. https://api.instantly.ai/api/v2.
func NewClient(
	baseURL string,
	apiKey string,
	timeout time.Duration,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ListUnread fetches one page of unread emails
func (c *Client) ListUnread(ctx context.Context, params core.PageParams) (*core.PageResult, error) {
	endpoint := c.baseURL + "/emails"
	query := buildQuery(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Mailbox API request",
		zap.String("url", endpoint),
		zap.String("query", query.Encode()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &core.TransientError{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.TransientError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("Mailbox API response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", c.textProcessor.Preview(body, previewSize)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp, body, c.textProcessor)
	}

	return c.decodePage(body)
}

// rawPage defers decoding of each item so one bad record cannot sink the page
type rawPage struct {
	Items []json.RawMessage `json:"items"`
}

// decodePage decodes a listing response. Records that fail to decode are
// skipped with a warning; only a malformed envelope is an error.
func (c *Client) decodePage(body []byte) (*core.PageResult, error) {
	var raw rawPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding email page: %w", err)
	}

	page := &core.PageResult{Items: make([]core.EmailRecord, 0, len(raw.Items))}
	for i, item := range raw.Items {
		var email core.EmailRecord
		if err := json.Unmarshal(item, &email); err != nil {
			c.logger.Warn("Skipping undecodable email record",
				zap.Int("index", i),
				zap.String("record", c.textProcessor.Preview(item, previewSize)),
				zap.Error(err))
			page.Skipped++
			continue
		}
		page.Items = append(page.Items, email)
	}
	return page, nil
}

func buildQuery(params core.PageParams) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("offset", strconv.Itoa(params.Offset))
	if params.SortOrder != "" {
		q.Set("sort_order", params.SortOrder)
	}
	if params.UnreadOnly {
		q.Set("is_unread", "true")
	}
	if params.IncludeLeadData {
		q.Set("include_lead_data", "true")
	}
	if params.CreatedBefore != "" {
		q.Set("created_before", params.CreatedBefore)
	}
	return q
}
