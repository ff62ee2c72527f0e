package instantly

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mikey/lead-triage/internal/utils"
)

// errorEnvelope is the error body the API returns on failures
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPError is a sanitized summary of a non-2xx response. Every HTTPError
// is treated as transient by the fetcher.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	// Snippet is a truncated hint for responses without a JSON error body
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "mailbox http error"
	}
	parts := []string{fmt.Sprintf("mailbox api error: status=%s", strings.TrimSpace(e.Status))}
	if e.Message != "" {
		parts = append(parts, "message="+e.Message)
	}
	if e.Snippet != "" {
		parts = append(parts, "body="+e.Snippet)
	}
	return strings.Join(parts, " ")
}

// Temporary reports that the request may succeed if retried
func (e *HTTPError) Temporary() bool {
	return true
}

func newHTTPError(resp *http.Response, body []byte, tp *utils.TextProcessor) error {
	h := &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		h.Message = strings.TrimSpace(env.Message)
		if h.Message == "" {
			h.Message = strings.TrimSpace(env.Error)
		}
		if h.Message != "" {
			return h
		}
	}

	h.Snippet = strings.TrimSpace(tp.Preview(body, 256))
	return h
}
