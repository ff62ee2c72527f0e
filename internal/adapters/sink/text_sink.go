package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/lead-triage/internal/core"
)

// TextSink prints a human readable summary of each triage result
type TextSink struct {
	w       io.Writer
	verbose bool
}

// NewTextSink creates a sink writing to w. In verbose mode the content
// preview of every lead is printed too.
func NewTextSink(w io.Writer, verbose bool) *TextSink {
	return &TextSink{w: w, verbose: verbose}
}

// Emit prints the result
func (s *TextSink) Emit(ctx context.Context, result *core.TriageResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== Triage Summary ===\n")
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Unread emails: %d\n", result.Total)
	fmt.Fprintf(&b, "Interested: %d\n", len(result.Interested))
	fmt.Fprintf(&b, "Not interested: %d\n", len(result.NotInterested))
	fmt.Fprintf(&b, "New since last run: %d\n", result.NewCount())
	fmt.Fprintf(&b, "Processing time: %v\n", result.Duration)

	s.writeQueue(&b, "Interested", result.Interested)
	s.writeQueue(&b, "Not interested", result.NotInterested)

	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *TextSink) writeQueue(b *strings.Builder, title string, leads []core.TriagedLead) {
	if len(leads) == 0 {
		return
	}
	fmt.Fprintf(b, "\n=== %s ===\n", title)
	for _, l := range leads {
		marker := "*"
		if l.Known {
			marker = " "
		}
		fmt.Fprintf(b, "%s %s  %-30s  %s  [%s]\n",
			marker, l.Email.TimestampCreated, l.Email.FromAddressEmail, l.Email.Subject, l.Decision.Rule)
		if s.verbose && l.Email.ContentPreview != "" {
			preview := l.Email.ContentPreview
			if r := []rune(preview); len(r) > 200 {
				preview = string(r[:200]) + "..."
			}
			fmt.Fprintf(b, "    %s\n", strings.ReplaceAll(preview, "\n", " "))
		}
	}
}

// Close is a no-op; the writer belongs to the caller
func (s *TextSink) Close() error {
	return nil
}
