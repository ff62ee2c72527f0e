package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// typographic quotes mail clients substitute for plain apostrophes
var quoteReplacer = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u00a0", " ")

// NormalizeText returns text in NFC form, lowercased, with typographic
// apostrophes folded to ASCII and surrounding space trimmed. Composed and
// decomposed accents compare equal afterwards. Safe for concurrent use.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	// cases.Caser is stateful, so one is built per call.
	lower := cases.Lower(language.Und).String(norm.NFC.String(text))
	return strings.TrimSpace(quoteReplacer.Replace(lower))
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "..."
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// Preview prepares a response body for logging: truncated to maxSize,
// invalid UTF-8 dropped, and newlines flattened.
func (tp *TextProcessor) Preview(body []byte, maxSize int) string {
	s := tp.SanitizeUTF8(tp.TruncateText(string(body), maxSize))
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
