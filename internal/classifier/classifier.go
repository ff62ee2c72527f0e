// Package classifier sorts lead replies into interested and not interested
// using an ordered cascade of text and CRM rules.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Classifier implements core.LeadClassifier. It holds no mutable state and
// may be shared between goroutines.
type Classifier struct {
	negative    []*regexp.Regexp
	positive    []string
	statusTerms map[string]struct{}
	labelStems  []string
	noteTerms   []string
	logger      *zap.Logger
}

// New compiles a rule set into a classifier
func New(rules RuleSet, logger *zap.Logger) (*Classifier, error) {
	c := &Classifier{
		statusTerms: make(map[string]struct{}, len(rules.StatusTerms)),
		logger:      logger,
	}

	for _, p := range rules.NegativePatterns {
		re, err := regexp.Compile(norm.NFC.String(p))
		if err != nil {
			return nil, fmt.Errorf("invalid negative pattern %q: %w", p, err)
		}
		c.negative = append(c.negative, re)
	}
	c.positive = normalizeAll(rules.PositiveKeywords)
	for _, term := range normalizeAll(rules.StatusTerms) {
		c.statusTerms[term] = struct{}{}
	}
	c.labelStems = normalizeAll(rules.LabelStems)
	c.noteTerms = normalizeAll(rules.NoteTerms)

	return c, nil
}

func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = utils.NormalizeText(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Classify returns only the classification of an email
func (c *Classifier) Classify(email *core.EmailRecord) core.Classification {
	return c.Decide(email).Classification
}

// Decide runs the rule cascade. The first matching rule wins:
// negative text patterns, positive keywords, then the lead's CRM fields.
// Anything else is not interested.
func (c *Classifier) Decide(email *core.EmailRecord) core.Decision {
	d := c.decide(email)

	fields := []zap.Field{
		zap.String("classification", string(d.Classification)),
		zap.String("rule", string(d.Rule)),
	}
	if email != nil {
		fields = append(fields, zap.String("email_id", email.ID))
	}
	if d.Match != "" {
		fields = append(fields, zap.String("match", d.Match))
	}
	c.logger.Debug("Email classified", fields...)

	return d
}

func (c *Classifier) decide(email *core.EmailRecord) core.Decision {
	if email == nil {
		return core.Decision{Classification: core.NonInterested, Rule: core.RuleDefault}
	}

	text := utils.NormalizeText(email.Subject + " " + email.ContentPreview)

	for _, re := range c.negative {
		if re.MatchString(text) {
			return core.Decision{Classification: core.NonInterested, Rule: core.RuleNegativePattern, Match: re.String()}
		}
	}

	for _, kw := range c.positive {
		if strings.Contains(text, kw) {
			return core.Decision{Classification: core.Interested, Rule: core.RulePositiveKeyword, Match: kw}
		}
	}

	if d, ok := c.decideLeadData(email.LeadData); ok {
		return d
	}

	return core.Decision{Classification: core.NonInterested, Rule: core.RuleDefault}
}

// decideLeadData consults the CRM fields, used only when the text is silent
func (c *Classifier) decideLeadData(lead *core.LeadData) (core.Decision, bool) {
	if lead == nil {
		return core.Decision{}, false
	}
	interested := func(rule core.Rule, match string) (core.Decision, bool) {
		return core.Decision{Classification: core.Interested, Rule: rule, Match: match}, true
	}

	if status := utils.NormalizeText(string(lead.Status)); status != "" {
		if _, ok := c.statusTerms[status]; ok {
			return interested(core.RuleLeadStatus, status)
		}
	}
	if status := utils.NormalizeText(string(lead.InterestStatus)); status != "" {
		if _, ok := c.statusTerms[status]; ok {
			return interested(core.RuleLeadInterestStatus, status)
		}
	}
	for _, label := range lead.Labels {
		label = utils.NormalizeText(label)
		for _, stem := range c.labelStems {
			if strings.Contains(label, stem) {
				return interested(core.RuleLeadLabels, label)
			}
		}
	}
	if note := utils.NormalizeText(string(lead.Note)); note != "" {
		for _, term := range c.noteTerms {
			if strings.Contains(note, term) {
				return interested(core.RuleLeadNote, term)
			}
		}
	}
	return core.Decision{}, false
}
