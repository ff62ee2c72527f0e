package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is the vocabulary the classifier matches against. Patterns and
// terms are matched against lowercased, NFC-normalised text.
type RuleSet struct {
	// NegativePatterns are regular expressions signalling disinterest.
	// Any match wins over every other rule.
	NegativePatterns []string `yaml:"negative_patterns"`
	// PositiveKeywords are substrings signalling interest
	PositiveKeywords []string `yaml:"positive_keywords"`
	// StatusTerms are compared for equality with lead status fields
	StatusTerms []string `yaml:"status_terms"`
	// LabelStems are searched for inside each lead label
	LabelStems []string `yaml:"label_stems"`
	// NoteTerms are searched for inside the lead note
	NoteTerms []string `yaml:"note_terms"`
}

var builtinRules = map[string]RuleSet{
	"it": {
		NegativePatterns: []string{
			`\bnon\s+(?:(?:sono|siamo|mi|abbiamo|ha|ho)\s+)?interess\w*\b`,
			`\bno,?\s+grazie\b`,
			`\bnon\s+lo\s+valutiamo\b`,
			`\bnon\s+è\s+per\s+noi\b`,
			`\bnon\s+fa\s+per\s+noi\b`,
		},
		PositiveKeywords: []string{
			"interessato", "interessata", "interessati", "interessate", "interesse",
			"mi interessa", "sono interessato", "sono interessata",
			"mi interessa approfondire", "mi piacerebbe saperne di più",
			"fissiamo una call", "contattami", "contattatemi", "sono disponibile",
			"ok, mi interessa", "perfetto, parliamone", "vorrei fissare un appuntamento",
		},
		StatusTerms: []string{"interested", "interesse", "interessato", "interessata"},
		LabelStems:  []string{"interess"},
		NoteTerms:   []string{"interessato", "interessata", "interesse", "interested"},
	},
	"en": {
		NegativePatterns: []string{
			`\bnot\s+(?:really\s+|currently\s+)?interested\b`,
			`\bno,?\s+thanks?\b`,
			`\bno,?\s+thank\s+you\b`,
			`\bnot\s+(?:a\s+)?(?:good\s+)?fit\b`,
			`\bnot\s+for\s+us\b`,
		},
		PositiveKeywords: []string{
			"interested", "i'm interested", "we are interested",
			"tell me more", "let's talk", "lets talk", "let's chat",
			"book a call", "schedule a call", "set up a call", "sounds good",
			"i am available", "happy to chat",
		},
		StatusTerms: []string{"interested"},
		LabelStems:  []string{"interest"},
		NoteTerms:   []string{"interested"},
	},
}

// DefaultLocale is used when no locale is configured
const DefaultLocale = "it"

// Locales returns the names of the built-in rule sets
func Locales() []string {
	return []string{"it", "en"}
}

// RulesForLocales merges the built-in rule sets of the given locales in
// order. An empty list selects DefaultLocale.
func RulesForLocales(locales []string) (RuleSet, error) {
	if len(locales) == 0 {
		locales = []string{DefaultLocale}
	}
	var merged RuleSet
	for _, loc := range locales {
		rs, ok := builtinRules[strings.ToLower(strings.TrimSpace(loc))]
		if !ok {
			return RuleSet{}, fmt.Errorf("unsupported classifier locale %q (supported: %s)", loc, strings.Join(Locales(), ", "))
		}
		merged = merged.Merge(rs)
	}
	return merged, nil
}

// LoadRuleSet reads a rule set from a YAML file
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rs, nil
}

// Merge returns the union of both rule sets. Order is kept and duplicates
// are dropped.
func (r RuleSet) Merge(other RuleSet) RuleSet {
	return RuleSet{
		NegativePatterns: union(r.NegativePatterns, other.NegativePatterns),
		PositiveKeywords: union(r.PositiveKeywords, other.PositiveKeywords),
		StatusTerms:      union(r.StatusTerms, other.StatusTerms),
		LabelStems:       union(r.LabelStems, other.LabelStems),
		NoteTerms:        union(r.NoteTerms, other.NoteTerms),
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
