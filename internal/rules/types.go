// Package rules defines the security rule model the scanner evaluates:
// regex patterns over source text with severity, enforcement class, and
// two-stage allow-listing (file globs, then context-window patterns).
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

const APIVersion = "glueful-security/v1"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Enforcement classifies what a match does to a run: blocking rules
// fail enforcement builds, warning rules are reported but never fail,
// advisory rules are heuristic and only ever surface for human review.
type Enforcement string

const (
	EnforcementBlocking Enforcement = "blocking"
	EnforcementWarning  Enforcement = "warning"
	EnforcementAdvisory Enforcement = "advisory"
)

// Rule is one text-level detector. Pattern is a Go regular expression
// applied to full file text. AllowedFiles are path globs exempting
// whole files (the factory's own implementation, test files);
// AllowedContexts are patterns tested against a fixed window of text
// around each match, exempting matches the surrounding code already
// neutralizes (an escaping call wrapping the interpolation). MaxMatches
// caps matches per file so degenerate input cannot hang a scan.
//
// EnforceSeverity and EnforceEnforcement, when set, replace Severity and
// Enforcement during enforcement-mode scans. A rule that only warns in
// advisory runs can escalate to a build-blocking class when the same
// match is found by the build gate.
type Rule struct {
	Name               string      `yaml:"name" json:"name"`
	Pattern            string      `yaml:"pattern" json:"pattern"`
	Severity           Severity    `yaml:"severity" json:"severity"`
	Enforcement        Enforcement `yaml:"enforcement" json:"enforcement"`
	EnforceSeverity    Severity    `yaml:"enforce_severity,omitempty" json:"enforce_severity,omitempty"`
	EnforceEnforcement Enforcement `yaml:"enforce_enforcement,omitempty" json:"enforce_enforcement,omitempty"`
	Message            string      `yaml:"message" json:"message"`
	AllowedFiles       []string    `yaml:"allowed_files,omitempty" json:"allowed_files,omitempty"`
	AllowedContexts    []string    `yaml:"allowed_contexts,omitempty" json:"allowed_contexts,omitempty"`
	MaxMatches         int         `yaml:"max_matches,omitempty" json:"max_matches,omitempty"`
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Validate checks one rule definition. Pattern compilation is deferred
// to the scanner engine, which treats a failure as a startup-time
// configuration error.
func Validate(r Rule) error {
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("invalid rule name %q (want lowercase slug)", r.Name)
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("rule %q: pattern is required", r.Name)
	}
	switch r.Severity {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
	default:
		return fmt.Errorf("rule %q: invalid severity %q", r.Name, r.Severity)
	}
	switch r.Enforcement {
	case EnforcementBlocking, EnforcementWarning, EnforcementAdvisory:
	default:
		return fmt.Errorf("rule %q: invalid enforcement %q", r.Name, r.Enforcement)
	}
	switch r.EnforceSeverity {
	case "", SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
	default:
		return fmt.Errorf("rule %q: invalid enforce_severity %q", r.Name, r.EnforceSeverity)
	}
	switch r.EnforceEnforcement {
	case "", EnforcementBlocking, EnforcementWarning, EnforcementAdvisory:
	default:
		return fmt.Errorf("rule %q: invalid enforce_enforcement %q", r.Name, r.EnforceEnforcement)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("rule %q: message is required", r.Name)
	}
	if r.MaxMatches < 0 {
		return fmt.Errorf("rule %q: max_matches must be >= 0", r.Name)
	}
	return nil
}

// ValidateUniqueNames rejects duplicate rule names across a rule set.
func ValidateUniqueNames(ruleSet []Rule) error {
	seen := make(map[string]struct{}, len(ruleSet))
	for _, r := range ruleSet {
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}
