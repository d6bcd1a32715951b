// Package gate turns a violation set into a build decision. The
// decision is a pure function of the violations for one run; nothing is
// persisted between runs.
package gate

import (
	"github.com/glueful/vs-code-extension/internal/rules"
	"github.com/glueful/vs-code-extension/internal/scanner"
)

// Decision partitions one run's violations by enforcement class.
type Decision struct {
	Passed   bool                `json:"passed"`
	Blocking []scanner.Violation `json:"blocking,omitempty"`
	Warning  []scanner.Violation `json:"warning,omitempty"`
	Advisory []scanner.Violation `json:"advisory,omitempty"`
}

// Evaluate applies enforcement semantics: any blocking violation fails
// the run; warning and advisory violations are reported but never fail.
func Evaluate(violations []scanner.Violation) Decision {
	d := Decision{Passed: true}
	for _, v := range violations {
		switch v.Enforcement {
		case rules.EnforcementBlocking:
			d.Blocking = append(d.Blocking, v)
			d.Passed = false
		case rules.EnforcementWarning:
			d.Warning = append(d.Warning, v)
		default:
			d.Advisory = append(d.Advisory, v)
		}
	}
	return d
}

// AdvisoryFail reports whether an advisory scan should exit non-zero:
// only critical or high severity violations do that.
func AdvisoryFail(violations []scanner.Violation) bool {
	for _, v := range violations {
		if v.Severity == rules.SeverityCritical || v.Severity == rules.SeverityHigh {
			return true
		}
	}
	return false
}

// StrictFail reports whether a --strict/--ci scan should exit non-zero:
// any blocking-class violation does.
func StrictFail(violations []scanner.Violation) bool {
	for _, v := range violations {
		if v.Enforcement == rules.EnforcementBlocking {
			return true
		}
	}
	return false
}

// CountBySeverity tallies violations per severity for reports.
func CountBySeverity(violations []scanner.Violation) map[string]int {
	out := make(map[string]int, 4)
	for _, v := range violations {
		out[string(v.Severity)]++
	}
	return out
}
