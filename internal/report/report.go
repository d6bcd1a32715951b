// Package report renders scan results: a grouped console report, a
// JSON artifact, an HTML summary, and SARIF for code-scanning upload.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/glueful/vs-code-extension/internal/gate"
	"github.com/glueful/vs-code-extension/internal/rules"
	"github.com/glueful/vs-code-extension/internal/safefile"
	"github.com/glueful/vs-code-extension/internal/scanner"
)

// ScanReport is the JSON artifact for one scan run.
type ScanReport struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	Root             string              `json:"root"`
	Mode             string              `json:"mode"`
	RuleCount        int                 `json:"rule_count"`
	FilesScanned     int                 `json:"files_scanned"`
	Violations       []scanner.Violation `json:"violations"`
	CountsBySeverity map[string]int      `json:"counts_by_severity"`
	Decision         gate.Decision       `json:"decision"`
	Warnings         []string            `json:"warnings,omitempty"`
	FixApplied       int                 `json:"fix_applied,omitempty"`
	FixResidual      int                 `json:"fix_residual,omitempty"`
}

func WriteJSON(path string, r ScanReport) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan report: %w", err)
	}
	if err := safefile.WriteFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write scan json: %w", err)
	}
	return nil
}

// PrintJSON streams the report to a writer for --json mode.
func PrintJSON(w io.Writer, r ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode scan report: %w", err)
	}
	return nil
}

// WriteConsole prints the grouped human-readable report: violations
// grouped by file, ordered by severity within each file, followed by a
// severity tally and the run decision.
func WriteConsole(w io.Writer, r ScanReport) {
	fmt.Fprintf(w, "scanned %d files with %d rules\n", r.FilesScanned, r.RuleCount)

	if len(r.Warnings) > 0 {
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warning)
		}
	}

	if len(r.Violations) == 0 {
		fmt.Fprintln(w, "no violations found")
		return
	}

	byFile := make(map[string][]scanner.Violation)
	files := make([]string, 0)
	for _, v := range r.Violations {
		if _, seen := byFile[v.File]; !seen {
			files = append(files, v.File)
		}
		byFile[v.File] = append(byFile[v.File], v)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(w, "\n%s\n", file)
		violations := byFile[file]
		sort.SliceStable(violations, func(i, j int) bool {
			ri, rj := severityRank(violations[i].Severity), severityRank(violations[j].Severity)
			if ri != rj {
				return ri < rj
			}
			if violations[i].Line != violations[j].Line {
				return violations[i].Line < violations[j].Line
			}
			return violations[i].Column < violations[j].Column
		})
		for _, v := range violations {
			fmt.Fprintf(w, "  %d:%d  [%s/%s] %s\n", v.Line, v.Column, v.Severity, v.Enforcement, v.Rule)
			fmt.Fprintf(w, "        %s\n", v.Message)
			if strings.TrimSpace(v.Snippet) != "" {
				fmt.Fprintf(w, "        > %s\n", v.Snippet)
			}
		}
	}

	fmt.Fprintf(w, "\nviolations: %d (critical=%d high=%d medium=%d low=%d)\n",
		len(r.Violations),
		r.CountsBySeverity["critical"],
		r.CountsBySeverity["high"],
		r.CountsBySeverity["medium"],
		r.CountsBySeverity["low"],
	)
	if r.FixApplied > 0 || r.FixResidual > 0 {
		fmt.Fprintf(w, "fixes applied: %d, residual violations after fix: %d\n", r.FixApplied, r.FixResidual)
	}
	if r.Decision.Passed {
		fmt.Fprintln(w, "gate: passed")
	} else {
		fmt.Fprintf(w, "gate: FAILED (%d blocking)\n", len(r.Decision.Blocking))
	}
}

func severityRank(s rules.Severity) int {
	switch s {
	case rules.SeverityCritical:
		return 0
	case rules.SeverityHigh:
		return 1
	case rules.SeverityMedium:
		return 2
	case rules.SeverityLow:
		return 3
	default:
		return 4
	}
}
