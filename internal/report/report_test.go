package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glueful/vs-code-extension/internal/gate"
	"github.com/glueful/vs-code-extension/internal/rules"
	"github.com/glueful/vs-code-extension/internal/scanner"
)

func sampleViolations() []scanner.Violation {
	return []scanner.Violation{
		{
			File: "src/feature.ts", Line: 12, Column: 3,
			Rule: "potentially-unescaped-html", Severity: rules.SeverityHigh,
			Enforcement: rules.EnforcementWarning,
			Message:     "unescaped interpolation",
			Snippet:     "`<div>${title}</div>`",
		},
		{
			File: "src/feature.ts", Line: 4, Column: 1,
			Rule: "unauthorized-webview-creation", Severity: rules.SeverityCritical,
			Enforcement: rules.EnforcementBlocking,
			Message:     "direct panel creation",
			Snippet:     "createWebviewPanel(",
		},
		{
			File: "src/other.ts", Line: 9, Column: 5,
			Rule: "unsafe-eval", Severity: rules.SeverityHigh,
			Enforcement: rules.EnforcementAdvisory,
			Message:     "eval usage",
		},
	}
}

func sampleReport() ScanReport {
	violations := sampleViolations()
	return ScanReport{
		GeneratedAt:      time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Root:             "/tmp/project",
		Mode:             "advisory",
		RuleCount:        9,
		FilesScanned:     42,
		Violations:       violations,
		CountsBySeverity: gate.CountBySeverity(violations),
		Decision:         gate.Evaluate(violations),
		Warnings:         []string{"read src/gone.ts: no such file"},
	}
}

func TestWriteConsole_GroupsByFileOrderedBySeverity(t *testing.T) {
	var buf bytes.Buffer
	WriteConsole(&buf, sampleReport())
	out := buf.String()

	if !strings.Contains(out, "scanned 42 files with 9 rules") {
		t.Errorf("missing header, out=\n%s", out)
	}
	if !strings.Contains(out, "warning: read src/gone.ts") {
		t.Errorf("missing warning line")
	}

	// Within src/feature.ts the critical violation prints before the
	// high one even though it appears later in the slice.
	criticalIdx := strings.Index(out, "unauthorized-webview-creation")
	highIdx := strings.Index(out, "potentially-unescaped-html")
	if criticalIdx == -1 || highIdx == -1 || criticalIdx > highIdx {
		t.Errorf("severity ordering wrong:\n%s", out)
	}

	if !strings.Contains(out, "4:1") || !strings.Contains(out, "12:3") {
		t.Errorf("missing line:column markers:\n%s", out)
	}
	if !strings.Contains(out, "violations: 3 (critical=1 high=2 medium=0 low=0)") {
		t.Errorf("missing tally:\n%s", out)
	}
	if !strings.Contains(out, "gate: FAILED (1 blocking)") {
		t.Errorf("missing gate line:\n%s", out)
	}
}

func TestWriteConsole_CleanRun(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Violations = nil
	r.Warnings = nil
	r.CountsBySeverity = map[string]int{}
	r.Decision = gate.Evaluate(nil)
	WriteConsole(&buf, r)

	if !strings.Contains(buf.String(), "no violations found") {
		t.Fatalf("out=\n%s", buf.String())
	}
}

func TestWriteConsole_FixSummary(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.FixApplied = 5
	r.FixResidual = 2
	WriteConsole(&buf, r)
	if !strings.Contains(buf.String(), "fixes applied: 5, residual violations after fix: 2") {
		t.Fatalf("out=\n%s", buf.String())
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.json")
	if err := WriteJSON(path, sampleReport()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got ScanReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON artifact: %v", err)
	}
	if got.FilesScanned != 42 || len(got.Violations) != 3 || got.Decision.Passed {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	var got ScanReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON on stdout: %v", err)
	}
	if got.Mode != "advisory" {
		t.Fatalf("mode = %q", got.Mode)
	}
}

func TestRenderHTML_EscapesViolationData(t *testing.T) {
	r := sampleReport()
	r.Violations[0].Snippet = `<img src=x onerror="pwn()">`
	r.Violations[0].Message = `break "out" & <run>`

	html := RenderHTML(r)
	if strings.Contains(html, `<img src=x onerror=`) {
		t.Fatal("raw snippet markup leaked into HTML report")
	}
	if !strings.Contains(html, "&lt;img src=x onerror=") {
		t.Fatal("escaped snippet not found")
	}
	if !strings.Contains(html, "&#34;out&#34;") && !strings.Contains(html, "&quot;out&quot;") {
		t.Fatal("quotes in message not escaped")
	}
}

func TestRenderHTML_ContainsSummaryAndBadges(t *testing.T) {
	html := RenderHTML(sampleReport())
	for _, fragment := range []string{
		"<!doctype html>",
		"badge-critical",
		"badge-high",
		"src/feature.ts",
		"unauthorized-webview-creation",
	} {
		if !strings.Contains(html, fragment) {
			t.Errorf("HTML report missing %q", fragment)
		}
	}
}

func TestWriteSARIF_StructureAndSeverityMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.sarif")
	if err := WriteSARIF(path, sampleReport()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid SARIF artifact: %v", err)
	}

	if doc.Version != "2.1.0" {
		t.Fatalf("version = %q", doc.Version)
	}
	if len(doc.Runs) != 1 {
		t.Fatalf("runs = %d", len(doc.Runs))
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "glueful-webview-security" {
		t.Fatalf("driver = %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d", len(run.Results))
	}
	for _, res := range run.Results {
		if res.RuleID == "unauthorized-webview-creation" {
			if res.Level != "error" {
				t.Errorf("critical severity mapped to %q, want error", res.Level)
			}
			region := res.Locations[0].PhysicalLocation.Region
			if region.StartLine != 4 || region.StartColumn != 1 {
				t.Errorf("region = %+v", region)
			}
		}
	}
}

func TestSeverityRank_OrdersAllSeverities(t *testing.T) {
	order := []rules.Severity{rules.SeverityCritical, rules.SeverityHigh, rules.SeverityMedium, rules.SeverityLow}
	for i := 1; i < len(order); i++ {
		if severityRank(order[i-1]) >= severityRank(order[i]) {
			t.Errorf("rank(%s) should be < rank(%s)", order[i-1], order[i])
		}
	}
	if severityRank("unknown") <= severityRank(rules.SeverityLow) {
		t.Error("unknown severity should rank last")
	}
}
