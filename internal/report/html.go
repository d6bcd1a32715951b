package report

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/glueful/vs-code-extension/internal/safefile"
	"github.com/glueful/vs-code-extension/internal/scanner"
)

func WriteHTML(path string, r ScanReport) error {
	content := RenderHTML(r)
	if err := safefile.WriteFileAtomic(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write scan html: %w", err)
	}
	return nil
}

func RenderHTML(r ScanReport) string {
	var b bytes.Buffer

	b.WriteString("<!doctype html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("  <title>Glueful Webview Security Scan</title>\n")
	b.WriteString("  <style>\n")
	b.WriteString("    :root {\n")
	b.WriteString("      color-scheme: light;\n")
	b.WriteString("      --bg: #f3f6fb;\n")
	b.WriteString("      --surface: #ffffff;\n")
	b.WriteString("      --border: #d7dee9;\n")
	b.WriteString("      --text: #102033;\n")
	b.WriteString("      --muted: #4f6278;\n")
	b.WriteString("      --critical: #b91c1c;\n")
	b.WriteString("      --high: #c2410c;\n")
	b.WriteString("      --medium: #b45309;\n")
	b.WriteString("      --low: #1d4ed8;\n")
	b.WriteString("      --ok: #047857;\n")
	b.WriteString("    }\n")
	b.WriteString("    * { box-sizing: border-box; }\n")
	b.WriteString("    body { margin: 0; font-family: \"Segoe UI\", \"Helvetica Neue\", Arial, sans-serif; background: var(--bg); color: var(--text); line-height: 1.5; }\n")
	b.WriteString("    .page { max-width: 1000px; margin: 0 auto; padding: 28px 20px 40px; }\n")
	b.WriteString("    .hero { background: linear-gradient(140deg, #102033, #1e3550); color: #f8fbff; border-radius: 16px; padding: 20px 24px; margin-bottom: 20px; }\n")
	b.WriteString("    .hero h1 { margin: 0; font-size: 26px; }\n")
	b.WriteString("    .hero p { margin: 8px 0 0; color: #dbe8f7; }\n")
	b.WriteString("    section { background: var(--surface); border: 1px solid var(--border); border-radius: 14px; padding: 18px; margin-bottom: 16px; }\n")
	b.WriteString("    h2 { margin: 0 0 14px; font-size: 20px; }\n")
	b.WriteString("    .summary-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 12px; }\n")
	b.WriteString("    .stat-card { border: 1px solid var(--border); border-radius: 12px; padding: 12px; background: #fbfcff; }\n")
	b.WriteString("    .stat-card .label { margin: 0; font-size: 12px; text-transform: uppercase; letter-spacing: 0.08em; color: var(--muted); }\n")
	b.WriteString("    .stat-card .value { margin: 6px 0 0; font-size: 24px; font-weight: 700; }\n")
	b.WriteString("    .critical .value { color: var(--critical); }\n")
	b.WriteString("    .high .value { color: var(--high); }\n")
	b.WriteString("    .medium .value { color: var(--medium); }\n")
	b.WriteString("    .low .value { color: var(--low); }\n")
	b.WriteString("    .gate-passed { color: var(--ok); font-weight: 700; }\n")
	b.WriteString("    .gate-failed { color: var(--critical); font-weight: 700; }\n")
	b.WriteString("    .violation { border: 1px solid var(--border); border-radius: 12px; padding: 14px; margin-bottom: 12px; background: #fcfdff; }\n")
	b.WriteString("    .violation-header { display: flex; flex-wrap: wrap; align-items: center; gap: 8px; margin-bottom: 8px; }\n")
	b.WriteString("    .badge { display: inline-block; font-size: 12px; font-weight: 700; border-radius: 999px; padding: 4px 8px; text-transform: uppercase; letter-spacing: 0.06em; }\n")
	b.WriteString("    .badge-critical { background: #fef2f2; color: var(--critical); }\n")
	b.WriteString("    .badge-high { background: #fff7ed; color: var(--high); }\n")
	b.WriteString("    .badge-medium { background: #fffbeb; color: var(--medium); }\n")
	b.WriteString("    .badge-low { background: #eff6ff; color: var(--low); }\n")
	b.WriteString("    .location { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; color: var(--muted); }\n")
	b.WriteString("    .snippet { margin-top: 8px; padding: 8px 10px; border: 1px solid #e2e8f0; border-radius: 8px; background: #ffffff; font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 12px; overflow-x: auto; }\n")
	b.WriteString("    .warnings { margin: 0; padding-left: 18px; color: #7f1d1d; }\n")
	b.WriteString("    .empty { color: var(--muted); margin: 0; }\n")
	b.WriteString("    code { background: #edf2ff; color: #1e3a8a; padding: 1px 5px; border-radius: 6px; font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 12px; }\n")
	b.WriteString("  </style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("  <main class=\"page\">\n")
	b.WriteString("    <header class=\"hero\">\n")
	b.WriteString("      <h1>Glueful Webview Security Scan</h1>\n")
	b.WriteString(fmt.Sprintf("      <p><code>%s</code> &middot; %d files, %d rules, %s mode</p>\n",
		htmlInline(r.Root), r.FilesScanned, r.RuleCount, htmlInline(r.Mode)))
	b.WriteString("    </header>\n")

	b.WriteString("    <section>\n")
	b.WriteString("      <h2>Summary</h2>\n")
	b.WriteString("      <div class=\"summary-grid\">\n")
	b.WriteString(fmt.Sprintf("        <div class=\"stat-card\"><p class=\"label\">Total</p><p class=\"value\">%d</p></div>\n", len(r.Violations)))
	b.WriteString(fmt.Sprintf("        <div class=\"stat-card critical\"><p class=\"label\">Critical</p><p class=\"value\">%d</p></div>\n", r.CountsBySeverity["critical"]))
	b.WriteString(fmt.Sprintf("        <div class=\"stat-card high\"><p class=\"label\">High</p><p class=\"value\">%d</p></div>\n", r.CountsBySeverity["high"]))
	b.WriteString(fmt.Sprintf("        <div class=\"stat-card medium\"><p class=\"label\">Medium</p><p class=\"value\">%d</p></div>\n", r.CountsBySeverity["medium"]))
	b.WriteString(fmt.Sprintf("        <div class=\"stat-card low\"><p class=\"label\">Low</p><p class=\"value\">%d</p></div>\n", r.CountsBySeverity["low"]))
	b.WriteString("      </div>\n")
	if r.Decision.Passed {
		b.WriteString("      <p class=\"gate-passed\">Gate: passed</p>\n")
	} else {
		b.WriteString(fmt.Sprintf("      <p class=\"gate-failed\">Gate: failed (%d blocking)</p>\n", len(r.Decision.Blocking)))
	}
	b.WriteString("    </section>\n")

	if len(r.Warnings) > 0 {
		b.WriteString("    <section>\n")
		b.WriteString("      <h2>Warnings</h2>\n")
		b.WriteString("      <ul class=\"warnings\">\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("        <li>%s</li>\n", htmlInline(w)))
		}
		b.WriteString("      </ul>\n")
		b.WriteString("    </section>\n")
	}

	b.WriteString("    <section>\n")
	b.WriteString("      <h2>Violations</h2>\n")
	if len(r.Violations) == 0 {
		b.WriteString("      <p class=\"empty\">No violations were found.</p>\n")
	} else {
		sorted := make([]scanner.Violation, len(r.Violations))
		copy(sorted, r.Violations)
		sort.SliceStable(sorted, func(i, j int) bool {
			ri, rj := severityRank(sorted[i].Severity), severityRank(sorted[j].Severity)
			if ri != rj {
				return ri < rj
			}
			if sorted[i].File != sorted[j].File {
				return sorted[i].File < sorted[j].File
			}
			return sorted[i].Line < sorted[j].Line
		})
		for _, v := range sorted {
			b.WriteString("      <article class=\"violation\">\n")
			b.WriteString("        <div class=\"violation-header\">\n")
			b.WriteString(fmt.Sprintf("          <span class=\"badge badge-%s\">%s</span>\n", badgeClass(string(v.Severity)), htmlInline(string(v.Severity))))
			b.WriteString(fmt.Sprintf("          <code>%s</code>\n", htmlInline(v.Rule)))
			b.WriteString(fmt.Sprintf("          <span class=\"location\">%s:%d:%d</span>\n", htmlInline(v.File), v.Line, v.Column))
			b.WriteString("        </div>\n")
			b.WriteString(fmt.Sprintf("        <p>%s</p>\n", htmlInline(v.Message)))
			if strings.TrimSpace(v.Snippet) != "" {
				b.WriteString(fmt.Sprintf("        <div class=\"snippet\">%s</div>\n", htmlInline(v.Snippet)))
			}
			b.WriteString("      </article>\n")
		}
	}
	b.WriteString("    </section>\n")
	b.WriteString("  </main>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

func htmlInline(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	return html.EscapeString(s)
}

func badgeClass(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return "critical"
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	default:
		return "low"
	}
}
