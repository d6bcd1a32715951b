// Package fixer applies best-effort automatic remediation for the
// unescaped-interpolation rule: it wraps flagged template interpolations
// in an escapeHtml() call. Fixing is never claimed complete; the
// caller must re-scan and report the residual count.
package fixer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/glueful/vs-code-extension/internal/corpus"
	"github.com/glueful/vs-code-extension/internal/safefile"
	"github.com/glueful/vs-code-extension/internal/scanner"
)

// FixableRule is the one rule the fixer knows how to remediate.
const FixableRule = "potentially-unescaped-html"

type Result struct {
	FilesChanged int
	Applied      int
	Skipped      int
	Warnings     []string
}

// Run rewrites every non-exempt match of the fixable rule under root.
// Matches already wrapped in an escaping call are skipped. Files are
// written atomically; a file that cannot be read or written is a
// warning, not a fatal error.
func Run(engine *scanner.Engine, root string, files []corpus.File, log io.Writer) (Result, error) {
	if log == nil {
		log = io.Discard
	}
	var res Result

	for _, file := range files {
		abs := filepath.Join(root, filepath.FromSlash(file.Path))
		data, err := os.ReadFile(abs)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("read %s: %v", file.Path, err))
			continue
		}
		content := string(data)

		offsets := engine.FindRuleOffsets(FixableRule, file.Path, content)
		if len(offsets) == 0 {
			continue
		}

		fixed, applied, skipped := rewrite(content, offsets)
		res.Skipped += skipped
		if applied == 0 {
			continue
		}

		if err := safefile.WriteFileAtomic(abs, []byte(fixed), 0o600); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("write %s: %v", file.Path, err))
			continue
		}
		res.FilesChanged++
		res.Applied += applied
		fmt.Fprintf(log, "[glueful] fixed %d interpolation(s) in %s\n", applied, file.Path)
	}

	return res, nil
}

// rewrite wraps each matched ${...} span in escapeHtml(). Spans are
// processed right to left so earlier offsets stay valid as the string
// grows.
func rewrite(content string, offsets [][2]int) (string, int, int) {
	sorted := make([][2]int, len(offsets))
	copy(sorted, offsets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] > sorted[j][0] })

	applied := 0
	skipped := 0
	for _, span := range sorted {
		start, end := span[0], span[1]
		if start < 0 || end > len(content) || end-start < 3 {
			skipped++
			continue
		}
		match := content[start:end]
		if !strings.HasPrefix(match, "${") || !strings.HasSuffix(match, "}") {
			skipped++
			continue
		}
		inner := strings.TrimSpace(match[2 : len(match)-1])
		if inner == "" || strings.Contains(inner, "escapeHtml(") || strings.Contains(inner, "sanitizeForWebview(") {
			skipped++
			continue
		}
		content = content[:start] + "${escapeHtml(" + inner + ")}" + content[end:]
		applied++
	}
	return content, applied, skipped
}
