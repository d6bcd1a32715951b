// Package scanner evaluates security rules over a source corpus. It is
// a text-level engine: regular expressions with allow-list compensation,
// deliberately not an AST analyzer.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/glueful/vs-code-extension/internal/corpus"
	"github.com/glueful/vs-code-extension/internal/progress"
	"github.com/glueful/vs-code-extension/internal/rules"
)

const (
	// DefaultContextWindow is how many bytes on each side of a match are
	// tested against a rule's context allow-list. The size is a tunable
	// heuristic: wide enough to see an escaping call wrapping the match,
	// narrow enough that an unrelated escaping call elsewhere in the
	// file does not exempt a real violation.
	DefaultContextWindow = 100

	// DefaultMaxMatches is the per-rule, per-file iteration ceiling for
	// rules that set no cap of their own. It guarantees termination on
	// adversarial repeated-match input.
	DefaultMaxMatches = 200

	maxFileBytes = 2 * 1024 * 1024
)

// Violation is one non-exempt rule match. Line and Column are 1-based,
// computed by counting newlines up to the match offset.
type Violation struct {
	File        string            `json:"file"`
	Line        int               `json:"line"`
	Column      int               `json:"column"`
	Rule        string            `json:"rule"`
	Severity    rules.Severity    `json:"severity"`
	Enforcement rules.Enforcement `json:"enforcement"`
	Message     string            `json:"message"`
	Snippet     string            `json:"snippet"`
}

type compiledRule struct {
	rule       rules.Rule
	pattern    *regexp.Regexp
	fileGlobs  []*regexp.Regexp
	contexts   []*regexp.Regexp
	maxMatches int
}

// Engine holds a compiled rule set. Compile failures are startup-time
// configuration errors, never per-file errors. The violation list of a
// scan is local to that invocation; engines are safe to reuse across
// scans.
type Engine struct {
	rules         []compiledRule
	contextWindow int
}

// Options tunes the engine. Zero values take the defaults above.
type Options struct {
	ContextWindow int
}

// New compiles a rule set into an engine.
func New(ruleSet []rules.Rule, opts Options) (*Engine, error) {
	window := opts.ContextWindow
	if window <= 0 {
		window = DefaultContextWindow
	}

	compiled := make([]compiledRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if err := rules.Validate(r); err != nil {
			return nil, err
		}
		cr := compiledRule{rule: r, maxMatches: r.MaxMatches}
		if cr.maxMatches <= 0 {
			cr.maxMatches = DefaultMaxMatches
		}

		pattern, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q pattern: %w", r.Name, err)
		}
		cr.pattern = pattern

		for _, glob := range r.AllowedFiles {
			re, err := regexp.Compile(globToRegex(glob))
			if err != nil {
				return nil, fmt.Errorf("compile rule %q file glob %q: %w", r.Name, glob, err)
			}
			cr.fileGlobs = append(cr.fileGlobs, re)
		}
		for _, ctx := range r.AllowedContexts {
			re, err := regexp.Compile(ctx)
			if err != nil {
				return nil, fmt.Errorf("compile rule %q context pattern %q: %w", r.Name, ctx, err)
			}
			cr.contexts = append(cr.contexts, re)
		}
		compiled = append(compiled, cr)
	}

	return &Engine{rules: compiled, contextWindow: window}, nil
}

// Rules returns the engine's rule definitions.
func (e *Engine) Rules() []rules.Rule {
	out := make([]rules.Rule, 0, len(e.rules))
	for _, cr := range e.rules {
		out = append(out, cr.rule)
	}
	return out
}

// ScanFile applies every rule to one file's content. The path is used
// for allow-list matching and violation records; it should be relative
// to the scan root with forward slashes.
func (e *Engine) ScanFile(path string, content string) []Violation {
	var out []Violation
	for i := range e.rules {
		out = append(out, e.scanRule(&e.rules[i], path, content)...)
	}
	return out
}

// ScanCorpus reads and scans every file in the corpus. A file that
// cannot be read is warned-and-skipped; it must not abort the rest of
// the scan. The context cancels a scan between files.
func (e *Engine) ScanCorpus(ctx context.Context, root string, files []corpus.File, sink progress.Sink) ([]Violation, []string, error) {
	if sink == nil {
		sink = progress.NoopSink{}
	}
	var all []Violation
	var warnings []string
	scanned := 0

	sink.Emit(progress.Event{Type: progress.EventScanStarted, File: root, Total: len(files)})
	for _, file := range files {
		select {
		case <-ctx.Done():
			return all, warnings, ctx.Err()
		default:
		}

		abs := filepath.Join(root, filepath.FromSlash(file.Path))
		data, err := os.ReadFile(abs)
		if err != nil {
			msg := fmt.Sprintf("read %s: %v", file.Path, err)
			warnings = append(warnings, msg)
			sink.Emit(progress.Event{Type: progress.EventScanWarning, File: file.Path, Message: msg})
			continue
		}
		if len(data) > maxFileBytes {
			msg := fmt.Sprintf("skipped %s (size=%d exceeds %d)", file.Path, len(data), maxFileBytes)
			warnings = append(warnings, msg)
			sink.Emit(progress.Event{Type: progress.EventScanWarning, File: file.Path, Message: msg})
			continue
		}

		found := e.ScanFile(file.Path, string(data))
		all = append(all, found...)
		scanned++
		sink.Emit(progress.Event{
			Type:       progress.EventFileScanned,
			File:       file.Path,
			Scanned:    scanned,
			Total:      len(files),
			Violations: len(found),
		})
	}
	sink.Emit(progress.Event{Type: progress.EventScanFinished, Scanned: scanned, Violations: len(all)})
	return all, warnings, nil
}

func (e *Engine) scanRule(cr *compiledRule, path string, content string) []Violation {
	if fileExempt(cr, path) {
		return nil
	}
	matches := e.FindRuleOffsets(cr.rule.Name, path, content)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Violation, 0, len(matches))
	for _, pair := range matches {
		line, col := lineCol(content, pair[0])
		out = append(out, Violation{
			File:        path,
			Line:        line,
			Column:      col,
			Rule:        cr.rule.Name,
			Severity:    cr.rule.Severity,
			Enforcement: cr.rule.Enforcement,
			Message:     cr.rule.Message,
			Snippet:     snippet(content, pair[0], pair[1]),
		})
	}
	return out
}

// FindRuleOffsets returns the post-allow-list match ranges of one rule
// against one file. The fixer uses this to rewrite exact spans.
func (e *Engine) FindRuleOffsets(ruleName string, path string, content string) [][2]int {
	var cr *compiledRule
	for i := range e.rules {
		if e.rules[i].rule.Name == ruleName {
			cr = &e.rules[i]
			break
		}
	}
	if cr == nil || fileExempt(cr, path) {
		return nil
	}

	raw := cr.pattern.FindAllStringIndex(content, cr.maxMatches)
	out := make([][2]int, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			continue
		}
		if e.contextExempt(cr, content, pair[0], pair[1]) {
			continue
		}
		out = append(out, [2]int{pair[0], pair[1]})
	}
	return out
}

func fileExempt(cr *compiledRule, path string) bool {
	path = filepath.ToSlash(path)
	for _, glob := range cr.fileGlobs {
		if glob.MatchString(path) {
			return true
		}
	}
	return false
}

// contextExempt tests the text window around a match against the
// rule's context allow-list. Some violations are legitimate when the
// surrounding code already neutralizes them; the window compensates for
// the pattern's lack of semantic understanding.
func (e *Engine) contextExempt(cr *compiledRule, content string, start, end int) bool {
	if len(cr.contexts) == 0 {
		return false
	}
	left := start - e.contextWindow
	right := end + e.contextWindow
	if left < 0 {
		left = 0
	}
	if right > len(content) {
		right = len(content)
	}
	window := content[left:right]
	for _, ctx := range cr.contexts {
		if ctx.MatchString(window) {
			return true
		}
	}
	return false
}

func lineCol(content string, offset int) (int, int) {
	if offset < 0 {
		return 1, 1
	}
	if offset > len(content) {
		offset = len(content)
	}
	line := 1 + strings.Count(content[:offset], "\n")
	lastNewline := strings.LastIndexByte(content[:offset], '\n')
	col := offset - lastNewline // lastNewline is -1 on the first line
	return line, col
}

func snippet(content string, start, end int) string {
	if start < 0 || end < start || start > len(content) {
		return ""
	}
	if end > len(content) {
		end = len(content)
	}
	left := start - 40
	right := end + 40
	if left < 0 {
		left = 0
	}
	if right > len(content) {
		right = len(content)
	}
	s := strings.TrimSpace(content[left:right])
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if left > 0 {
		s = "..." + s
	}
	if right < len(content) {
		s = s + "..."
	}
	return strings.TrimSpace(s)
}

func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	r := []rune(filepath.ToSlash(glob))
	for i := 0; i < len(r); i++ {
		switch r[i] {
		case '*':
			if i+1 < len(r) && r[i+1] == '*' {
				if i+2 < len(r) && r[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
					continue
				}
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteString("\\")
			b.WriteRune(r[i])
		default:
			b.WriteRune(r[i])
		}
	}
	b.WriteString("$")
	return b.String()
}
