package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/glueful/vs-code-extension/internal/config"
	"github.com/glueful/vs-code-extension/internal/corpus"
	"github.com/glueful/vs-code-extension/internal/fixer"
	"github.com/glueful/vs-code-extension/internal/gate"
	"github.com/glueful/vs-code-extension/internal/progress"
	"github.com/glueful/vs-code-extension/internal/report"
	"github.com/glueful/vs-code-extension/internal/rules"
	"github.com/glueful/vs-code-extension/internal/scanner"
	"github.com/glueful/vs-code-extension/internal/tui"
	"github.com/glueful/vs-code-extension/internal/version"
)

func Execute(args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:], false)
	case "enforce":
		return runScan(args[1:], true)
	case "rules":
		return runRules(args[1:])
	case "version", "--version":
		fmt.Printf("glueful-security %s\n", version.Version)
		return nil
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command %q", args[0]))
	}
}

type scanFlags struct {
	root          string
	out           string
	rulesDir      string
	noCustomRules bool
	maxFiles      int
	maxFileBytes  int64
	contextWindow int
	strict        bool
	fix           bool
	jsonOnly      bool
	enableTUI     bool
	disableTUI    bool
	onlyRules     []string
	skipRules     []string
}

func runScan(args []string, enforce bool) error {
	name := "scan"
	if enforce {
		name = "enforce"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	out := fs.String("out", "", "Output directory for scan artifacts (default ./.glueful/scans/<timestamp>)")
	rulesDir := fs.String("rules-dir", "", "Custom rules directory (default <project>/.glueful/rules)")
	noCustomRules := fs.Bool("no-custom-rules", false, "Run built-in rules only")
	maxFiles := fs.Int("max-files", 0, "Maximum scanned file count (default 20000)")
	maxFileBytes := fs.Int64("max-file-bytes", 0, "Maximum scanned file size in bytes (default 2097152)")
	contextWindow := fs.Int("context-window", 0, "Bytes of surrounding context checked against allowed_contexts (default 100)")
	strict := fs.Bool("strict", false, "Fail on any blocking-class violation regardless of severity")
	ci := fs.Bool("ci", false, "Alias for --strict plus plain output")
	fix := fs.Bool("fix", false, "Rewrite unescaped template interpolations with escapeHtml()")
	jsonOnly := fs.Bool("json", false, "Print the JSON report to stdout instead of the console summary")
	enableTUI := fs.Bool("tui", false, "Enable interactive terminal UI")
	disableTUI := fs.Bool("no-tui", false, "Disable interactive terminal UI")

	var onlyRules listFlag
	var skipRules listFlag
	fs.Var(&onlyRules, "only-rule", "Only apply specific rule name(s) (repeatable or comma-separated)")
	fs.Var(&skipRules, "skip-rule", "Skip specific rule name(s) (repeatable or comma-separated)")

	var positionalRoot string
	parseArgs := args
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positionalRoot = args[0]
		parseArgs = args[1:]
	}

	if err := fs.Parse(parseArgs); err != nil {
		return err
	}
	remaining := fs.Args()
	switch {
	case positionalRoot == "" && len(remaining) == 1:
		positionalRoot = remaining[0]
	case positionalRoot == "" && len(remaining) == 0:
		positionalRoot = "."
	case positionalRoot != "" && len(remaining) == 0:
		// valid
	default:
		return usageError(fmt.Sprintf("usage: glueful-security %s [path] [flags]", name))
	}

	if *enableTUI && *disableTUI {
		return errors.New("cannot set both --tui and --no-tui")
	}
	if *maxFiles < 0 {
		return errors.New("--max-files must be >= 0")
	}
	if *maxFileBytes < 0 {
		return errors.New("--max-file-bytes must be >= 0")
	}
	if *contextWindow < 0 {
		return errors.New("--context-window must be >= 0")
	}
	if enforce && *fix {
		return errors.New("--fix is not available in enforce mode")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[glueful] warning: %v\n", err)
		cfg = config.Config{}
	}

	f := scanFlags{
		root:          positionalRoot,
		out:           *out,
		rulesDir:      *rulesDir,
		noCustomRules: *noCustomRules,
		maxFiles:      *maxFiles,
		maxFileBytes:  *maxFileBytes,
		contextWindow: *contextWindow,
		strict:        *strict || *ci,
		fix:           *fix,
		jsonOnly:      *jsonOnly,
		enableTUI:     *enableTUI,
		disableTUI:    *disableTUI || *ci || *jsonOnly,
		onlyRules:     onlyRules.Values(),
		skipRules:     skipRules.Values(),
	}
	applyConfig(&f, cfg)

	return executeScan(f, enforce)
}

// applyConfig fills flag values left at their zero defaults from layered
// config. Explicit flags always win.
func applyConfig(f *scanFlags, cfg config.Config) {
	if f.rulesDir == "" && cfg.RulesDir != "" {
		f.rulesDir = cfg.RulesDir
	}
	if !f.noCustomRules && cfg.NoCustomRules != nil {
		f.noCustomRules = *cfg.NoCustomRules
	}
	if f.maxFiles == 0 && cfg.MaxFiles != nil {
		f.maxFiles = *cfg.MaxFiles
	}
	if f.maxFileBytes == 0 && cfg.MaxFileBytes != nil {
		f.maxFileBytes = *cfg.MaxFileBytes
	}
	if f.contextWindow == 0 && cfg.ContextWindow != nil {
		f.contextWindow = *cfg.ContextWindow
	}
	if !f.strict && cfg.Strict != nil {
		f.strict = *cfg.Strict
	}
	if f.out == "" && cfg.Out != "" {
		f.out = cfg.Out
	}
}

func executeScan(f scanFlags, enforce bool) error {
	root, err := filepath.Abs(f.root)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path %s is not a directory", root)
	}

	rulesDir := f.rulesDir
	if rulesDir == "" {
		rulesDir = filepath.Join(root, ".glueful", "rules")
	}
	ruleSet, ruleWarnings, err := rules.Resolve(rulesDir, f.noCustomRules)
	if err != nil {
		return err
	}
	for _, w := range ruleWarnings {
		fmt.Fprintf(os.Stderr, "[glueful] warning: %s\n", w)
	}

	if enforce {
		ruleSet = rules.EnforcementSet(ruleSet)
	}
	ruleSet, err = filterRules(ruleSet, f.onlyRules, f.skipRules)
	if err != nil {
		return err
	}

	engine, err := scanner.New(ruleSet, scanner.Options{
		ContextWindow: f.contextWindow,
	})
	if err != nil {
		return err
	}

	files, walkWarnings, err := corpus.Walk(root, corpus.Options{
		MaxFiles:     f.maxFiles,
		MaxFileBytes: f.maxFileBytes,
	})
	if err != nil {
		return err
	}

	useTUI := !f.jsonOnly && isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stderr.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
	if f.enableTUI {
		useTUI = true
	}
	if f.disableTUI {
		useTUI = false
	}

	var fixResult fixer.Result
	if f.fix {
		fixResult, err = fixer.Run(engine, root, files, os.Stderr)
		if err != nil {
			return err
		}
	}

	var violations []scanner.Violation
	var scanWarnings []string
	if useTUI {
		events := make(chan progress.Event, 128)

		type scanResult struct {
			violations []scanner.Violation
			warnings   []string
			err        error
		}
		scanDone := make(chan scanResult, 1)
		go func() {
			defer close(events)
			v, w, err := engine.ScanCorpus(context.Background(), root, files, progress.NewChannelSink(events))
			scanDone <- scanResult{violations: v, warnings: w, err: err}
		}()

		if err := tui.Run(tui.Options{Events: events}); err != nil {
			return err
		}
		result := <-scanDone
		if result.err != nil {
			return result.err
		}
		violations, scanWarnings = result.violations, result.warnings
	} else {
		var sink progress.Sink = progress.NoopSink{}
		if !f.jsonOnly {
			sink = progress.NewPlainSink(os.Stderr)
		}
		violations, scanWarnings, err = engine.ScanCorpus(context.Background(), root, files, sink)
		if err != nil {
			return err
		}
	}

	mode := "advisory"
	if enforce {
		mode = "enforce"
	} else if f.strict {
		mode = "strict"
	}

	r := report.ScanReport{
		GeneratedAt:      time.Now().UTC(),
		Root:             root,
		Mode:             mode,
		RuleCount:        len(engine.Rules()),
		FilesScanned:     len(files),
		Violations:       violations,
		CountsBySeverity: gate.CountBySeverity(violations),
		Decision:         gate.Evaluate(violations),
		Warnings:         append(append([]string{}, walkWarnings...), scanWarnings...),
	}
	if f.fix {
		r.FixApplied = fixResult.Applied
		// The scan above ran against the fixed tree, so what it still
		// flags for the fixable rule is the residual.
		for _, v := range violations {
			if v.Rule == fixer.FixableRule {
				r.FixResidual++
			}
		}
		r.Warnings = append(r.Warnings, fixResult.Warnings...)
	}

	if err := writeArtifacts(f.out, root, r); err != nil {
		return err
	}

	if f.jsonOnly {
		if err := report.PrintJSON(os.Stdout, r); err != nil {
			return err
		}
	} else {
		report.WriteConsole(os.Stdout, r)
	}

	return exitDecision(violations, enforce, f.strict)
}

// exitDecision maps gate semantics onto the process exit status. Enforce
// and strict mode fail on any blocking violation; advisory mode fails
// only on critical or high severity.
func exitDecision(violations []scanner.Violation, enforce bool, strict bool) error {
	if enforce || strict {
		if gate.StrictFail(violations) {
			return fmt.Errorf("blocking security violations found")
		}
		return nil
	}
	if gate.AdvisoryFail(violations) {
		return fmt.Errorf("critical or high severity violations found")
	}
	return nil
}

func writeArtifacts(out string, root string, r report.ScanReport) error {
	dir := strings.TrimSpace(out)
	if dir == "" {
		dir = filepath.Join(root, ".glueful", "scans", time.Now().UTC().Format("20060102-150405"))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	if err := report.WriteJSON(filepath.Join(dir, "scan.json"), r); err != nil {
		return err
	}
	if err := report.WriteHTML(filepath.Join(dir, "scan.html"), r); err != nil {
		return err
	}
	if err := report.WriteSARIF(filepath.Join(dir, "scan.sarif"), r); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "[glueful] artifacts: %s\n", dir)
	return nil
}

func filterRules(ruleSet []rules.Rule, only []string, skip []string) ([]rules.Rule, error) {
	if len(only) == 0 && len(skip) == 0 {
		return ruleSet, nil
	}
	known := make(map[string]struct{}, len(ruleSet))
	for _, r := range ruleSet {
		known[r.Name] = struct{}{}
	}
	for _, name := range append(append([]string{}, only...), skip...) {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
	}

	onlySet := make(map[string]struct{}, len(only))
	for _, name := range only {
		onlySet[name] = struct{}{}
	}
	skipSet := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipSet[name] = struct{}{}
	}

	out := make([]rules.Rule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if len(onlySet) > 0 {
			if _, ok := onlySet[r.Name]; !ok {
				continue
			}
		}
		if _, ok := skipSet[r.Name]; ok {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errors.New("rule filters leave no rules to apply")
	}
	return out, nil
}

func runRules(args []string) error {
	if len(args) == 0 {
		return usageError("usage: glueful-security rules <list|validate> [flags]")
	}

	switch args[0] {
	case "list":
		return runRulesList(args[1:])
	case "validate":
		return runRulesValidate(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown rules subcommand %q", args[0]))
	}
}

func runRulesList(args []string) error {
	fs := flag.NewFlagSet("rules list", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	rulesDir := fs.String("rules-dir", "", "Custom rules directory")
	noCustomRules := fs.Bool("no-custom-rules", false, "List built-in rules only")
	severityFilter := fs.String("severity", "", "severity filter: critical|high|medium|low")
	enforcementFilter := fs.String("enforcement", "", "enforcement filter: blocking|warning|advisory")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 0 {
		return errors.New("rules list does not accept positional args")
	}

	ruleSet, warnings, err := rules.Resolve(*rulesDir, *noCustomRules)
	if err != nil {
		return err
	}

	sevFilter := strings.ToLower(strings.TrimSpace(*severityFilter))
	enfFilter := strings.ToLower(strings.TrimSpace(*enforcementFilter))
	filtered := make([]rules.Rule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if sevFilter != "" && string(r.Severity) != sevFilter {
			continue
		}
		if enfFilter != "" && string(r.Enforcement) != enfFilter {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	if len(filtered) == 0 {
		fmt.Println("no rules found")
	} else {
		for _, r := range filtered {
			fmt.Printf("%-32s %-9s %-9s %s\n", r.Name, r.Severity, r.Enforcement, r.Message)
		}
	}

	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

func runRulesValidate(args []string) error {
	fs := flag.NewFlagSet("rules validate", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	rulesDir := fs.String("rules-dir", "", "Custom rules directory")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 0 {
		return errors.New("rules validate does not accept positional args")
	}

	custom, warnings, err := rules.LoadDir(*rulesDir)
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		return fmt.Errorf("invalid rules:\n- %s", strings.Join(warnings, "\n- "))
	}

	ruleSet := append(rules.Builtins(), custom...)
	for _, r := range ruleSet {
		if err := rules.Validate(r); err != nil {
			return fmt.Errorf("invalid rule %q: %w", r.Name, err)
		}
	}
	if err := rules.ValidateUniqueNames(ruleSet); err != nil {
		return err
	}

	// Patterns must also compile; a rule that validates but does not
	// compile is still a broken catalogue.
	if _, err := scanner.New(ruleSet, scanner.Options{}); err != nil {
		return err
	}

	fmt.Printf("validated %d rules\n", len(ruleSet))
	return nil
}

func usageError(msg string) error {
	printUsage()
	return errors.New(msg)
}

func printUsage() {
	fmt.Println("Glueful Webview Security CLI")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  glueful-security scan [path] [flags]")
	fmt.Println("  glueful-security enforce [path] [flags]")
	fmt.Println("  glueful-security rules <list|validate> [flags]")
	fmt.Println("  glueful-security version")
	fmt.Println("")
	fmt.Println("Flags (scan, enforce):")
	fmt.Println("  --out <dir>           Artifacts directory (default ./.glueful/scans/<timestamp>)")
	fmt.Println("  --rules-dir <dir>     Custom rules directory (default <project>/.glueful/rules)")
	fmt.Println("  --no-custom-rules     Disable custom rule loading")
	fmt.Println("  --max-files <n>       Scanned file count cap (default 20000)")
	fmt.Println("  --max-file-bytes <n>  Per-file size cap in bytes (default 2097152)")
	fmt.Println("  --context-window <n>  Context bytes checked against allowed_contexts (default 100)")
	fmt.Println("  --only-rule <name>    Apply only specified rule (repeatable)")
	fmt.Println("  --skip-rule <name>    Skip specified rule (repeatable)")
	fmt.Println("  --strict              Fail on any blocking-class violation")
	fmt.Println("  --ci                  --strict plus plain non-interactive output")
	fmt.Println("  --json                Print the JSON report to stdout")
	fmt.Println("  --tui                 Enable interactive terminal UI")
	fmt.Println("  --no-tui              Disable interactive terminal UI")
	fmt.Println("")
	fmt.Println("Flags (scan only):")
	fmt.Println("  --fix                 Wrap unescaped template interpolations in escapeHtml()")
}

type listFlag struct {
	values []string
}

func (f *listFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.values, ",")
}

func (f *listFlag) Set(value string) error {
	parts := strings.Split(value, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			f.values = append(f.values, part)
		}
	}
	return nil
}

func (f *listFlag) Values() []string {
	if f == nil || len(f.values) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.values))
	for _, v := range f.values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
