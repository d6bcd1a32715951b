package rules

// Factory implementation files exempt from the creation and raw-html
// rules, plus test fixtures that exercise violations on purpose.
var factoryFiles = []string{
	"**/unifiedWebviewFactory.ts",
	"**/webviewSecurity.ts",
	"**/*.test.ts",
	"**/*.spec.ts",
}

// Builtins returns the shipped rule catalogue. Names are stable; they
// appear in reports and allow-list configuration.
func Builtins() []Rule {
	return []Rule{
		{
			Name:        "unauthorized-webview-creation",
			Pattern:     `createWebviewPanel\s*\(`,
			Severity:    SeverityCritical,
			Enforcement: EnforcementBlocking,
			Message: "Direct webview panel creation bypasses the secure factory. " +
				"Use openSecurePanel so CSP, nonce scoping, and message dispatch are applied.",
			AllowedFiles: factoryFiles,
		},
		{
			Name:        "inline-event-handlers",
			Pattern:     `\bon[a-z]+\s*=\s*["']`,
			Severity:    SeverityCritical,
			Enforcement: EnforcementBlocking,
			Message: "Inline event handlers cannot carry a CSP nonce and will be blocked at " +
				"runtime. Wire events through data-command attributes and the bridge script.",
			AllowedContexts: []string{
				// addEventListener('error', ... ) style strings are not markup.
				`addEventListener\s*\(`,
			},
		},
		{
			Name:        "external-script-loading",
			Pattern:     `<script[^>]*\bsrc\s*=\s*["']https?://`,
			Severity:    SeverityCritical,
			Enforcement: EnforcementBlocking,
			Message: "Loading scripts from external hosts violates the deny-by-default CSP. " +
				"All executable content must be the nonce-scoped inline bridge script.",
		},
		{
			Name:               "potentially-unescaped-html",
			Pattern:            "\\$\\{[^}]*\\b(title|message|description|name|label|content|file|path|error|value|text)\\b[^}]*\\}",
			Severity:           SeverityHigh,
			Enforcement:        EnforcementWarning,
			EnforceSeverity:    SeverityCritical,
			EnforceEnforcement: EnforcementBlocking,
			Message: "Template interpolation of likely user-controlled data without escaping. " +
				"Wrap the value in escapeHtml() or sanitizeForWebview() before interpolating.",
			AllowedContexts: []string{
				`escapeHtml\s*\(`,
				`sanitizeForWebview\s*\(`,
			},
			MaxMatches: 50,
		},
		{
			Name:        "direct-webview-html-assignment",
			Pattern:     `\.webview\.html\s*=`,
			Severity:    SeverityMedium,
			Enforcement: EnforcementWarning,
			Message: "Direct assignment to a panel's html property bypasses the secure " +
				"renderer. Route content through the factory's template rendering.",
			AllowedFiles: factoryFiles,
		},
		{
			Name:        "unsafe-eval",
			Pattern:     `\beval\s*\(`,
			Severity:    SeverityHigh,
			Enforcement: EnforcementAdvisory,
			Message:     "eval() executes arbitrary strings; the webview CSP forbids it and host-side use invites injection.",
		},
		{
			Name:        "unsafe-innerhtml",
			Pattern:     `\.innerHTML\s*=`,
			Severity:    SeverityHigh,
			Enforcement: EnforcementAdvisory,
			Message:     "innerHTML assignment renders unparsed markup. Prefer textContent or pre-escaped fragments.",
		},
		{
			Name:        "console-log-secrets",
			Pattern:     `console\.(log|debug|info|warn)\s*\([^)\n]*\b(token|secret|password|apiKey|api_key|credential)`,
			Severity:    SeverityMedium,
			Enforcement: EnforcementAdvisory,
			Message:     "Possible credential value logged to the console. Log identifiers, never secret material.",
		},
		{
			Name:        "hardcoded-secrets",
			Pattern:     `(?i)\b(api[_-]?key|secret|token|password)\b\s*[:=]\s*["'][A-Za-z0-9+/_\-]{16,}["']`,
			Severity:    SeverityHigh,
			Enforcement: EnforcementAdvisory,
			Message:     "Possible hardcoded secret. Load credentials from configuration or the environment.",
			AllowedFiles: []string{
				"**/*.test.ts",
				"**/*.spec.ts",
				"**/fixtures/**",
			},
			MaxMatches: 20,
		},
	}
}

// EnforcementSet returns the rule set as an enforcement run applies it:
// every rule is kept, so warning and advisory findings still surface in
// the report, and rules carrying an enforce_severity or
// enforce_enforcement are escalated to that class. Whether a run fails
// is decided later from the enforcement class of each violation.
func EnforcementSet(ruleSet []Rule) []Rule {
	out := make([]Rule, len(ruleSet))
	copy(out, ruleSet)
	for i := range out {
		if out[i].EnforceSeverity != "" {
			out[i].Severity = out[i].EnforceSeverity
		}
		if out[i].EnforceEnforcement != "" {
			out[i].Enforcement = out[i].EnforceEnforcement
		}
	}
	return out
}
