package webview

import (
	"bytes"
	"fmt"
)

// Render produces the complete HTML document for one panel: doctype,
// CSP meta tag, nonce-scoped base styles, the caller's content fragment
// verbatim, action buttons, metadata footer, and the nonce-scoped
// message-bridge script. A fresh nonce is generated on every call and
// scopes both inline blocks.
//
// Every dynamic value the renderer itself places into markup (title,
// action labels, metadata) is escaped here. The Content field is the
// single exception: it is inserted verbatim under the TrustedHTML
// contract.
func Render(tmpl ContentTemplate) string {
	nonce := Nonce(DefaultNonceLength)
	csp := NewContentSecurityPolicy(nonce)

	var b bytes.Buffer
	b.WriteString("<!doctype html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  " + csp.MetaTag() + "\n")
	b.WriteString(fmt.Sprintf("  <title>%s</title>\n", Escape(tmpl.Title)))
	b.WriteString(fmt.Sprintf("  <style nonce=\"%s\">\n", nonce))
	b.WriteString(baseStyles)
	b.WriteString("  </style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("  <main class=\"panel\">\n")
	b.WriteString("    <header class=\"panel-header\">\n")
	b.WriteString(fmt.Sprintf("      <h1>%s</h1>\n", Escape(tmpl.Title)))
	b.WriteString("    </header>\n")
	b.WriteString("    <section class=\"panel-content\">\n")
	b.WriteString(tmpl.Content.String())
	b.WriteString("\n    </section>\n")

	if len(tmpl.Actions) > 0 {
		b.WriteString("    <div class=\"panel-actions\">\n")
		for _, a := range tmpl.Actions {
			class := "action"
			if a.Primary {
				class = "action action-primary"
			}
			disabled := ""
			if a.Disabled {
				disabled = " disabled"
			}
			label := Escape(a.Label)
			if a.Icon != "" {
				label = fmt.Sprintf("<span class=\"icon\">%s</span> %s", Escape(a.Icon), label)
			}
			b.WriteString(fmt.Sprintf(
				"      <button class=\"%s\" data-command=\"%s\"%s>%s</button>\n",
				class, Escape(a.ID), disabled, label,
			))
		}
		b.WriteString("    </div>\n")
	}

	if len(tmpl.Metadata) > 0 {
		b.WriteString("    <footer class=\"panel-meta\">\n")
		b.WriteString("      <dl>\n")
		for _, m := range tmpl.Metadata {
			b.WriteString(fmt.Sprintf("        <dt>%s</dt><dd>%s</dd>\n", Escape(m.Key), Escape(m.Value)))
		}
		b.WriteString("      </dl>\n")
		b.WriteString("    </footer>\n")
	}

	b.WriteString("  </main>\n")
	b.WriteString(fmt.Sprintf("  <script nonce=\"%s\">\n", nonce))
	b.WriteString(bridgeScript)
	b.WriteString("  </script>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

const baseStyles = `    :root { color-scheme: light dark; }
    body {
      margin: 0;
      font-family: var(--vscode-font-family, "Segoe UI", sans-serif);
      color: var(--vscode-foreground, #24292f);
      background: var(--vscode-editor-background, #ffffff);
      line-height: 1.5;
    }
    .panel { max-width: 960px; margin: 0 auto; padding: 16px 20px 32px; }
    .panel-header h1 { margin: 0 0 12px; font-size: 20px; }
    .panel-content { font-size: 14px; }
    .panel-actions { margin-top: 16px; display: flex; gap: 8px; flex-wrap: wrap; }
    .action {
      padding: 6px 14px;
      border: 1px solid var(--vscode-button-border, transparent);
      border-radius: 4px;
      cursor: pointer;
      background: var(--vscode-button-secondaryBackground, #e5e9f0);
      color: var(--vscode-button-secondaryForeground, #24292f);
      font-size: 13px;
    }
    .action-primary {
      background: var(--vscode-button-background, #0969da);
      color: var(--vscode-button-foreground, #ffffff);
    }
    .action[disabled] { opacity: 0.5; cursor: default; }
    .panel-meta { margin-top: 24px; font-size: 12px; color: var(--vscode-descriptionForeground, #57606a); }
    .panel-meta dl { display: grid; grid-template-columns: max-content 1fr; gap: 2px 12px; margin: 0; }
    .panel-meta dt { font-weight: 600; }
    .panel-meta dd { margin: 0; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th, td { padding: 6px 8px; text-align: left; border-bottom: 1px solid var(--vscode-panel-border, #d0d7de); }
    code {
      font-family: var(--vscode-editor-font-family, ui-monospace, monospace);
      font-size: 12px;
      background: var(--vscode-textCodeBlock-background, #f6f8fa);
      padding: 1px 5px;
      border-radius: 4px;
    }
`

const bridgeScript = `    (function () {
      var bridge = typeof acquireVsCodeApi === 'function' ? acquireVsCodeApi() : null;
      function postMessage(command, data) {
        if (bridge) {
          bridge.postMessage({ type: 'cmd', id: command, payload: data === undefined ? null : data });
        }
      }
      window.postToHost = postMessage;
      window.addEventListener('error', function (event) {
        if (bridge) {
          bridge.postMessage({
            type: 'error',
            message: String(event.message || 'unknown error'),
            stack: event.error && event.error.stack ? String(event.error.stack) : undefined
          });
        }
      });
      window.addEventListener('unhandledrejection', function (event) {
        if (bridge) {
          var reason = event.reason || {};
          bridge.postMessage({
            type: 'error',
            message: String(reason.message || reason || 'unhandled rejection'),
            stack: reason.stack ? String(reason.stack) : undefined
          });
        }
      });
      document.addEventListener('click', function (event) {
        var el = event.target && event.target.closest ? event.target.closest('[data-command]') : null;
        if (el && !el.disabled) {
          postMessage(el.getAttribute('data-command'), null);
        }
      });
    })();
`
