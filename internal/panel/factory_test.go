package panel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/glueful/vs-code-extension/internal/webview"
)

func testTemplate(t *testing.T, title string) webview.ContentTemplate {
	t.Helper()
	tmpl, err := webview.NewTemplate().
		Title(title).
		Content(webview.EscapedText("ready")).
		Build()
	if err != nil {
		t.Fatalf("build template: %v", err)
	}
	return tmpl
}

func TestFactory_OpenSecurePanelRendersSecureDocument(t *testing.T) {
	host := NewMemHost()
	f := NewFactory(host, nil)

	_, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "Security Report",
	}, testTemplate(t, "Security Report"))
	if err != nil {
		t.Fatalf("OpenSecurePanel failed: %v", err)
	}

	html := host.Panels[0].HTML
	if !strings.Contains(html, `http-equiv="Content-Security-Policy"`) {
		t.Fatal("rendered document missing CSP meta tag")
	}
	if !strings.Contains(html, "default-src 'none'") {
		t.Fatal("rendered document missing deny-by-default policy")
	}
}

func TestFactory_HostCreationErrorIsUnmodified(t *testing.T) {
	host := NewMemHost()
	host.CreateErr = errors.New("no editor surface")
	f := NewFactory(host, nil)

	_, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "Security Report",
	}, testTemplate(t, "Security Report"))
	if err != host.CreateErr {
		t.Fatalf("host error must reach the caller unmodified, got %v", err)
	}
}

func TestFactory_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PanelConfig
		wantErr string
	}{
		{"empty viewType", PanelConfig{Title: "T"}, "viewType is required"},
		{"viewType with spaces", PanelConfig{ViewType: "my panel", Title: "T"}, "invalid panel viewType"},
		{"viewType leading digit", PanelConfig{ViewType: "1panel", Title: "T"}, "invalid panel viewType"},
		{"viewType markup", PanelConfig{ViewType: `x"><script>`, Title: "T"}, "invalid panel viewType"},
		{"missing title", PanelConfig{ViewType: "glueful.report"}, "title is required"},
		{"nil handler", PanelConfig{
			ViewType: "glueful.report",
			Title:    "T",
			Handlers: map[string]Handler{"run": nil},
		}, `handler for command "run" is nil`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := NewMemHost()
			f := NewFactory(host, nil)
			_, err := f.OpenSecurePanel(tt.cfg, testTemplate(t, "T"))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want substring %q", err, tt.wantErr)
			}
			if host.CreateCalls() != 0 {
				t.Fatal("invalid config must not create a native panel")
			}
		})
	}
}

func TestFactory_InvalidTemplateRejectedBeforeCreation(t *testing.T) {
	host := NewMemHost()
	f := NewFactory(host, nil)
	_, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "T",
	}, webview.ContentTemplate{Title: "no content"})
	if err == nil {
		t.Fatal("expected template validation error")
	}
	if host.CreateCalls() != 0 {
		t.Fatal("invalid template must not create a native panel")
	}
}

func TestFactory_ReopenRebindsHandlers(t *testing.T) {
	host := NewMemHost()
	f := NewFactory(host, nil)

	firstCalls := 0
	if _, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "T",
		Handlers: map[string]Handler{
			"refresh": func(json.RawMessage) error { firstCalls++; return nil },
		},
	}, testTemplate(t, "T")); err != nil {
		t.Fatal(err)
	}

	secondCalls := 0
	if _, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "T",
		Handlers: map[string]Handler{
			"refresh": func(json.RawMessage) error { secondCalls++; return nil },
		},
	}, testTemplate(t, "T")); err != nil {
		t.Fatal(err)
	}

	host.Panels[0].Deliver([]byte(`{"type":"cmd","id":"refresh"}`))

	if firstCalls != 0 {
		t.Fatalf("stale handler ran %d times after rebind", firstCalls)
	}
	if secondCalls != 1 {
		t.Fatalf("current handler ran %d times, want 1", secondCalls)
	}
}

func TestFactory_DispatchThroughRealRender(t *testing.T) {
	host := NewMemHost()
	var log bytes.Buffer
	f := NewFactory(host, &log)

	received := ""
	if _, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.routes",
		Title:    "Routes",
		Handlers: map[string]Handler{
			"route.open": func(payload json.RawMessage) error {
				var args struct {
					Name string `json:"name"`
				}
				if err := json.Unmarshal(payload, &args); err != nil {
					return err
				}
				received = args.Name
				return nil
			},
		},
	}, testTemplate(t, "Routes")); err != nil {
		t.Fatal(err)
	}

	host.Panels[0].Deliver([]byte(`{"type":"cmd","id":"route.open","payload":{"name":"users.index"}}`))
	if received != "users.index" {
		t.Fatalf("handler saw %q", received)
	}
}

func TestFactory_UpdatePanelContent(t *testing.T) {
	host := NewMemHost()
	f := NewFactory(host, nil)

	if _, err := f.OpenSecurePanel(PanelConfig{
		ViewType: "glueful.report",
		Title:    "T",
	}, testTemplate(t, "Before")); err != nil {
		t.Fatal(err)
	}

	if err := f.UpdatePanelContent("glueful.report", testTemplate(t, "After")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(host.Panels[0].HTML, "After") {
		t.Fatal("update did not re-render the panel")
	}

	// Absent viewType: valid template, silent no-op.
	if err := f.UpdatePanelContent("glueful.gone", testTemplate(t, "X")); err != nil {
		t.Fatalf("update of absent panel should be a no-op, got %v", err)
	}
}

func TestFactory_CloseAndActive(t *testing.T) {
	host := NewMemHost()
	f := NewFactory(host, nil)

	for _, vt := range []string{"glueful.a", "glueful.b"} {
		if _, err := f.OpenSecurePanel(PanelConfig{ViewType: vt, Title: "T"}, testTemplate(t, "T")); err != nil {
			t.Fatal(err)
		}
	}

	f.ClosePanel("glueful.a")
	if got := f.ActivePanels(); len(got) != 1 || got[0] != "glueful.b" {
		t.Fatalf("ActivePanels = %v", got)
	}

	f.CloseAllPanels()
	if got := f.ActivePanels(); len(got) != 0 {
		t.Fatalf("ActivePanels after CloseAllPanels = %v", got)
	}
}
