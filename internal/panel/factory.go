package panel

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/glueful/vs-code-extension/internal/webview"
)

// PanelConfig identifies a logical view. ViewType is the sole identity
// key: at most one live panel per viewType exists at any time.
type PanelConfig struct {
	ViewType                string
	Title                   string
	RetainContextWhenHidden bool
	Handlers                map[string]Handler
}

var viewTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// Factory is the only sanctioned way to create a webview panel. It
// composes the secure renderer, the lifecycle manager, and the message
// dispatcher behind one entry point. Construct one per activation and
// pass it explicitly; there is no package-level instance.
type Factory struct {
	manager *Manager
	log     io.Writer
}

func NewFactory(host Host, log io.Writer) *Factory {
	if log == nil {
		log = io.Discard
	}
	return &Factory{
		manager: NewManager(host, log),
		log:     log,
	}
}

// OpenSecurePanel validates the config, renders the template through
// the secure renderer, and opens (or updates in place) the panel for
// the config's viewType. Configuration errors are programmer errors in
// the calling feature code and fail fast; host panel-creation failures
// propagate unmodified.
func (f *Factory) OpenSecurePanel(cfg PanelConfig, tmpl webview.ContentTemplate) (*LivePanel, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("panel %q: %w", cfg.ViewType, err)
	}

	html := webview.Render(tmpl)
	live, _, err := f.manager.Open(cfg.ViewType, cfg.Title, cfg.RetainContextWhenHidden, html)
	if err != nil {
		return nil, err
	}

	// Rebinding on every open keeps the handler map current when a
	// feature reopens its panel with different commands.
	live.setSubscription(Bind(live.native, cfg.Handlers, f.log))
	return live, nil
}

// UpdatePanelContent re-renders an existing panel. Updating an absent
// panel is a safe no-op so stale async results cannot fail.
func (f *Factory) UpdatePanelContent(viewType string, tmpl webview.ContentTemplate) error {
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("panel %q: %w", viewType, err)
	}
	f.manager.UpdateContent(viewType, webview.Render(tmpl))
	return nil
}

// ClosePanel disposes the panel for a viewType; idempotent.
func (f *Factory) ClosePanel(viewType string) {
	f.manager.Close(viewType)
}

// CloseAllPanels disposes every live panel.
func (f *Factory) CloseAllPanels() {
	f.manager.CloseAll()
}

// ActivePanels returns the live viewTypes in sorted order.
func (f *Factory) ActivePanels() []string {
	return f.manager.Active()
}

func validateConfig(cfg PanelConfig) error {
	if strings.TrimSpace(cfg.ViewType) == "" {
		return fmt.Errorf("panel viewType is required")
	}
	if !viewTypePattern.MatchString(cfg.ViewType) {
		return fmt.Errorf("invalid panel viewType %q: must match %s", cfg.ViewType, viewTypePattern.String())
	}
	if strings.TrimSpace(cfg.Title) == "" {
		return fmt.Errorf("panel %q: title is required", cfg.ViewType)
	}
	for command, handler := range cfg.Handlers {
		if handler == nil {
			return fmt.Errorf("panel %q: handler for command %q is nil", cfg.ViewType, command)
		}
	}
	return nil
}
