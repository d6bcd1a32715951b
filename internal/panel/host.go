// Package panel owns the webview panel lifecycle: one live panel per
// viewType, message dispatch from rendered content back to registered
// handlers, and the factory that is the only sanctioned way to create
// a panel.
package panel

// NativePanel is the host-provided handle for one rendered surface.
// Implementations wrap the editor's real webview panel; MemPanel is an
// in-memory implementation for tests and headless use.
type NativePanel interface {
	// Reveal brings the panel to the foreground.
	Reveal()
	// SetHTML replaces the rendered document. State is pushed by full
	// re-render, never by incremental patches.
	SetHTML(html string)
	// OnMessage registers a callback for inbound messages posted by the
	// rendered content. The returned func removes the registration.
	OnMessage(fn func(data []byte)) (unsubscribe func())
	// OnDispose registers a callback invoked exactly once when the panel
	// is destroyed, whether by the user or by Dispose.
	OnDispose(fn func())
	// Dispose destroys the panel. Safe to call more than once.
	Dispose()
}

// Host creates native panels. The extension activation wires the real
// editor host here; tests wire a MemHost.
type Host interface {
	CreatePanel(viewType, title string, retainContextWhenHidden bool) (NativePanel, error)
}
