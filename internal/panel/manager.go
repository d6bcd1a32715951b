package panel

import (
	"io"
	"sort"
)

// LivePanel is the runtime handle bound to one viewType.
type LivePanel struct {
	ViewType string

	native      NativePanel
	unsubscribe func()
	disposed    bool
}

// Native exposes the underlying host panel handle.
func (p *LivePanel) Native() NativePanel {
	return p.native
}

// Manager tracks at most one live panel per viewType and owns every
// transition of the absent/live state machine. The tracking map is
// exclusively owned here; no other component writes to it. All
// operations run to completion on the host's single event thread, so
// there is no locking.
type Manager struct {
	host   Host
	log    io.Writer
	panels map[string]*LivePanel
}

func NewManager(host Host, log io.Writer) *Manager {
	if log == nil {
		log = io.Discard
	}
	return &Manager{
		host:   host,
		log:    log,
		panels: make(map[string]*LivePanel),
	}
}

// Open transitions a viewType to live. When the panel already exists it
// is revealed and re-rendered in place, preserving window-manager state
// and avoiding flicker; no second native panel is ever created. The
// returned bool reports whether a new native panel was created.
func (m *Manager) Open(viewType, title string, retain bool, html string) (*LivePanel, bool, error) {
	if live, ok := m.panels[viewType]; ok {
		live.native.Reveal()
		live.native.SetHTML(html)
		return live, false, nil
	}

	// Host creation failures pass through untouched so callers can match
	// on the host's own error values.
	native, err := m.host.CreatePanel(viewType, title, retain)
	if err != nil {
		return nil, false, err
	}

	live := &LivePanel{ViewType: viewType, native: native}
	m.panels[viewType] = live

	// Deregister from the tracking map before any other cleanup so a
	// dispose-triggered recreate cannot collide with stale state.
	native.OnDispose(func() {
		if live.disposed {
			return
		}
		live.disposed = true
		delete(m.panels, viewType)
		if live.unsubscribe != nil {
			live.unsubscribe()
			live.unsubscribe = nil
		}
	})

	native.SetHTML(html)
	return live, true, nil
}

// UpdateContent re-renders into an existing panel. A viewType with no
// live panel is a no-op: a stale result arriving after disposal must
// not fail.
func (m *Manager) UpdateContent(viewType, html string) bool {
	live, ok := m.panels[viewType]
	if !ok {
		return false
	}
	live.native.SetHTML(html)
	return true
}

// Close disposes the panel for a viewType. Closing an absent panel is
// not an error.
func (m *Manager) Close(viewType string) {
	live, ok := m.panels[viewType]
	if !ok {
		return
	}
	live.native.Dispose()
}

// CloseAll disposes every live panel.
func (m *Manager) CloseAll() {
	for _, viewType := range m.Active() {
		m.Close(viewType)
	}
}

// Active returns the live viewTypes in sorted order.
func (m *Manager) Active() []string {
	out := make([]string, 0, len(m.panels))
	for viewType := range m.panels {
		out = append(out, viewType)
	}
	sort.Strings(out)
	return out
}

// Get returns the live panel for a viewType, if any.
func (m *Manager) Get(viewType string) (*LivePanel, bool) {
	live, ok := m.panels[viewType]
	return live, ok
}

// setSubscription replaces the message subscription attached to a live
// panel, releasing any previous one.
func (p *LivePanel) setSubscription(unsubscribe func()) {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.unsubscribe = unsubscribe
}
