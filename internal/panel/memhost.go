package panel

// MemHost is an in-memory Host. It records every creation call so the
// singleton-per-viewType invariant can be asserted, and lets callers
// inject inbound messages with Deliver.
type MemHost struct {
	Panels []*MemPanel

	// CreateErr, when set, is returned by CreatePanel. Models host
	// resource exhaustion.
	CreateErr error
}

func NewMemHost() *MemHost {
	return &MemHost{}
}

func (h *MemHost) CreatePanel(viewType, title string, retainContextWhenHidden bool) (NativePanel, error) {
	if h.CreateErr != nil {
		return nil, h.CreateErr
	}
	p := &MemPanel{
		ViewType: viewType,
		Title:    title,
		Retain:   retainContextWhenHidden,
	}
	h.Panels = append(h.Panels, p)
	return p, nil
}

// CreateCalls returns how many native panels the host has created.
func (h *MemHost) CreateCalls() int {
	return len(h.Panels)
}

// MemPanel is the in-memory NativePanel produced by MemHost.
type MemPanel struct {
	ViewType string
	Title    string
	Retain   bool

	HTML     string
	Reveals  int
	Disposed bool

	nextSub    int
	messageFns map[int]func(data []byte)
	disposeFns []func()
}

func (p *MemPanel) Reveal() {
	p.Reveals++
}

func (p *MemPanel) SetHTML(html string) {
	p.HTML = html
}

func (p *MemPanel) OnMessage(fn func(data []byte)) func() {
	if p.messageFns == nil {
		p.messageFns = make(map[int]func(data []byte))
	}
	id := p.nextSub
	p.nextSub++
	p.messageFns[id] = fn
	return func() {
		delete(p.messageFns, id)
	}
}

func (p *MemPanel) OnDispose(fn func()) {
	p.disposeFns = append(p.disposeFns, fn)
}

func (p *MemPanel) Dispose() {
	if p.Disposed {
		return
	}
	p.Disposed = true
	for _, fn := range p.disposeFns {
		fn()
	}
}

// Deliver simulates the rendered content posting a message to the host.
func (p *MemPanel) Deliver(data []byte) {
	if p.Disposed {
		return
	}
	for _, fn := range p.messageFns {
		fn(data)
	}
}
