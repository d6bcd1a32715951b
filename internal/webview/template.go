package webview

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// TrustedHTML marks a markup fragment as pre-sanitized. The renderer
// inserts its value verbatim, so the only sanctioned ways to produce
// one are EscapedText (which escapes for you) and TrustRaw (an explicit
// "I have already sanitized this" assertion at the call site).
//
// This is the sharpest edge in the system: everything else the renderer
// touches is auto-escaped, TrustedHTML is not. Composing a fragment
// from dynamic values without Escape/SanitizeForWebview on each value
// and then wrapping it in TrustRaw defeats the entire trust boundary.
type TrustedHTML struct {
	value string
}

// EscapedText escapes plain text and wraps it as a trusted fragment.
func EscapedText(text string) TrustedHTML {
	return TrustedHTML{value: Escape(text)}
}

// TrustRaw asserts that the given markup has already been sanitized by
// the caller. Every dynamic value inside it must have gone through
// Escape or SanitizeForWebview exactly once.
func TrustRaw(markup string) TrustedHTML {
	return TrustedHTML{value: markup}
}

// String returns the underlying markup.
func (t TrustedHTML) String() string {
	return t.value
}

func (t TrustedHTML) isZero() bool {
	return t.value == ""
}

// Action describes one command button rendered into the panel. ID
// becomes the command name dispatched on click and must be unique
// within a template.
type Action struct {
	ID       string
	Label    string
	Icon     string
	Disabled bool
	Primary  bool
}

// MetadataEntry is one key/value pair rendered into the panel footer.
// Entries keep the order the caller appended them in.
type MetadataEntry struct {
	Key   string
	Value string
}

// ContentTemplate is the renderable payload for one panel document.
// Title, action labels, and metadata are escaped by the renderer;
// Content is inserted verbatim (see TrustedHTML).
type ContentTemplate struct {
	Title    string
	Content  TrustedHTML
	Actions  []Action
	Metadata []MetadataEntry
}

var actionIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

// Validate checks the template invariants: title and content are set,
// action IDs are well-formed and unique.
func (t ContentTemplate) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("template title is required")
	}
	if t.Content.isZero() {
		return errors.New("template content is required")
	}
	seen := make(map[string]struct{}, len(t.Actions))
	for _, a := range t.Actions {
		if !actionIDPattern.MatchString(a.ID) {
			return fmt.Errorf("invalid action id %q", a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate action id %q", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// TemplateBuilder accumulates template fields and validates them at
// Build time, so an incomplete template fails at construction rather
// than at render.
type TemplateBuilder struct {
	tmpl ContentTemplate
}

func NewTemplate() *TemplateBuilder {
	return &TemplateBuilder{}
}

func (b *TemplateBuilder) Title(title string) *TemplateBuilder {
	b.tmpl.Title = title
	return b
}

func (b *TemplateBuilder) Content(content TrustedHTML) *TemplateBuilder {
	b.tmpl.Content = content
	return b
}

func (b *TemplateBuilder) Action(action Action) *TemplateBuilder {
	b.tmpl.Actions = append(b.tmpl.Actions, action)
	return b
}

func (b *TemplateBuilder) Meta(key, value string) *TemplateBuilder {
	b.tmpl.Metadata = append(b.tmpl.Metadata, MetadataEntry{Key: key, Value: value})
	return b
}

// Build validates and returns the accumulated template.
func (b *TemplateBuilder) Build() (ContentTemplate, error) {
	if err := b.tmpl.Validate(); err != nil {
		return ContentTemplate{}, err
	}
	return b.tmpl, nil
}
