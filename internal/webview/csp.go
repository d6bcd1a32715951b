package webview

import (
	"fmt"
	"strings"
)

// ContentSecurityPolicy assembles the policy string for one rendered
// document. Every directive is deny-by-default except the two inline
// blocks the renderer itself emits, which are scoped to a single-use
// nonce:
//
//   - default-src 'none' denies everything not explicitly allowed
//   - script-src 'nonce-N' permits only the host-emitted bridge script
//   - style-src additionally permits 'unsafe-inline' because dynamically
//     computed inline styles (status colors) are a frequent, low-risk
//     need; this relaxation is deliberate
//   - connect-src 'none' forbids network calls from rendered content;
//     all communication goes through the message bridge
//
// No directive may reference a wildcard scheme or an external host.
// That invariant is enforced by the security scanner over call sites,
// not by this builder.
type ContentSecurityPolicy struct {
	Nonce       string
	ImgSources  []string
	FontSources []string
}

// NewContentSecurityPolicy returns a policy scoped to the given nonce
// with the default image/font scheme allow-lists.
func NewContentSecurityPolicy(nonce string) ContentSecurityPolicy {
	return ContentSecurityPolicy{
		Nonce:       nonce,
		ImgSources:  []string{"data:", "https:"},
		FontSources: []string{"data:"},
	}
}

// String renders the policy directive string.
func (p ContentSecurityPolicy) String() string {
	img := strings.Join(p.ImgSources, " ")
	if img == "" {
		img = "'none'"
	}
	font := strings.Join(p.FontSources, " ")
	if font == "" {
		font = "'none'"
	}
	return fmt.Sprintf(
		"default-src 'none'; script-src 'nonce-%s'; style-src 'nonce-%s' 'unsafe-inline'; img-src %s; font-src %s; connect-src 'none'",
		p.Nonce, p.Nonce, img, font,
	)
}

// MetaTag renders the policy as an http-equiv meta element.
func (p ContentSecurityPolicy) MetaTag() string {
	return fmt.Sprintf(`<meta http-equiv="Content-Security-Policy" content="%s">`, p.String())
}
