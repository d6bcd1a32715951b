package webview

import "math/rand"

const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultNonceLength is the token length used for every render.
const DefaultNonceLength = 32

// Nonce returns a random alphanumeric token for CSP script/style
// allow-listing. Lengths below 1 fall back to DefaultNonceLength.
//
// The token is deliberately not cryptographically hardened: it scopes a
// CSP directive to host-emitted inline blocks (defense in depth), it is
// not secret material. A fresh nonce must be generated for every render
// and never reused across renders or panels.
func Nonce(length int) string {
	if length < 1 {
		length = DefaultNonceLength
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = nonceAlphabet[rand.Intn(len(nonceAlphabet))]
	}
	return string(b)
}
