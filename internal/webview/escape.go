package webview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Escape replaces HTML-significant characters with their entity forms.
// The ampersand is replaced first so entities produced by the later
// replacements are never double-encoded.
//
// Escape is NOT idempotent: escaping already-escaped text double-encodes
// ampersands ("&amp;" becomes "&amp;amp;"). Callers must escape exactly
// once, at the point where untrusted data is concatenated into markup.
func Escape(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, `"`, "&quot;")
	text = strings.ReplaceAll(text, "'", "&#039;")
	return text
}

// SanitizeForWebview stringifies an arbitrary value and escapes the
// result so any value type can be safely interpolated into panel markup.
// Maps, slices, and structs render as pretty-printed JSON; nil renders
// as "null"; scalars render as their literal string form.
func SanitizeForWebview(value any) string {
	return Escape(stringify(value))
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return fmt.Sprintf("%t", v)
	case error:
		return v.Error()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(b)
}
