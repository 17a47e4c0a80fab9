package didl

import "strings"

// escapeText entity-escapes a string for use as XML element content.
// Output is escaped exactly once: consumers de-escape the SOAP envelope to
// get this DIDL-Lite, then de-escape again to get the original display
// text, per the renderer's round-trip contract.
func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}

// escapeAttr entity-escapes a string for use inside a double-quoted XML
// attribute value.
func escapeAttr(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
