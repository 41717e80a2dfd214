// Package template implements the placeholder language used by authored
// notification templates: `{{name}}` substitution and non-nested
// `{{#if name}}...{{/if}}` conditional blocks.
//
// Two rules are deliberate and load-bearing for existing templates:
//
//   - A placeholder with no matching context key stays verbatim in the
//     output, it is never blanked.
//   - Values are inserted into HTML bodies without escaping. Templates such
//     as items_list rely on raw HTML injection, so a hardened variant must
//     opt in to escaping rather than change this default.
package template

import (
	"strings"

	"noticore/internal/domain/notification"
)

const (
	ifOpen   = "{{#if "
	ifClose  = "{{/if}}"
	tagClose = "}}"
)

var _ notification.Renderer = Engine{}

// Engine adapts Render to the dispatcher's Renderer interface.
type Engine struct{}

func (Engine) Render(tpl string, data notification.Data) string {
	return Render(tpl, data)
}

// Render substitutes every present context value into the template, then
// resolves conditional blocks. Pure and total: no I/O, no errors, missing
// data never panics.
func Render(tpl string, data notification.Data) string {
	out := tpl
	for key, val := range data {
		out = strings.ReplaceAll(out, "{{"+key+"}}", val)
	}
	return resolveConditionals(out, data)
}

// resolveConditionals scans for `{{#if name}}...{{/if}}` blocks. A block
// keeps its content when the named variable is truthy (present, non-empty)
// and vanishes otherwise. Blocks do not nest: each opener pairs with the
// first closer after it. A malformed block (unterminated opener or missing
// closer) is left verbatim.
func resolveConditionals(s string, data notification.Data) string {
	var b strings.Builder
	for {
		open := strings.Index(s, ifOpen)
		if open < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])
		s = s[open:]

		nameEnd := strings.Index(s, tagClose)
		if nameEnd < 0 {
			b.WriteString(s)
			return b.String()
		}
		name := strings.TrimSpace(s[len(ifOpen):nameEnd])

		body := s[nameEnd+len(tagClose):]
		closer := strings.Index(body, ifClose)
		if closer < 0 {
			b.WriteString(s)
			return b.String()
		}

		if data.Truthy(name) {
			b.WriteString(body[:closer])
		}
		s = body[closer+len(ifClose):]
	}
}
