// Package render serializes vdom trees to HTML.
//
// The renderer handles the parts of producing valid, safe HTML that views
// should not care about:
//
//   - Text and attribute escaping
//   - Void elements (input, br, img, ...)
//   - Boolean attributes (disabled, checked, ...)
//   - Live element properties that shadow markup (input value, textarea value)
//   - Optional pretty-printed output
//
// # Basic Usage
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// Escaping is also exported for the engine, which escapes plain-text values
// before materializing them as markup:
//
//	safe := render.EscapeHTML(value)
package render
