// Package templates renders the web views as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body { font-family: sans-serif; padding: 20px; }
.error { color: red; }
.grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 10px; }
.card { border: 1px solid #ccc; padding: 10px; border-radius: 5px; }
.card p { margin: 4px 0; }
button { padding: 8px 16px; background-color: black; color: white; border: none; border-radius: 4px; cursor: pointer; }
input.code { padding: 8px; width: 200px; margin-right: 10px; }
input.filter { padding: 6px; margin-bottom: 10px; width: 100%; box-sizing: border-box; }
nav { margin-bottom: 20px; }
table { border-collapse: collapse; }
td, th { padding: 4px 12px; border-bottom: 1px solid #eee; text-align: left; }
`

// htmlWriter writes markup and keeps the first error
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content and quoted attribute values
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

type page struct {
	title          string
	historyEnabled bool
	// refresh reloads the page every second when scripts are disabled
	refresh bool
}

func layout(p page, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(p.title)
		h.raw(`</title>`)
		if p.refresh {
			h.raw(`<noscript><meta http-equiv="refresh" content="1"></noscript>`)
		}
		h.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><nav><a href="/">Lookup</a>`)
		if p.historyEnabled {
			h.raw(` · <a href="/history">History</a>`)
		}
		h.raw(`</nav>`)
		h.component(ctx, content)
		h.raw(`</body></html>`)
		return h.err
	})
}
