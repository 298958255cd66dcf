package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/view"
)

// Lookup renders the full page around the form
func Lookup(s view.State, historyEnabled bool) templ.Component {
	return layout(page{
		title:          "Pincode Lookup",
		historyEnabled: historyEnabled,
		refresh:        s.Phase == view.Loading,
	}, LookupRegion(s))
}

// LookupRegion renders only the swappable form region
func LookupRegion(s view.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		switch s.Phase {
		case view.Loading:
			h.raw(`<div id="lookup" hx-get="/state" hx-trigger="every 500ms" hx-swap="outerHTML"><h3>Pincode: `)
			h.text(s.Code.String())
			h.raw(`</h3><p>Loading...</p>`)
			h.raw(`<form method="post" action="/cancel" hx-post="/cancel" hx-target="#lookup" hx-swap="outerHTML">`)
			h.raw(`<button type="submit">Cancel</button></form></div>`)

		case view.ResultsShown:
			h.raw(`<div id="lookup"><h3>Pincode: `)
			h.text(s.Code.String())
			h.raw(`</h3>`)
			if msg := s.Message(); msg != "" {
				h.raw(`<p class="error">`)
				h.text(msg)
				h.raw(`</p><div class="grid"></div>`)
			} else {
				h.raw(`<form method="get" action="/filter"><input class="filter" type="text" name="q" value="`)
				h.text(s.FilterText)
				h.raw(`" placeholder="Filter" hx-get="/filter" hx-trigger="input changed delay:200ms" hx-target="#results" hx-swap="outerHTML"></form>`)
				h.component(ctx, Results(s))
			}
			h.raw(`<form method="post" action="/reset" hx-post="/reset" hx-target="#lookup" hx-swap="outerHTML">`)
			h.raw(`<button type="submit">New search</button></form></div>`)

		default:
			h.raw(`<div id="lookup"><h3>Enter Pincode</h3>`)
			h.raw(`<form method="post" action="/lookup" hx-post="/lookup" hx-target="#lookup" hx-swap="outerHTML">`)
			h.raw(`<input class="code" type="text" name="pincode" value="`)
			h.text(s.Input)
			h.raw(`" placeholder="Pincode" maxlength="6" autofocus>`)
			h.raw(`<div style="margin-top: 10px"><button type="submit">Lookup</button></div></form>`)
			if s.Error != "" {
				h.raw(`<p class="error">`)
				h.text(s.Error)
				h.raw(`</p>`)
			}
			h.raw(`</div>`)
		}

		return h.err
	})
}

// Results renders the count line and the card grid
func Results(s view.State) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div id="results"><p>Message: Number of pincode(s) found: `)
		h.raw(strconv.Itoa(s.Count()))
		h.raw(`</p>`)

		if s.NoMatches() {
			h.raw(`<p>`)
			h.text(view.NoMatchesMessage)
			h.raw(`</p>`)
		} else {
			h.raw(`<div class="grid">`)
			for _, p := range s.Filtered {
				writeCard(h, p)
			}
			h.raw(`</div>`)
		}

		h.raw(`</div>`)
		return h.err
	})
}

func writeCard(h *htmlWriter, p model.PostOffice) {
	h.raw(`<div class="card">`)
	for _, field := range []struct{ label, value string }{
		{"Name", p.Name},
		{"Branch Type", p.BranchType},
		{"Delivery Status", p.DeliveryStatus},
		{"District", p.District},
		{"Division", p.Division},
	} {
		h.raw(`<p><strong>`)
		h.text(field.label)
		h.raw(`:</strong> `)
		h.text(field.value)
		h.raw(`</p>`)
	}
	h.raw(`</div>`)
}
