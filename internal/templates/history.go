package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/store"
)

// HistoryPage is the render model of the history view. Pincode is set
// when the records are limited to one code.
type HistoryPage struct {
	Title   string
	Stats   *model.LookupStats
	Daily   []store.DailyCount
	Days    int
	Pincode string
	Records []model.LookupRecord
}

// History renders recent lookups with aggregate statistics
func History(p HistoryPage) templ.Component {
	if p.Title == "" {
		p.Title = "Lookup History"
	}
	return layout(page{title: p.Title, historyEnabled: true}, historyContent(p))
}

func historyContent(p HistoryPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h3>Lookup history</h3>`)

		if s := p.Stats; s != nil {
			h.raw(`<p>`)
			h.text(fmt.Sprintf("Lookups: %d · Found: %d · No data: %d · Failed: %d · Distinct pincodes: %d · Success rate: %.1f%%",
				s.Total, s.Successes, s.Empties, s.Failures, s.DistinctPincodes, s.SuccessRate()))
			h.raw(`</p>`)
			if s.TopPincode != "" {
				h.raw(`<p>`)
				h.text(fmt.Sprintf("Most searched: %s (%d lookups)", s.TopPincode, s.TopPincodeCount))
				h.raw(`</p>`)
			}
		}

		if len(p.Daily) > 0 {
			h.raw(`<h4>Last ` + strconv.Itoa(p.Days) + ` days</h4><table><tr><th>Day</th><th>Lookups</th></tr>`)
			for _, d := range p.Daily {
				h.raw(`<tr><td>` + d.Date.Format("2006-01-02") + `</td><td>` + strconv.Itoa(d.Count) + `</td></tr>`)
			}
			h.raw(`</table>`)
		}

		if p.Pincode != "" {
			h.raw(`<h4>Lookups of `)
			h.text(p.Pincode)
			h.raw(` <a href="/history">(all)</a></h4>`)
		} else {
			h.raw(`<h4>Recent lookups</h4>`)
		}

		if len(p.Records) == 0 {
			h.raw(`<p>No lookups recorded yet.</p>`)
			return h.err
		}

		h.raw(`<table><tr><th>When</th><th>Pincode</th><th>Outcome</th><th>Post offices</th><th>Message</th><th>Time</th></tr>`)
		for _, r := range p.Records {
			h.raw(`<tr><td>` + r.CreatedAt.Format("2006-01-02 15:04:05") + `</td><td><a href="/history?pincode=`)
			h.text(r.Pincode)
			h.raw(`">`)
			h.text(r.Pincode)
			h.raw(`</a></td><td>`)
			h.text(string(r.Outcome))
			if r.FailureKind.Valid {
				h.text(" (" + r.FailureKind.String + ")")
			}
			h.raw(`</td><td>` + strconv.Itoa(r.RecordCount) + `</td><td>`)
			h.text(r.Message)
			h.raw(`</td><td>` + r.Duration.String() + `</td></tr>`)
		}
		h.raw(`</table>`)

		return h.err
	})
}
