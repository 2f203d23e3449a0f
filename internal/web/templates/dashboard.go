package templates

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/airsat/internal/core"
)

// Title is the dashboard page title.
const Title = "Airline Customer Satisfaction Analysis"

// DashboardData is everything the dashboard page displays.
type DashboardData struct {
	Source   string
	LoadedAt time.Time

	// Alert is set when the submitted filters were rejected. The rest of the
	// page then shows the last valid view.
	Alert *core.UserMessage

	// Form holds the values shown in the filter form.
	Form    core.FilterSpec
	Domains map[core.Column][]string
	Bounds  core.Bounds

	Showing int
	Total   int
	Summary core.SummaryView

	Rows       []core.Record
	Page       int
	TotalPages int

	// Query is the encoded filter of the displayed view, used for chart,
	// export, and paging links.
	Query string

	Report core.CleanReport
}

// filterLabels are the form labels for each categorical filter.
var filterLabels = map[core.Column]string{
	core.ColSatisfaction:   "Select Satisfaction Level",
	core.ColGender:         "Select Gender",
	core.ColCustomerType:   "Customer Type",
	core.ColClass:          "Travel Class",
	core.ColTypeOfTravel:   "Type of Travel",
	core.ColAge:            "Select Age Range",
	core.ColFlightDistance: "Select Flight Distance",
	core.ColSeatComfort:    "Seat Comfort Rating",
}

// FilterField names a form control and the column it filters.
type FilterField struct {
	Column core.Column
	Param  string
}

// Dashboard renders the full dashboard page.
func Dashboard(d DashboardData, categories, ranges []FilterField) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h1>`)
		h.text(Title)
		h.raw(`</h1><div class="layout"><aside class="sidebar">`)
		h.component(filterForm(d, categories, ranges))
		h.raw(`</aside><section class="content">`)
		if d.Alert != nil {
			h.component(ErrorAlert(d.Alert.Message, d.Alert.Action, d.Alert.Code))
		}
		h.component(recordsSection(d))
		h.component(summarySection(d))
		h.component(cleanReport(d))
		h.raw(`</section></div>`)
		return h.err
	})
	return Page(Title, body)
}

func filterForm(d DashboardData, categories, ranges []FilterField) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h2>Filter Options</h2><form method="get" action="/" class="filters">`)

		for _, f := range categories {
			selected := d.Form.Set(f.Column)
			h.raw(`<label`)
			h.attr("for", f.Param)
			h.raw(`>`)
			h.text(filterLabels[f.Column])
			h.raw(`</label>`)
			// The empty hidden value marks the select as submitted even when
			// nothing in it is selected.
			h.raw(`<input type="hidden" value=""`)
			h.attr("name", f.Param)
			h.raw(`><select multiple`)
			h.attr("id", f.Param)
			h.attr("name", f.Param)
			h.raw(`>`)
			for _, v := range d.Domains[f.Column] {
				h.raw(`<option`)
				h.attr("value", v)
				if selected.Contains(v) {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(v)
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
		}

		for _, f := range ranges {
			want, _ := d.Form.Range(f.Column)
			bounds, _ := d.Bounds.Range(f.Column)
			lo := strconv.Itoa(bounds.Min)
			hi := strconv.Itoa(bounds.Max)

			h.raw(`<fieldset class="range"><legend>`)
			h.text(filterLabels[f.Column])
			h.raw(`</legend>`)
			h.raw(`<input type="number" aria-label="minimum"`)
			h.attr("name", f.Param+"_min")
			h.attr("min", lo)
			h.attr("max", hi)
			h.attr("value", strconv.Itoa(want.Min))
			h.raw(`><span>to</span><input type="number" aria-label="maximum"`)
			h.attr("name", f.Param+"_max")
			h.attr("min", lo)
			h.attr("max", hi)
			h.attr("value", strconv.Itoa(want.Max))
			h.raw(`><small>`)
			h.text("observed " + lo + " to " + hi)
			h.raw(`</small></fieldset>`)
		}

		h.raw(`<div class="actions"><button type="submit">Apply</button><a href="/">Reset</a></div></form>`)
		return h.err
	})
}

func recordsSection(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h2>Filtered Customer Data</h2><p class="showing">`)
		h.rawf("Showing %d entries out of %d total.", d.Showing, d.Total)
		h.raw(`</p><p class="downloads"><a`)
		h.attr("href", "/api/export.csv?"+d.Query)
		h.raw(`>Download CSV</a> <a`)
		h.attr("href", "/api/export.xlsx?"+d.Query)
		h.raw(`>Download XLSX</a></p>`)

		h.raw(`<div class="table-wrap"><table><thead><tr>`)
		for _, spec := range core.Schema {
			h.raw(`<th>`)
			h.text(spec.Label)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, rec := range d.Rows {
			h.raw(`<tr>`)
			for _, spec := range core.Schema {
				h.raw(`<td>`)
				h.text(cellText(rec, spec))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></div>`)
		h.component(pagination(d))
		return h.err
	})
}

func cellText(rec core.Record, spec core.FieldSpec) string {
	switch spec.Type {
	case core.FieldCategorical:
		return rec.Category(spec.Column)
	case core.FieldInteger:
		v, _ := rec.Int(spec.Column)
		return strconv.Itoa(v)
	default:
		return FormatDelay(rec.Delay(spec.Column))
	}
}

func pagination(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if d.TotalPages <= 1 {
			return nil
		}
		h := newWriter(ctx, w)
		h.raw(`<nav class="pagination">`)
		if d.Page > 1 {
			h.raw(`<a rel="prev"`)
			h.attr("href", "/?"+d.Query+"&page="+strconv.Itoa(d.Page-1))
			h.raw(`>Previous</a>`)
		}
		h.rawf(`<span>Page %d of %d</span>`, d.Page, d.TotalPages)
		if d.Page < d.TotalPages {
			h.raw(`<a rel="next"`)
			h.attr("href", "/?"+d.Query+"&page="+strconv.Itoa(d.Page+1))
			h.raw(`>Next</a>`)
		}
		h.raw(`</nav>`)
		return h.err
	})
}

func summarySection(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)

		h.raw(`<h2>Customer Satisfaction Statistics</h2><img class="chart" alt="Satisfaction counts"`)
		h.attr("src", "/chart/satisfaction.png?"+d.Query)
		h.raw(`><ul class="counts">`)
		for _, c := range d.Summary.SatisfactionCounts {
			h.raw(`<li><span>`)
			h.text(c.Value)
			h.rawf(`</span> <strong>%d</strong></li>`, c.Count)
		}
		h.raw(`</ul>`)

		h.raw(`<h2>Average Service Ratings for Filtered Data</h2><img class="chart" alt="Average service ratings"`)
		h.attr("src", "/chart/ratings.png?"+d.Query)
		h.raw(`><dl class="means">`)
		for _, m := range d.Summary.RatingMeans {
			h.raw(`<dt>`)
			h.text(m.Label)
			h.raw(`</dt><dd>`)
			h.text(FormatMean(m.Mean))
			h.raw(`</dd>`)
		}
		h.raw(`</dl>`)

		h.raw(`<h2>Departure and Arrival Delays</h2><p class="delay">Average Departure Delay: `)
		h.text(FormatMean(d.Summary.DelayMeans.Departure))
		h.raw(` minutes</p><p class="delay">Average Arrival Delay: `)
		h.text(FormatMean(d.Summary.DelayMeans.Arrival))
		h.raw(` minutes</p>`)
		return h.err
	})
}

func cleanReport(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		r := d.Report
		h.raw(`<details class="report"><summary>Data cleaning</summary><dl>`)
		h.raw(`<dt>Source</dt><dd>`)
		h.text(d.Source)
		h.raw(`</dd><dt>Loaded</dt><dd>`)
		h.text(d.LoadedAt.UTC().Format(time.RFC3339))
		h.rawf(`</dd><dt>Rows read</dt><dd>%d</dd>`, r.RowsIn)
		h.rawf(`<dt>Rows dropped (missing arrival delay)</dt><dd>%d</dd>`, r.RowsDropped)
		h.rawf(`<dt>Rows kept</dt><dd>%d</dd>`, r.RowsOut)
		h.raw(`<dt>Departure delay cap (p99)</dt><dd>`)
		h.text(strconv.FormatFloat(r.DepartureCap, 'f', 2, 64))
		h.raw(`</dd><dt>Arrival delay cap (p99)</dt><dd>`)
		h.text(strconv.FormatFloat(r.ArrivalCap, 'f', 2, 64))
		h.raw(`</dd></dl></details>`)
		return h.err
	})
}
