package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/JonMunkholm/airsat/internal/core"
)

const (
	chartHeight   = 360
	chartBarWidth = 60
)

// handleSatisfactionChart renders satisfaction counts of the filtered view as a PNG bar chart.
func (s *Server) handleSatisfactionChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.renderRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	bars := satisfactionBars(view.Summary, s.data.Domain(core.ColSatisfaction))
	png, err := renderBarChart("Customer Satisfaction", bars, 640)
	if err != nil {
		respondError(w, r, fmt.Errorf("render satisfaction chart: %w", err), http.StatusInternalServerError)
		return
	}
	writePNG(w, png)
}

// handleRatingsChart renders the mean service ratings of the filtered view as a PNG bar chart.
func (s *Server) handleRatingsChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.renderRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	png, err := renderBarChart("Average Service Ratings", ratingBars(view.Summary), 960)
	if err != nil {
		respondError(w, r, fmt.Errorf("render ratings chart: %w", err), http.StatusInternalServerError)
		return
	}
	writePNG(w, png)
}

// satisfactionBars returns one bar per domain value in domain order, so bars
// keep their position as filters change. Values outside the domain are
// appended after it.
func satisfactionBars(summary core.SummaryView, domain []string) []chart.Value {
	counts := summary.CountsMap()
	bars := make([]chart.Value, 0, len(domain))
	seen := make(map[string]bool, len(domain))
	for _, v := range domain {
		bars = append(bars, chart.Value{Label: v, Value: float64(counts[v])})
		seen[v] = true
	}
	for _, c := range summary.SatisfactionCounts {
		if !seen[c.Value] {
			bars = append(bars, chart.Value{Label: c.Value, Value: float64(c.Count)})
		}
	}
	return bars
}

// ratingBars returns one bar per rating column. A column with no data is drawn at zero.
func ratingBars(summary core.SummaryView) []chart.Value {
	bars := make([]chart.Value, 0, len(summary.RatingMeans))
	for _, m := range summary.RatingMeans {
		v := 0.0
		if m.Mean != nil {
			v = *m.Mean
		}
		bars = append(bars, chart.Value{Label: m.Label, Value: v})
	}
	return bars
}

// renderBarChart draws bars as a PNG. The y axis always starts at zero and
// has a positive height, so empty or all-zero views still render.
func renderBarChart(title string, bars []chart.Value, width int) ([]byte, error) {
	if len(bars) == 0 {
		bars = []chart.Value{{Label: "no data", Value: 0}}
	}

	top := 0.0
	for _, b := range bars {
		top = max(top, b.Value)
	}
	top = max(top*1.1, 1)

	ch := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
