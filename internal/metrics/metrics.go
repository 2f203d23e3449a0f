package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/airsat/internal/core"
)

const (
	// OutcomeSuccess labels render passes that produced a view.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels passes rejected for an invalid filter range.
	OutcomeInvalid = "invalid"
	// OutcomeError labels any other failure.
	OutcomeError = "error"
)

const namespace = "airsat"

var (
	datasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the cleaned dataset.",
		},
	)

	cleanDroppedRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clean_dropped_rows",
			Help:      "Rows dropped during cleaning for a missing arrival delay.",
		},
	)

	delayCapMinutes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delay_cap_minutes",
			Help:      "99th percentile cap applied to each delay column.",
		},
		[]string{"column"},
	)

	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Filter and aggregate passes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	renderDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_seconds",
			Help:      "Filter and aggregate latency in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	filteredRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Rows remaining after filtering.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
)

// Register attaches airsat collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		datasetRows,
		cleanDroppedRows,
		delayCapMinutes,
		rendersTotal,
		renderDurationSeconds,
		filteredRows,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveClean records the result of the startup cleaning pass.
func ObserveClean(report core.CleanReport) {
	datasetRows.Set(float64(report.RowsOut))
	cleanDroppedRows.Set(float64(report.RowsDropped))
	delayCapMinutes.WithLabelValues(string(core.ColDepartureDelay)).Set(report.DepartureCap)
	delayCapMinutes.WithLabelValues(string(core.ColArrivalDelay)).Set(report.ArrivalCap)
}

// ObserveRender records a render pass. rows is the filtered row count and is
// only observed on success.
func ObserveRender(duration time.Duration, rows int, err error) {
	outcome := Outcome(err)
	rendersTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	renderDurationSeconds.Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		filteredRows.Observe(float64(rows))
	}
}

// Outcome returns the outcome label for a render error.
func Outcome(err error) string {
	var rangeErr *core.InvalidRangeError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &rangeErr):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
