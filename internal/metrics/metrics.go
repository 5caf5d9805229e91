// Package metrics exposes benchmark timings as Prometheus metrics.
//
// A run is a short-lived process, so metrics are written once to a file in
// the text exposition format (for the node_exporter textfile collector)
// instead of being served over HTTP.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/reviewbench/internal/report"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// Phase label values for reviewbench_phase_duration_seconds.
const (
	PhaseInsert = "insert"
	PhaseUpdate = "update"
	PhaseRun    = "run"
)

// BenchmarkMetrics contains Prometheus metrics for one benchmark run.
type BenchmarkMetrics struct {
	registry *prometheus.Registry

	pageDuration     prometheus.Histogram
	pagesTotal       prometheus.Counter
	rowsUpdatedTotal prometheus.Counter

	phaseDuration *prometheus.GaugeVec
	recordsLoaded prometheus.Gauge
	tableRows     prometheus.Gauge
	runInfo       *prometheus.GaugeVec

	collectors []prometheus.Collector
}

// NewBenchmarkMetrics creates and registers benchmark metrics.
func NewBenchmarkMetrics(registry *prometheus.Registry) (*BenchmarkMetrics, error) {
	m := &BenchmarkMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register benchmark metrics: %w", err)
	}
	return m, nil
}

func (m *BenchmarkMetrics) initMetrics() {
	m.pageDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewbench_page_duration_seconds",
		Help:    "Time to fetch, update and commit one page of the batch walk",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
	})

	m.pagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reviewbench_pages_total",
		Help: "Committed pages of the batch walk",
	})

	m.rowsUpdatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reviewbench_rows_updated_total",
		Help: "Rows whose type column was rewritten",
	})

	m.phaseDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reviewbench_phase_duration_seconds",
			Help: "Wall-clock duration of each run phase",
		},
		[]string{"phase"},
	)

	m.recordsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reviewbench_records_loaded",
		Help: "Records read from the CSV file",
	})

	m.tableRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reviewbench_table_rows",
		Help: "COUNT(row_number) of the table at the end of the run",
	})

	m.runInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reviewbench_run_info",
			Help: "Configuration of the run, value is always 1",
		},
		[]string{"run_id", "table", "strategy", "pagination", "insert_method"},
	)

	m.collectors = []prometheus.Collector{
		m.pageDuration,
		m.pagesTotal,
		m.rowsUpdatedTotal,
		m.phaseDuration,
		m.recordsLoaded,
		m.tableRows,
		m.runInfo,
	}
}

// Describe implements prometheus.Collector.
func (m *BenchmarkMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *BenchmarkMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// ObservePage records one committed page. Matches services.ProgressFunc.
func (m *BenchmarkMetrics) ObservePage(p reviewbench.PageProgress) {
	m.pageDuration.Observe(p.Duration.Seconds())
	m.pagesTotal.Inc()
	m.rowsUpdatedTotal.Add(float64(p.RowsInPage))
}

// RecordReport records the totals of a finished run.
// Bulk updates have no pages, so their rows are counted here.
func (m *BenchmarkMetrics) RecordReport(rep *report.RunReport) {
	m.phaseDuration.WithLabelValues(PhaseInsert).Set(rep.Insert.Elapsed.Seconds())
	m.phaseDuration.WithLabelValues(PhaseUpdate).Set(rep.Update.Elapsed.Seconds())
	m.phaseDuration.WithLabelValues(PhaseRun).Set(rep.Elapsed.Seconds())

	m.recordsLoaded.Set(float64(rep.RecordsLoaded))
	m.tableRows.Set(float64(rep.FinalRowCount))

	if rep.Update.Strategy == reviewbench.StrategyBulk {
		m.rowsUpdatedTotal.Add(float64(rep.Update.RowsUpdated))
	}

	m.runInfo.WithLabelValues(
		rep.RunID,
		rep.Table,
		string(rep.Update.Strategy),
		string(rep.Update.Pagination),
		string(rep.InsertMethod),
	).Set(1)
}

// WriteTextfile writes every registered metric to path in the text format.
// The file is replaced atomically.
func (m *BenchmarkMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
