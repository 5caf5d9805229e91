package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vvka-141/reviewbench/internal/report"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestMetrics(t *testing.T) (*BenchmarkMetrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m, err := NewBenchmarkMetrics(registry)
	require.NoError(t, err)
	return m, registry
}

func findFamily(t *testing.T, registry *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func TestObservePage(t *testing.T) {
	m, registry := newTestMetrics(t)

	m.ObservePage(reviewbench.PageProgress{Page: 1, RowsInPage: 100, RowsUpdated: 100, Duration: 20 * time.Millisecond})
	m.ObservePage(reviewbench.PageProgress{Page: 2, RowsInPage: 40, RowsUpdated: 140, Duration: 5 * time.Millisecond})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.pagesTotal))
	assert.Equal(t, float64(140), testutil.ToFloat64(m.rowsUpdatedTotal))

	hist := findFamily(t, registry, "reviewbench_page_duration_seconds").GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), hist.GetSampleCount())
	assert.InDelta(t, 0.025, hist.GetSampleSum(), 1e-9)
}

func testReport(strategy reviewbench.UpdateStrategy) *report.RunReport {
	return &report.RunReport{
		RunID:         "run-1",
		Table:         "reviews",
		InsertMethod:  reviewbench.InsertCopy,
		RecordsLoaded: 3,
		Insert:        reviewbench.InsertOutcome{Inserted: 3, Elapsed: 2 * time.Second},
		Update: reviewbench.UpdateResult{
			Strategy:    strategy,
			Pagination:  reviewbench.PaginationKeyset,
			RowsUpdated: 3,
			Elapsed:     500 * time.Millisecond,
		},
		FinalRowCount: 3,
		Elapsed:       4 * time.Second,
	}
}

func TestRecordReport(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordReport(testReport(reviewbench.StrategyBatch))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.phaseDuration.WithLabelValues(PhaseInsert)))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.phaseDuration.WithLabelValues(PhaseUpdate)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.phaseDuration.WithLabelValues(PhaseRun)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recordsLoaded))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tableRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runInfo.WithLabelValues("run-1", "reviews", "batch", "keyset", "copy")))

	// Batch rows are counted per page, not from the report.
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rowsUpdatedTotal))
}

func TestRecordReport_BulkCountsRows(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordReport(testReport(reviewbench.StrategyBulk))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsUpdatedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pagesTotal))
}

func TestNewBenchmarkMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewBenchmarkMetrics(registry)
	require.NoError(t, err)

	_, err = NewBenchmarkMetrics(registry)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.ObservePage(reviewbench.PageProgress{Page: 1, RowsInPage: 3, Duration: time.Millisecond})
	m.RecordReport(testReport(reviewbench.StrategyBatch))

	path := filepath.Join(t.TempDir(), "reviewbench.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "reviewbench_pages_total 1")
	assert.Contains(t, text, "reviewbench_rows_updated_total 3")
	assert.Contains(t, text, `reviewbench_phase_duration_seconds{phase="update"} 0.5`)
	assert.True(t, strings.Contains(text, "# TYPE reviewbench_page_duration_seconds histogram"))
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	m, _ := newTestMetrics(t)
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "reviewbench.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write metrics")
}
