package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics собирает счётчики одного запуска. Процесс короткоживущий,
// поэтому метрики выгружаются в файл для textfile collector node_exporter.
type Metrics struct {
	registry        *prometheus.Registry
	CandidatesTotal *prometheus.CounterVec
	NewItemsTotal   *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	LastRun         prometheus.Gauge
	RunDuration     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CandidatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grantwatch_candidates_total",
			Help: "Relevant links extracted per source.",
		}, []string{"source"}),
		NewItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grantwatch_new_items_total",
			Help: "Links recorded as new per source.",
		}, []string{"source"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grantwatch_source_failures_total",
			Help: "Sources that failed to fetch or parse.",
		}, []string{"source"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grantwatch_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grantwatch_last_run_duration_seconds",
			Help: "Wall time of the last completed run.",
		}),
	}

	m.registry.MustRegister(m.CandidatesTotal, m.NewItemsTotal, m.FailuresTotal, m.LastRun, m.RunDuration)
	return m
}

// ObserveRun фиксирует время окончания и длительность запуска.
func (m *Metrics) ObserveRun(started, finished time.Time) {
	m.LastRun.Set(float64(finished.Unix()))
	m.RunDuration.Set(finished.Sub(started).Seconds())
}

// WriteTextfile атомарно записывает метрики в формате Prometheus text.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
