// Package metrics 同步引擎的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics 同步运行、单条赛事处理与过期停用指标；nil 接收者上的方法均为空操作
type SyncMetrics struct {
	runsTotal            *prometheus.CounterVec
	runDuration          prometheus.Histogram
	eventsTotal          *prometheus.CounterVec
	matchesTotal         *prometheus.CounterVec
	deactivatedTotal     prometheus.Counter
	lastSuccessTimestamp prometheus.Gauge
}

// NewSyncMetrics 创建并注册指标
func NewSyncMetrics(registry prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carnival_sync_runs_total",
			Help: "Total number of sync runs by status",
		}, []string{"status"}), // status: completed, failed, skipped
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carnival_sync_run_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carnival_sync_events_total",
			Help: "Scraped events processed by outcome",
		}, []string{"outcome"}), // outcome: created, updated, skipped, failed
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carnival_sync_matches_total",
			Help: "Existing carnivals matched by strategy",
		}, []string{"strategy"}),
		deactivatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carnival_sync_deactivated_total",
			Help: "Carnivals deactivated because their date has passed",
		}),
		lastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carnival_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last completed sync run",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.runsTotal, m.runDuration, m.eventsTotal, m.matchesTotal, m.deactivatedTotal, m.lastSuccessTimestamp,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SyncMetrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	if status == "skipped" {
		return
	}
	m.runDuration.Observe(d.Seconds())
	if status == "completed" {
		m.lastSuccessTimestamp.SetToCurrentTime()
	}
}

func (m *SyncMetrics) EventOutcome(outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(outcome).Inc()
}

func (m *SyncMetrics) Matched(strategy string) {
	if m == nil {
		return
	}
	m.matchesTotal.WithLabelValues(strategy).Inc()
}

func (m *SyncMetrics) Deactivated(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.deactivatedTotal.Add(float64(n))
}
