package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brandwatch/internal/models"
)

var (
	externalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandwatch_external_calls_total",
			Help: "Outbound API attempts by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	dashboardCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandwatch_dashboard_cache_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"},
	)

	jobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandwatch_jobs_total",
			Help: "Background jobs by source and status",
		},
		[]string{"source", "status"},
	)

	visibilityDesc = prometheus.NewDesc(
		"brandwatch_brand_visibility_score",
		"Current visibility score per brand",
		[]string{"brand_id", "brand"},
		nil,
	)
)

// ScoreSource supplies per-brand visibility scores at scrape time.
type ScoreSource interface {
	BrandComparison(ctx context.Context) ([]models.BrandComparison, error)
}

// VisibilityCollector is a custom Prometheus collector that reads brand
// visibility scores from the database on each scrape.
type VisibilityCollector struct {
	source ScoreSource
}

// Describe sends the metric descriptor to the channel.
func (c *VisibilityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- visibilityDesc
}

// Collect computes every brand's score and emits it as a gauge.
func (c *VisibilityCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scores, err := c.source.BrandComparison(ctx)
	if err != nil {
		slog.Error("failed to collect visibility metrics", "error", err)
		return
	}
	for _, s := range scores {
		ch <- prometheus.MustNewConstMetric(
			visibilityDesc,
			prometheus.GaugeValue,
			s.VisibilityScore,
			s.BrandID.String(),
			s.BrandName,
		)
	}
}

var initOnce sync.Once

// Init registers the counters and the visibility collector.
// Must be called once at startup.
func Init(source ScoreSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(externalCalls, dashboardCache, jobs)
		prometheus.MustRegister(&VisibilityCollector{source: source})
	})
}

// RecordExternalCall counts one outbound API attempt.
func RecordExternalCall(service, outcome string) {
	externalCalls.WithLabelValues(service, outcome).Inc()
}

// RecordCacheLookup counts a dashboard cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	dashboardCache.WithLabelValues(result).Inc()
}

// RecordJob counts a finished background job.
func RecordJob(source string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	jobs.WithLabelValues(source, status).Inc()
}
