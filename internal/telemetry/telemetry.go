// Package telemetry exposes the fusion engine's counters as Prometheus
// metrics. The engine stays unaware of metrics; the collector pulls a stats
// snapshot on every scrape.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/viewguard/viewguard/internal/fusion"
)

// Collector adapts a stats source to the Prometheus collector interface.
type Collector struct {
	stats func() fusion.Stats

	detectionsProcessed *prometheus.Desc
	detectionsRejected  *prometheus.Desc
	cuesProcessed       *prometheus.Desc
	fusionsAttempted    *prometheus.Desc
	warningsEmitted     *prometheus.Desc
	deduplicated        *prometheus.Desc
	suppressed          *prometheus.Desc
	boostsApplied       *prometheus.Desc
	penaltiesApplied    *prometheus.Desc
	warningsDropped     *prometheus.Desc
}

// NewCollector builds a collector over a stats snapshot function.
func NewCollector(stats func() fusion.Stats) *Collector {
	return &Collector{
		stats:               stats,
		detectionsProcessed: prometheus.NewDesc("viewguard_detections_processed_total", "Detections accepted by the engine.", nil, nil),
		detectionsRejected:  prometheus.NewDesc("viewguard_detections_rejected_total", "Detections rejected as invalid.", nil, nil),
		cuesProcessed:       prometheus.NewDesc("viewguard_cues_processed_total", "Text cues fed to the escalation detector.", nil, nil),
		fusionsAttempted:    prometheus.NewDesc("viewguard_fusions_attempted_total", "Fusion attempts.", nil, nil),
		warningsEmitted:     prometheus.NewDesc("viewguard_warnings_emitted_total", "Fused warnings emitted.", nil, nil),
		deduplicated:        prometheus.NewDesc("viewguard_warnings_deduplicated_total", "Warnings skipped because their bucket was already emitted.", nil, nil),
		suppressed:          prometheus.NewDesc("viewguard_detections_suppressed_total", "Detections suppressed by screening or coherence filtering.", nil, nil),
		boostsApplied:       prometheus.NewDesc("viewguard_temporal_boosts_total", "Temporal boosts applied.", nil, nil),
		penaltiesApplied:    prometheus.NewDesc("viewguard_temporal_penalties_total", "Temporal jump penalties applied.", nil, nil),
		warningsDropped:     prometheus.NewDesc("viewguard_warnings_dropped_total", "Warnings dropped on full subscriber channels.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.detectionsProcessed
	ch <- c.detectionsRejected
	ch <- c.cuesProcessed
	ch <- c.fusionsAttempted
	ch <- c.warningsEmitted
	ch <- c.deduplicated
	ch <- c.suppressed
	ch <- c.boostsApplied
	ch <- c.penaltiesApplied
	ch <- c.warningsDropped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	counter := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.detectionsProcessed, s.DetectionsProcessed)
	counter(c.detectionsRejected, s.DetectionsRejected)
	counter(c.cuesProcessed, s.CuesProcessed)
	counter(c.fusionsAttempted, s.FusionsAttempted)
	counter(c.warningsEmitted, s.WarningsEmitted)
	counter(c.deduplicated, s.Deduplicated)
	counter(c.suppressed, s.Suppressed)
	counter(c.boostsApplied, s.BoostsApplied)
	counter(c.penaltiesApplied, s.PenaltiesApplied)
	counter(c.warningsDropped, s.WarningsDropped)
}
