// Package prometheus exports a tokensvc.Service's metrics as Prometheus
// collectors.
package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	tokensvc "github.com/coreauth/tokensvc"
)

var ErrNilSource = errors.New("prometheus: nil metrics source")

type metricsSource interface {
	MetricsSnapshot() tokensvc.MetricsSnapshot
}

type counterDef struct {
	id   tokensvc.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{tokensvc.MetricIssued, "tokensvc_issued_total", "Tokens issued."},
	{tokensvc.MetricValidated, "tokensvc_validated_total", "Tokens successfully validated."},
	{tokensvc.MetricRefreshed, "tokensvc_refreshed_total", "Tokens refreshed."},
	{tokensvc.MetricRejectedBadToken, "tokensvc_rejected_bad_token_total", "Validations rejected: unparseable or unsigned token."},
	{tokensvc.MetricRejectedExpiredToken, "tokensvc_rejected_expired_token_total", "Validations rejected: absolute expiration passed."},
	{tokensvc.MetricRejectedInvalidToken, "tokensvc_rejected_invalid_token_total", "Validations rejected: no backing record."},
	{tokensvc.MetricStoreError, "tokensvc_store_error_total", "Store round-trips that failed."},
}

// Exporter implements prometheus.Collector by reading a fresh
// MetricsSnapshot on every scrape.
type Exporter struct {
	source metricsSource
	descs  map[tokensvc.MetricID]*prometheus.Desc
}

// NewExporter builds an Exporter over svc.
func NewExporter(svc *tokensvc.Service) *Exporter {
	return NewExporterFromSource(svc)
}

// NewExporterFromSource builds an Exporter over any metricsSource, for
// tests that don't need a full Service.
func NewExporterFromSource(source metricsSource) *Exporter {
	descs := make(map[tokensvc.MetricID]*prometheus.Desc, len(counterDefs))
	for _, def := range counterDefs {
		descs[def.id] = prometheus.NewDesc(def.name, def.help, nil, nil)
	}
	return &Exporter{source: source, descs: descs}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range e.descs {
		ch <- desc
	}
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()
	for _, def := range counterDefs {
		ch <- prometheus.MustNewConstMetric(
			e.descs[def.id],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.id]),
		)
	}
}

// MustRegister registers exp with reg, panicking on failure, matching
// the registration style used elsewhere for process-lifetime collectors.
func MustRegister(reg prometheus.Registerer, exp *Exporter) {
	reg.MustRegister(exp)
}
