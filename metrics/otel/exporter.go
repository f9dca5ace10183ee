// Package otel exports a tokensvc.Service's metrics as OpenTelemetry
// observable counters.
package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	tokensvc "github.com/coreauth/tokensvc"
)

var (
	ErrNilMeter  = errors.New("otel: nil meter")
	ErrNilSource = errors.New("otel: nil metrics source")
)

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

type observedCounter struct {
	id         tokensvc.MetricID
	instrument metric.Int64ObservableCounter
}

// Exporter registers one OpenTelemetry observable counter per tokensvc
// metric and reads a fresh MetricsSnapshot on every collection pass.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
}

// NewExporter builds an Exporter over svc and registers its instruments
// with meter.
func NewExporter(meter metric.Meter, svc *tokensvc.Service) (*Exporter, error) {
	return NewExporterFromSource(meter, svc)
}

// NewExporterFromSource builds an Exporter over any metricsSource, for
// tests that don't need a full Service.
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:   source,
		counters: make([]observedCounter, 0, len(counterDefs)),
	}

	observables := make([]metric.Observable, 0, len(counterDefs))

	for _, def := range counterDefs {
		ins, err := meter.Int64ObservableCounter(def.name, metric.WithDescription(def.help))
		if err != nil {
			return nil, fmt.Errorf("otel: create observable counter %s: %w", def.name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.id, instrument: ins})
		observables = append(observables, ins)
	}

	registration, err := meter.RegisterCallback(exporter.collect, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel: register callback: %w", err)
	}
	exporter.registration = registration

	return exporter, nil
}

// Unregister stops the exporter's collection callback.
func (e *Exporter) Unregister() error {
	if e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}

func (e *Exporter) collect(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for _, c := range e.counters {
		observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}

	return nil
}
