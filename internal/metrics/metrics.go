// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Identity resolution outcomes.
const (
	OutcomeExisting = "existing"
	OutcomeCreated  = "created"
	OutcomeRekeyed  = "rekeyed"
	OutcomeMerged   = "merged"
	OutcomeConflict = "conflict"
)

// Recorder is the metrics surface used by services and the HTTP adapter.
type Recorder interface {
	RecordIdentityResolution(outcome string)
	RecordMeasurementUpsert(category string)
	RecordMeasurementDelete()
	RecordHTTPStatus(statusCode int)
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	identity   *prometheus.CounterVec
	upserts    *prometheus.CounterVec
	deletes    prometheus.Counter
	httpStatus *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		identity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bmitrend_identity_resolutions_total",
			Help: "Identity resolutions by outcome.",
		}, []string{"outcome"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bmitrend_measurement_upserts_total",
			Help: "Measurements stored, by resulting BMI category.",
		}, []string{"category"}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmitrend_measurement_deletes_total",
			Help: "Measurement delete requests.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bmitrend_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.identity, c.upserts, c.deletes, c.httpStatus)
	return c
}

// RecordIdentityResolution counts one resolution with the given outcome.
func (c *Collector) RecordIdentityResolution(outcome string) {
	c.identity.WithLabelValues(outcome).Inc()
}

// RecordMeasurementUpsert counts one stored measurement.
func (c *Collector) RecordMeasurementUpsert(category string) {
	c.upserts.WithLabelValues(category).Inc()
}

// RecordMeasurementDelete counts one delete request.
func (c *Collector) RecordMeasurementDelete() {
	c.deletes.Inc()
}

// RecordHTTPStatus counts one response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. It is the default for services built without metrics.
type Nop struct{}

func (Nop) RecordIdentityResolution(string) {}
func (Nop) RecordMeasurementUpsert(string)  {}
func (Nop) RecordMeasurementDelete()        {}
func (Nop) RecordHTTPStatus(int)            {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
