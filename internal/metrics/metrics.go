// Package metrics counts ledger activity and dumps it in the Prometheus
// text format for the node exporter textfile collector.
package metrics

import (
	"github.com/bookstore/ledger/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"
)

const namespace = "ledger"

// Recorder holds the ledger metrics in a private registry
type Recorder struct {
	registry        *prometheus.Registry
	salesTotal      prometheus.Counter
	unitsSold       prometheus.Counter
	revenueNet      prometheus.Counter
	discountTotal   prometheus.Counter
	catalogChanges  *prometheus.CounterVec
	saves           *prometheus.CounterVec
	catalogProducts prometheus.Gauge
}

// NewRecorder creates and registers the ledger metrics
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Number of sales recorded in this session.",
		}),
		unitsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_sold_total",
			Help:      "Units sold in this session.",
		}),
		revenueNet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_net_total",
			Help:      "Net revenue of the sales recorded in this session.",
		}),
		discountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_total",
			Help:      "Discount granted in this session.",
		}),
		catalogChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_changes_total",
			Help:      "Catalog changes by operation.",
		}, []string{"op"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Data file writes by file and result.",
		}, []string{"file", "result"}),
		catalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Products currently in the catalog.",
		}),
	}

	r.registry.MustRegister(
		r.salesTotal,
		r.unitsSold,
		r.revenueNet,
		r.discountTotal,
		r.catalogChanges,
		r.saves,
		r.catalogProducts,
	)
	return r
}

// Registry returns the registry holding the ledger metrics
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SetCatalogSize sets the catalog product gauge
func (r *Recorder) SetCatalogSize(n int) {
	r.catalogProducts.Set(float64(n))
}

// Observe updates the metrics from a domain event
func (r *Recorder) Observe(e events.Event) {
	switch e.EventType {
	case events.EventTypeProductCreated:
		r.catalogChanges.WithLabelValues("create").Inc()
		r.catalogProducts.Inc()
	case events.EventTypeProductUpdated:
		r.catalogChanges.WithLabelValues("update").Inc()
	case events.EventTypeProductDeleted:
		r.catalogChanges.WithLabelValues("delete").Inc()
		r.catalogProducts.Dec()
	case events.EventTypeSaleRecorded:
		r.salesTotal.Inc()
		r.unitsSold.Add(cast.ToFloat64(e.Payload["quantity_sold"]))
		r.revenueNet.Add(cast.ToFloat64(e.Payload["total"]))
		r.discountTotal.Add(cast.ToFloat64(e.Payload["discount_amount"]))
	case events.EventTypeLedgerSaved:
		r.saves.WithLabelValues(cast.ToString(e.Payload["file"]), cast.ToString(e.Payload["result"])).Inc()
	}
}

// WriteTextfile writes every metric to path in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
