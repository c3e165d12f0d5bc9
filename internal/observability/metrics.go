package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendboard_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		},
		[]string{"route", "status"},
	)

	RowsNormalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendboard_rows_normalized_total",
			Help: "Raw rows converted to canonical records, by provider",
		},
		[]string{"provider"},
	)

	FieldDefaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendboard_field_defaults_total",
			Help: "Fields resolved to their default because no alias matched or the value was unusable",
		},
		[]string{"field"},
	)

	SnapshotReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spendboard_snapshot_reloads_total",
			Help: "Snapshot reload attempts, by result",
		},
		[]string{"result"},
	)

	RecordsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spendboard_records_loaded",
			Help: "Records in the currently published snapshot",
		},
	)
)

var registerOnce sync.Once

// Register installs the collectors in the default registry. Safe to call
// from every binary that imports this package.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, RowsNormalized, FieldDefaults, SnapshotReloads, RecordsLoaded)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
