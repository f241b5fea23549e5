package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the pickup-service collectors. A nil *Registry is valid and records nothing.
type Registry struct {
	reg               *prometheus.Registry
	Searches          *prometheus.CounterVec
	SearchLatencySec  *prometheus.HistogramVec
	LocationsResolved prometheus.Counter
	LocationsExcluded prometheus.Counter
	FacetCorrections  prometheus.Counter
	NoteCacheMisses   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_searches_total",
		Help: "Pickup location searches by variant and outcome.",
	}, []string{"variant", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pickup_search_latency_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})
	resolved := prometheus.NewCounter(prometheus.CounterOpts{Name: "pickup_locations_resolved_total"})
	excluded := prometheus.NewCounter(prometheus.CounterOpts{Name: "pickup_locations_excluded_total"})
	corrections := prometheus.NewCounter(prometheus.CounterOpts{Name: "pickup_facet_corrections_total"})
	noteMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "pickup_note_cache_misses_total"})

	r.MustRegister(searches, latency, resolved, excluded, corrections, noteMisses)
	return &Registry{
		reg:               r,
		Searches:          searches,
		SearchLatencySec:  latency,
		LocationsResolved: resolved,
		LocationsExcluded: excluded,
		FacetCorrections:  corrections,
		NoteCacheMisses:   noteMisses,
	}
}

// ObserveSearch records one finished search
func (r *Registry) ObserveSearch(variant string, started time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.Searches.WithLabelValues(variant, outcome).Inc()
	r.SearchLatencySec.WithLabelValues(variant).Observe(time.Since(started).Seconds())
}

// ObserveResolution records how many candidate locations survived the availability rules
func (r *Registry) ObserveResolution(candidates, kept int) {
	if r == nil {
		return
	}
	r.LocationsResolved.Add(float64(kept))
	r.LocationsExcluded.Add(float64(candidates - kept))
}

// ObserveFacetCorrection counts facet lists rewritten after business rules
func (r *Registry) ObserveFacetCorrection(facets int) {
	if r == nil {
		return
	}
	r.FacetCorrections.Add(float64(facets))
}

// ObserveNoteCacheMiss counts note lookups that went to the settings store
func (r *Registry) ObserveNoteCacheMiss() {
	if r == nil {
		return
	}
	r.NoteCacheMisses.Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
