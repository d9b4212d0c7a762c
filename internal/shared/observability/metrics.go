package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propinfo_lookups_total",
		Help: "Total number of property info queries by operation and outcome.",
	}, []string{"operation", "outcome"})

	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propinfo_lookup_seconds",
		Help:    "Time spent answering a property info query.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propinfo_cache_hits_total",
		Help: "Total number of property info queries served from the in-memory cache.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propinfo_cache_misses_total",
		Help: "Total number of property info queries forwarded to the extractor chains.",
	})

	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propinfo_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	IndexedClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propinfo_indexed_classes",
		Help: "Number of classes currently held by the source index.",
	})

	SnapshotHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propinfo_snapshot_hits_total",
		Help: "Total number of source files restored from the snapshot store instead of being parsed.",
	})

	SchemasLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propinfo_openapi_schemas",
		Help: "Number of OpenAPI component schemas available for lookups.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propinfo_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	SpecFetchesThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "propinfo_openapi_fetches_throttled_total",
		Help: "Total number of remote OpenAPI fetches that waited on the per-host rate limit.",
	})

	HeapAllocBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propinfo_heap_alloc_bytes",
		Help: "Live Go heap at the last health check.",
	})

	ReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propinfo_reloads_total",
		Help: "Total number of source index reloads by result.",
	}, []string{"result"})
)
