package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "hits_total",
		Help:      "Queries answered from memory.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "misses_total",
		Help:      "Queries with no usable entry in memory.",
	})
	tierHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "tier_hits_total",
		Help:      "Cold reads answered by the shared tier.",
	})
	fetches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "fetches_total",
		Help:      "Fetcher invocations.",
	})
	coalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "coalesced_total",
		Help:      "Reads that joined a fetch already in flight.",
	})
	invalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "invalidations_total",
		Help:      "Prefix invalidations.",
	})
	evictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "evictions_total",
		Help:      "Entries dropped by the size bound or garbage collection.",
	})
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backoffice",
		Subsystem: "querycache",
		Name:      "mutations_total",
		Help:      "Mutations by outcome.",
	}, []string{"outcome"})
)
