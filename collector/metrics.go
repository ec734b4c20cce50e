// ABOUTME: Prometheus metrics for the reference collector
// ABOUTME: Allocation, collection, root and sweep counters

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heaproot_allocations_total",
		Help: "Objects handed to the collector",
	})

	collections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heaproot_collections_total",
		Help: "Completed collections",
	})

	sweptObjects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heaproot_swept_objects_total",
		Help: "Objects finalized by sweeping",
	})

	rootsPerCollection = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heaproot_roots_per_collection",
		Help:    "Distinct rooted objects reported per collection",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000},
	})

	collectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heaproot_collection_duration_seconds",
		Help:    "Time to mark and sweep",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})

	liveObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heaproot_live_objects",
		Help: "Objects owned by the collector after the last collection",
	})
)

func (c *Collector) record(s Stats) {
	collections.Inc()
	sweptObjects.Add(float64(s.Swept))
	rootsPerCollection.Observe(float64(s.Roots))
	collectionDuration.Observe(s.Duration.Seconds())
	liveObjects.Set(float64(len(c.objects)))
}
