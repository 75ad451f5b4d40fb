package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const policyLabel = "policy"

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pointcull_frames_total",
		Help: "The number of frames culled against the octree.",
	}, []string{
		policyLabel,
	})

	visibleRegions = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pointcull_visible_regions",
		Help:    "Regions reported visible per frame.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{
		policyLabel,
	})

	visiblePoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pointcull_visible_points",
		Help: "Points held by the visible regions of the last frame.",
	})

	frameSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "pointcull_frame_seconds",
		Help: "Time to recompute the frustum and query the octree.",
	})

	regionSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointcull_region_splits_total",
		Help: "The number of leaf regions that subdivided.",
	})

	degenerateTransforms = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pointcull_degenerate_transforms_total",
		Help: "Camera transforms rejected because a frustum plane collapsed.",
	})
)

// InstrumentFrame records the outcome of one culled frame.
func InstrumentFrame(policy string, regions, points int, start time.Time) {
	labels := prometheus.Labels{policyLabel: policy}
	framesTotal.With(labels).Inc()
	visibleRegions.With(labels).Observe(float64(regions))
	visiblePoints.Set(float64(points))
	frameSeconds.Observe(time.Since(start).Seconds())
}

// InstrumentSplit counts a region split.
func InstrumentSplit() {
	regionSplits.Inc()
}

// InstrumentDegenerateTransform counts a rejected transform.
func InstrumentDegenerateTransform() {
	degenerateTransforms.Inc()
}
