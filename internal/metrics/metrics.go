package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invitopia"

var (
	// ScanOutcomes counts every processed scan by outcome label.
	ScanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkin",
		Name:      "scan_outcomes_total",
		Help:      "Processed scans partitioned by outcome.",
	}, []string{"outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "checkin",
		Name:      "scan_duration_seconds",
		Help:      "Time spent validating and recording a scan.",
		Buckets:   prometheus.DefBuckets,
	})

	ManualToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "checkin",
		Name:      "manual_toggles_total",
		Help:      "Manual check-in toggles partitioned by target state and result.",
	}, []string{"checked_in", "result"})

	FramesSampled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "frames_sampled_total",
		Help:      "Camera frames pulled by scanner sessions.",
	})

	CodesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "codes_decoded_total",
		Help:      "Codes decoded from frames, split by whether they were handled or debounced.",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "active_sessions",
		Help:      "Scanner sessions currently holding a camera.",
	})
)
