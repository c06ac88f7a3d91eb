package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoderkit_resolutions_total",
			Help: "Total number of encoder resolutions by source",
		},
		[]string{"source"},
	)
)

// Download metrics
var (
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoderkit_downloads_total",
			Help: "Total number of encoder download attempts by outcome",
		},
		[]string{"outcome"},
	)

	DownloadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encoderkit_download_bytes_total",
			Help: "Total bytes installed into the managed cache",
		},
	)

	DownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "encoderkit_download_duration_seconds",
			Help:    "Encoder download duration in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
)

// Build-info metrics
var (
	BuildInfoProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoderkit_buildinfo_probes_total",
			Help: "Total number of encoder build configuration invocations by result",
		},
		[]string{"result"},
	)
)
