package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Asset kinds
const (
	AssetAvatar    = "avatar"
	AssetThumbnail = "thumbnail"
	AssetVideo     = "video"
	AssetInfo      = "info"
)

// Outcomes
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusAbsent = "absent"
)

type RecorderInterface interface {
	IncPosts(status string)
	IncAssets(kind, status string)
	AddBytes(n int64)
	ObservePostDuration(d time.Duration)
	SetRunDuration(d time.Duration)
	// Flush writes the collected metrics to the configured textfile
	Flush() error
}

type Recorder struct {
	registry     *prometheus.Registry
	textfile     string
	postsTotal   *prometheus.CounterVec
	assetsTotal  *prometheus.CounterVec
	bytesTotal   prometheus.Counter
	postDuration prometheus.Histogram
	runDuration  prometheus.Gauge
	lastRun      prometheus.Gauge
}

func (r *Recorder) IncPosts(status string) {
	r.postsTotal.WithLabelValues(status).Inc()
}

func (r *Recorder) IncAssets(kind, status string) {
	r.assetsTotal.WithLabelValues(kind, status).Inc()
}

func (r *Recorder) AddBytes(n int64) {
	if n > 0 {
		r.bytesTotal.Add(float64(n))
	}
}

func (r *Recorder) ObservePostDuration(d time.Duration) {
	r.postDuration.Observe(d.Seconds())
}

func (r *Recorder) SetRunDuration(d time.Duration) {
	r.runDuration.Set(d.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Flush writes every metric in node-exporter textfile format
func (r *Recorder) Flush() error {
	return prometheus.WriteToTextfile(r.textfile, r.registry)
}

// NewRecorder returns a recorder that flushes to textfile, or a no-op
// recorder when textfile is empty.
func NewRecorder(textfile string) RecorderInterface {
	if textfile == "" {
		return &noopRecorder{}
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		textfile: textfile,

		postsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vinearchive_posts_total",
			Help: "Posts processed in the last run by outcome",
		}, []string{"status"}),

		assetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vinearchive_assets_total",
			Help: "Files handled in the last run by kind and outcome",
		}, []string{"kind", "status"}),

		bytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "vinearchive_downloaded_bytes_total",
			Help: "Bytes written to the archive in the last run",
		}),

		postDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vinearchive_post_duration_seconds",
			Help:    "Time spent archiving a single post",
			Buckets: prometheus.DefBuckets,
		}),

		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vinearchive_run_duration_seconds",
			Help: "Wall time of the last run",
		}),

		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vinearchive_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// noopRecorder is used when no textfile is configured.
type noopRecorder struct{}

func (n *noopRecorder) IncPosts(_ string)                  {}
func (n *noopRecorder) IncAssets(_, _ string)              {}
func (n *noopRecorder) AddBytes(_ int64)                   {}
func (n *noopRecorder) ObservePostDuration(_ time.Duration) {}
func (n *noopRecorder) SetRunDuration(_ time.Duration)     {}
func (n *noopRecorder) Flush() error                       { return nil }
