package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "lyrics"
	webSourcePrefix = "web-"
)

// HistoryStats provides aggregate figures over the stored lyrics history.
type HistoryStats interface {
	GetSourceCounts(ctx context.Context) (map[string]int, error)
}

// LyricsStats summarizes how lyrics requests ended.
type LyricsStats struct {
	Resolved int            `json:"resolved"`
	Failed   int            `json:"failed"`
	Sources  map[string]int `json:"sources"`
}

// Recorder exports resolution metrics to Prometheus.
type Recorder struct {
	resolutions *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	rejected    *prometheus.CounterVec
}

// NewRecorder creates the lyrics collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Lyrics requests by terminal source tag.",
		}, []string{"source"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Provider lookups by provider and result.",
		}, []string{"provider", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of provider lookups.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"provider"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_rejected_total",
			Help:      "Provider results not admitted as candidates, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(r.resolutions, r.fetches, r.durations, r.rejected)
	return r
}

func (r *Recorder) ObserveFetch(provider, result string, elapsed time.Duration) {
	r.fetches.WithLabelValues(provider, result).Inc()
	r.durations.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (r *Recorder) CandidateRejected(reason string) {
	r.rejected.WithLabelValues(reason).Inc()
}

// Resolved counts a terminal response. Web sources carry the scraped domain,
// so they share the single "web" label value.
func (r *Recorder) Resolved(source string) {
	if strings.HasPrefix(source, webSourcePrefix) {
		source = "web"
	}
	r.resolutions.WithLabelValues(source).Inc()
}
