// Package metrics contains support for reporting metrics to an external
// server, currently a Prometheus pushgateway. Because the generator runs
// as a transient process we can't wait around for Prometheus to call us,
// we've got to push to them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("metrics")

type metrics struct {
	url                         string
	timeout                     time.Duration
	targetsResolved             prometheus.Counter
	filesWritten, filesSkipped  prometheus.Counter
	genDuration                 prometheus.Histogram
	registry                    *prometheus.Registry
}

// m is the singleton metrics instance; nil when reporting is off.
var m *metrics

// Init sets up metrics reporting to the given pushgateway URL. An empty
// URL leaves reporting disabled.
func Init(url string) {
	if url == "" {
		return
	}
	m = &metrics{
		url:     url,
		timeout: 2 * time.Second,
		targetsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genja_targets_resolved_total",
			Help: "Number of targets resolved in this run",
		}),
		filesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genja_files_written_total",
			Help: "Number of generated files written",
		}),
		filesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genja_files_skipped_total",
			Help: "Number of generated files skipped as unchanged",
		}),
		genDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "genja_generate_duration_seconds",
			Help:    "Wall time of the generate step",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.targetsResolved, m.filesWritten, m.filesSkipped, m.genDuration)
}

// Record adds one run's numbers.
func Record(targetsResolved, filesWritten, filesSkipped int, duration time.Duration) {
	if m == nil {
		return
	}
	m.targetsResolved.Add(float64(targetsResolved))
	m.filesWritten.Add(float64(filesWritten))
	m.filesSkipped.Add(float64(filesSkipped))
	m.genDuration.Observe(duration.Seconds())
}

// Push sends everything recorded so far; called once before exit.
func Push() {
	if m == nil {
		return
	}
	pusher := push.New(m.url, "genja").Gatherer(m.registry)
	if err := pusher.Push(); err != nil {
		log.Warningf("Error pushing metrics: %s", err)
	}
}
