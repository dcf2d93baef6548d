package evaluator

import "github.com/prometheus/client_golang/prometheus"

var (
	roundsTotal      *prometheus.CounterVec
	roundDuration    prometheus.Histogram
	jobDuration      prometheus.Histogram
	genomesEvaluated prometheus.Counter
	queueDepth       prometheus.Gauge
)

func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Histogram, prometheus.Counter, prometheus.Gauge) {
	rounds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_rounds_total",
			Help: "Number of evaluation rounds by outcome",
		},
		[]string{"outcome"},
	)
	round := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_round_duration_seconds",
		Help:    "Wall time of an evaluation round from partition to merge",
		Buckets: prometheus.DefBuckets,
	})
	job := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluation_job_duration_seconds",
		Help:    "Execution time of a single chunk evaluation job",
		Buckets: prometheus.DefBuckets,
	})
	genomes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "evaluation_genomes_total",
		Help: "Number of genomes that received a fitness value",
	})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "evaluation_queue_depth",
		Help: "Jobs waiting in the worker pool queue",
	})
	return rounds, round, job, genomes, depth
}

func init() {
	roundsTotal, roundDuration, jobDuration, genomesEvaluated, queueDepth = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers evaluator metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(roundsTotal, roundDuration, jobDuration, genomesEvaluated, queueDepth)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	roundsTotal, roundDuration, jobDuration, genomesEvaluated, queueDepth = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
