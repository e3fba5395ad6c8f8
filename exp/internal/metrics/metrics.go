package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yyyoichi/fuzzyc"
)

const (
	OutcomeConverged = "converged"
	OutcomeCapped    = "capped"
	OutcomeFailed    = "failed"
)

// Prometheus records sweep candidates. It implements fuzzyc.Observer.
type Prometheus struct {
	Runs       *prometheus.CounterVec
	Iterations prometheus.Histogram
	PC         *prometheus.GaugeVec
	PEC        *prometheus.GaugeVec
}

func NewPrometheus() *Prometheus {
	return &Prometheus{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fuzzyc",
				Name:      "runs_total",
				Help:      "Sweep candidates by cluster count and outcome.",
			}, []string{"k", "outcome"}),
		Iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fuzzyc",
				Name:      "iterations",
				Help:      "Iterations per successful candidate.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			}),
		PC: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fuzzyc",
				Name:      "partition_coefficient",
				Help:      "PC of the latest candidate per cluster count.",
			}, []string{"k"}),
		PEC: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fuzzyc",
				Name:      "partition_entropy",
				Help:      "PEC of the latest candidate per cluster count.",
			}, []string{"k"}),
	}
}

func (p *Prometheus) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{p.Runs, p.Iterations, p.PC, p.PEC} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prometheus) Observe(sr fuzzyc.SweepResult) {
	k := strconv.Itoa(sr.K)
	switch {
	case sr.Err != nil:
		p.Runs.WithLabelValues(k, OutcomeFailed).Inc()
		return
	case sr.Result.Converged:
		p.Runs.WithLabelValues(k, OutcomeConverged).Inc()
	default:
		p.Runs.WithLabelValues(k, OutcomeCapped).Inc()
	}
	p.Iterations.Observe(float64(sr.Result.Iterations))
	p.PC.WithLabelValues(k).Set(sr.Indices.PC)
	p.PEC.WithLabelValues(k).Set(sr.Indices.PEC)
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
