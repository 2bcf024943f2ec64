package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "solana_sandwich"

type Metrics struct {
	registry *prometheus.Registry

	CandidatesReceived prometheus.Counter
	CandidatesDropped  *prometheus.CounterVec
	IntentsDecoded     *prometheus.CounterVec
	BundlesSubmitted   prometheus.Counter
	BundlesFailed      prometheus.Counter
	InFlight           prometheus.Gauge
	QueueDepth         prometheus.Gauge
	PayerBalance       prometheus.Gauge
	PayerSolBalance    prometheus.Gauge
	FrontRunAmount     prometheus.Histogram
	StageLatency       *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		CandidatesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "candidates_received_total",
			Help:      "Candidate transactions received from the relay",
		}),
		CandidatesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "candidates_dropped_total",
			Help:      "Candidates abandoned, by stage",
		}, []string{"stage"}),
		IntentsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "intents_decoded_total",
			Help:      "Swap intents decoded, by router",
		}, []string{"decoder"}),
		BundlesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "bundle",
			Name:      "submitted_total",
			Help:      "Bundles accepted by the block engine",
		}),
		BundlesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "bundle",
			Name:      "failed_total",
			Help:      "Bundles rejected or not delivered",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "in_flight",
			Help:      "Candidates currently being processed",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "relayer",
			Name:      "queue_depth",
			Help:      "Batches waiting in the relay queue",
		}),
		PayerBalance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "payer",
			Name:      "wsol_balance_lamports",
			Help:      "Payer WSOL balance",
		}),
		PayerSolBalance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "payer",
			Name:      "sol_balance_lamports",
			Help:      "Payer native SOL balance for fees and tips",
		}),
		FrontRunAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "bundle",
			Name:      "front_run_lamports",
			Help:      "Sized front-run input",
			Buckets:   prometheus.ExponentialBuckets(1e6, 4, 12),
		}),
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"stage"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
