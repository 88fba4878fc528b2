package league

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	computations   prometheus.Counter
	computeSeconds prometheus.Histogram
	cacheHits      prometheus.Counter
	commands       *prometheus.CounterVec
}

// NewMetrics registers the league collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		computations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_standings_computations_total",
			Help: "Number of standings recomputations.",
		}),
		computeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_standings_compute_seconds",
			Help:    "Time spent loading state and computing standings.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_cache_hits_total",
			Help: "Standings requests served from the cache.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_commands_total",
			Help: "League commands by outcome.",
		}, []string{"command", "outcome"}),
	}
	reg.MustRegister(m.computations, m.computeSeconds, m.cacheHits, m.commands)
	return m
}
