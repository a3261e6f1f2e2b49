package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	BoardsCreated  *prometheus.CounterVec
	Claims         *prometheus.CounterVec
	TilesRevealed  prometheus.Counter
	MinesTriggered prometheus.Counter
	Sessions       prometheus.Gauge
	Subscribers    prometheus.Gauge
	StoreLatency   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BoardsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbingo_boards_created_total",
			Help: "Boards generated, by mode.",
		}, []string{"mode"}),
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskbingo_claims_total",
			Help: "Claim attempts, by outcome.",
		}, []string{"outcome"}),
		TilesRevealed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbingo_tiles_revealed_total",
			Help: "Tiles made visible by unlocks.",
		}),
		MinesTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskbingo_mines_triggered_total",
			Help: "Mines claimed or revealed by manual unlocks.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskbingo_sessions",
			Help: "Authenticated board sessions held in memory.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskbingo_board_subscribers",
			Help: "Open websocket board subscriptions.",
		}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskbingo_store_seconds",
			Help:    "Document store call latency, by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.BoardsCreated,
		m.Claims,
		m.TilesRevealed,
		m.MinesTriggered,
		m.Sessions,
		m.Subscribers,
		m.StoreLatency,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveStore records the duration of a store call started at start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	m.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
