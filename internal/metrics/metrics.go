// Package metrics exposes the simulation's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "factory"

// Set bundles every collector the simulation reports on. Collectors
// register against a private registry so multiple Sets can coexist.
type Set struct {
	reg *prometheus.Registry

	TicksTotal    prometheus.Counter
	TickDuration  prometheus.Histogram
	TPS           prometheus.Gauge
	TasksDrained  prometheus.Counter
	SavesTotal    *prometheus.CounterVec
	BlocksPlaced  prometheus.Counter
	BlocksRemoved prometheus.Counter
}

func NewSet() *Set {
	s := &Set{
		reg: prometheus.NewRegistry(),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks executed.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent inside one tick.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		TPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tps",
			Help:      "Ticks per second over the last tick.",
		}),
		TasksDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_drained_total",
			Help:      "Deferred tasks taken off the queue.",
		}),
		SavesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "World snapshots written, by result.",
		}, []string{"result"}),
		BlocksPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_placed_total",
			Help:      "Blocks placed into the world.",
		}),
		BlocksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_removed_total",
			Help:      "Blocks dismantled from the world.",
		}),
	}
	s.reg.MustRegister(
		s.TicksTotal, s.TickDuration, s.TPS, s.TasksDrained,
		s.SavesTotal, s.BlocksPlaced, s.BlocksRemoved,
	)
	return s
}

// Handler serves the set's registry in the Prometheus text format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr in a background goroutine and returns
// the server so the caller can shut it down.
func (s *Set) Serve(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
