// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ConnectedClients prometheus.Gauge
	LiveMatches      prometheus.Gauge
	PlaysSubmitted   prometheus.Counter
	SyncLatency      prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected websocket clients",
		}),
		LiveMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_matches",
			Help:      "Number of live matches held in memory",
		}),
		PlaysSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plays_submitted_total",
			Help:      "Total number of plays submitted",
		}),
		SyncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_latency_seconds",
			Help:      "Latency of applying and syncing a play",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedClients,
		m.LiveMatches,
		m.PlaysSubmitted,
		m.SyncLatency,
	)

	return m
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
	playCount int64
	mutex     sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("plays", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.playCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncConnectedClients() {
	m.metrics.ConnectedClients.Inc()
}

func (m *Monitor) DecConnectedClients() {
	m.metrics.ConnectedClients.Dec()
}

func (m *Monitor) SetLiveMatches(count int) {
	m.metrics.LiveMatches.Set(float64(count))
}

func (m *Monitor) IncPlaysSubmitted() {
	m.metrics.PlaysSubmitted.Inc()
	m.mutex.Lock()
	m.playCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveSyncLatency(duration time.Duration) {
	m.metrics.SyncLatency.Observe(duration.Seconds())
}
