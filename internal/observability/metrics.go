package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/platform/logger"
)

// Metrics is the process-wide set of overlay metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	featureRuns    *CounterVec
	featureLatency *HistogramVec

	liveConnections *GaugeVec
	liveEvents      *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
}

func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("overlay_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"overlay_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("overlay_api_inflight_requests", "In-flight API requests."),

		featureRuns: NewCounterVec("overlay_feature_executions_total", "Widget feature executions by type/feature/status.", []string{"widget_type", "feature", "status"}),
		featureLatency: NewHistogramVec(
			"overlay_feature_duration_seconds",
			"Widget feature execution time in seconds.",
			[]string{"widget_type", "feature"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),

		liveConnections: NewGaugeVec("overlay_live_connections", "Open live connections by group.", []string{"group"}),
		liveEvents:      NewCounterVec("overlay_live_events_total", "Live events emitted by message type.", []string{"type"}),

		dbStats:   NewGaugeVec("overlay_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("overlay_redis_up", "1 when the live bus redis answers ping."),
		redisPing: NewGauge("overlay_redis_ping_seconds", "Latency of the last redis ping."),

		scrapeInterval: scrapeInterval,
	}
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.featureRuns, m.featureLatency,
		m.liveConnections, m.liveEvents,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveFeature records one feature execution; status is "ok" or "error".
func (m *Metrics) ObserveFeature(widgetType, feature, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.featureRuns.Inc(widgetType, feature, status)
	m.featureLatency.Observe(dur.Seconds(), widgetType, feature)
}

func (m *Metrics) IncLiveEvent(messageType string) {
	if m != nil {
		m.liveEvents.Inc(messageType)
	}
}

// ConnectionCounter is satisfied by the live hub.
type ConnectionCounter interface {
	Counts() map[string]int
}

// StartHubCollector samples live connection counts until ctx ends.
func (m *Metrics) StartHubCollector(ctx context.Context, hub ConnectionCounter) {
	if m == nil || hub == nil {
		return
	}
	go m.every(ctx, func() {
		for group, n := range hub.Counts() {
			m.liveConnections.Set(float64(n), group)
		}
	})
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go m.every(ctx, func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: db stats unavailable", "error", err)
			}
			return
		}
		stats := sqlDB.Stats()
		m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
		m.dbStats.Set(float64(stats.InUse), "in_use")
		m.dbStats.Set(float64(stats.Idle), "idle")
		m.dbStats.Set(float64(stats.WaitCount), "wait_count")
		m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
		m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
	})
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		<-ctx.Done()
		_ = rdb.Close()
	}()
	go m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil && ctx.Err() == nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	ticker := time.NewTicker(m.scrapeInterval)
	defer ticker.Stop()
	fn()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
