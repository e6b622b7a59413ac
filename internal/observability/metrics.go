package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/adbroker-backend/internal/platform/envutil"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// Metrics is the process-wide Prometheus registry. A nil *Metrics is valid
// and records nothing, so callers never branch on whether metrics are on.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	classifyCalls   *CounterVec
	classifyLatency *HistogramVec
	classifyTokens  *CounterVec
	costTotal       *CounterVec

	adServed  *CounterVec
	clicks    *CounterVec
	purchases *CounterVec

	aggOps      *CounterVec
	aggLatency  *HistogramVec
	aggConflict *CounterVec
	aggRetry    *CounterVec

	storeStats *GaugeVec
	redisUp    *Gauge
	redisPing  *Gauge

	scrape time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false, nil)
}

func Current() *Metrics {
	return instance
}

// Init returns the shared registry, or nil when METRICS_ENABLED is off.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second, log))
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// NewMetrics builds an unshared registry. Tests use it directly.
func NewMetrics(scrape time.Duration) *Metrics {
	if scrape <= 0 {
		scrape = 10 * time.Second
	}
	latency := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	return &Metrics{
		apiRequests: NewCounterVec("adb_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("adb_api_request_duration_seconds", "API request latency in seconds.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("adb_api_inflight_requests", "In-flight API requests."),

		classifyCalls: NewCounterVec("adb_classification_requests_total", "Classification model calls by model/status.", []string{"model", "status"}),
		classifyLatency: NewHistogramVec("adb_classification_duration_seconds", "Classification model latency in seconds.",
			[]string{"model", "status"}, []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60}),
		classifyTokens: NewCounterVec("adb_classification_tokens_total", "Tokens consumed by classification calls.", []string{"model", "direction"}),
		costTotal:      NewCounterVec("adb_query_cost_usd_total", "Accumulated query cost in USD by source.", []string{"source"}),

		adServed:  NewCounterVec("adb_ads_served_total", "Ad lookups by outcome.", []string{"outcome"}),
		clicks:    NewCounterVec("adb_ad_clicks_total", "Tracked ad clicks by outcome.", []string{"outcome"}),
		purchases: NewCounterVec("adb_purchases_total", "Category purchase attempts by outcome.", []string{"outcome"}),

		aggOps:      NewCounterVec("adb_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"operation", "status"}),
		aggLatency:  NewHistogramVec("adb_aggregate_operation_duration_seconds", "Aggregate write latency in seconds.", []string{"operation", "status"}, latency),
		aggConflict: NewCounterVec("adb_aggregate_conflicts_total", "Aggregate writes that ended in a version conflict.", []string{"operation"}),
		aggRetry:    NewCounterVec("adb_aggregate_retries_total", "Aggregate write attempts retried after a conflict.", []string{"operation"}),

		storeStats: NewGaugeVec("adb_store_sql_stats", "database/sql pool stats for the document store.", []string{"stat"}),
		redisUp:    NewGauge("adb_store_redis_up", "1 when the redis document store answers PING."),
		redisPing:  NewGauge("adb_store_redis_ping_seconds", "Last redis PING round trip in seconds."),

		scrape: scrape,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.classifyCalls, m.classifyLatency, m.classifyTokens, m.costTotal,
		m.adServed, m.clicks, m.purchases,
		m.aggOps, m.aggLatency, m.aggConflict, m.aggRetry,
		m.storeStats, m.redisUp, m.redisPing,
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
		route = "unmatched"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveClassification(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	if model == "" {
		model = "unknown"
	}
	m.classifyCalls.Inc(model, status)
	m.classifyLatency.Observe(dur.Seconds(), model, status)
	if inputTokens > 0 {
		m.classifyTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.classifyTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) AddCost(source string, amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	m.costTotal.Add(amount, source)
}

func (m *Metrics) IncAdServed(outcome string) {
	if m == nil {
		return
	}
	m.adServed.Inc(outcome)
}

func (m *Metrics) IncClick(outcome string) {
	if m == nil {
		return
	}
	m.clicks.Inc(outcome)
}

// IncPurchase records "success" or the rejecting rule.
func (m *Metrics) IncPurchase(outcome string) {
	if m == nil {
		return
	}
	m.purchases.Inc(outcome)
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggOps.Inc(name, status)
	m.aggLatency.Observe(dur.Seconds(), name, status)
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggConflict.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggRetry.Inc(name)
}

// StartSQLCollector samples the connection pool behind a gorm document store.
func (m *Metrics) StartSQLCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrape)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleSQL(log, db)
			}
		}
	}()
}

func (m *Metrics) sampleSQL(log *logger.Logger, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: sql stats unavailable", "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.storeStats.Set(float64(stats.OpenConnections), "open_connections")
	m.storeStats.Set(float64(stats.InUse), "in_use")
	m.storeStats.Set(float64(stats.Idle), "idle")
	m.storeStats.Set(float64(stats.WaitCount), "wait_count")
	m.storeStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.storeStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}

// StartRedisCollector pings the redis document store on the scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrape)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleRedis(ctx, log, rdb)
			}
		}
	}()
}

func (m *Metrics) sampleRedis(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		m.redisUp.Set(0)
		if log != nil {
			log.Warn("metrics: redis ping failed", "error", err)
		}
		return
	}
	m.redisUp.Set(1)
	m.redisPing.Set(time.Since(start).Seconds())
}
