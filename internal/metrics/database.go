package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DBPoolConnections exposes pgx pool connection counts by state
// (open, acquired, idle, constructing).
var DBPoolConnections = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_connections",
		Help:      "Database pool connections by state",
	},
	[]string{"state"},
)

// DBPoolMaxConnections is the configured pool size ceiling
var DBPoolMaxConnections = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_pool_max_connections",
		Help:      "Configured maximum size of the database pool",
	},
)

// DBQueryDuration records per-operation query latency
var DBQueryDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_query_duration_seconds",
		Help:      "Database query duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"operation"},
)

// DBErrors counts failed queries by operation and error class
var DBErrors = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "db_errors_total",
		Help:      "Total number of database errors",
	},
	[]string{"operation", "error_type"},
)

// DBCollector samples pgx pool statistics on a fixed interval. A nil
// pool yields a collector that runs but records nothing, which keeps
// tests and partial wiring safe.
type DBCollector struct {
	pool *pgxpool.Pool
	done chan struct{}
}

func NewDBCollector(pool *pgxpool.Pool) *DBCollector {
	return &DBCollector{pool: pool, done: make(chan struct{})}
}

// Start blocks sampling the pool until Stop is called or ctx ends.
// Run it in its own goroutine.
func (c *DBCollector) Start(ctx context.Context, interval time.Duration) {
	c.collect()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *DBCollector) Stop() {
	close(c.done)
}

func (c *DBCollector) collect() {
	if c.pool == nil {
		return
	}

	stat := c.pool.Stat()
	DBPoolConnections.WithLabelValues("open").Set(float64(stat.TotalConns()))
	DBPoolConnections.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConnections.WithLabelValues("constructing").Set(float64(stat.ConstructingConns()))
	DBPoolMaxConnections.Set(float64(stat.MaxConns()))
}

// RecordQuery observes a query's duration and, on failure, counts the
// error under a coarse class. Intended for use with defer:
//
//	start := time.Now()
//	defer func() { metrics.RecordQuery("users.create", start, err) }()
func RecordQuery(operation string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err == nil {
		return
	}

	class := "query_error"
	switch {
	case errors.Is(err, context.Canceled):
		class = "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		class = "timeout"
	}
	DBErrors.WithLabelValues(operation, class).Inc()
}
