package dbconn

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/zdqhub/zdq/dialect"
	"github.com/zdqhub/zdq/retry"
	"golang.org/x/time/rate"
)

var (
	queryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zdq",
		Name:      "query_duration_seconds",
		Help:      "Latency of warehouse queries.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"conn"})
	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zdq",
		Name:      "query_errors_total",
		Help:      "Number of failed warehouse query attempts.",
	}, []string{"conn"})
)

// LimitedConn throttles and retries queries against an underlying Conn.
type LimitedConn struct {
	Conn
	limiter *rate.Limiter
	retry   retry.Settings
	logger  zerolog.Logger
}

var _ Conn = (*LimitedConn)(nil)

// NewLimitedConn wraps conn. A queriesPerSecond of 0 disables throttling.
func NewLimitedConn(
	conn Conn, queriesPerSecond int, settings retry.Settings, logger zerolog.Logger,
) *LimitedConn {
	c := &LimitedConn{
		Conn:   conn,
		retry:  settings,
		logger: logger.With().Str("conn", string(conn.ID())).Logger(),
	}
	if queriesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(queriesPerSecond), queriesPerSecond)
	}
	return c
}

func (c *LimitedConn) Query(ctx context.Context, q dialect.Query) ([]Row, error) {
	var rows []Row
	attempt := 0
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		start := time.Now()
		var err error
		rows, err = c.Conn.Query(ctx, q)
		queryLatency.WithLabelValues(string(c.ID())).Observe(time.Since(start).Seconds())
		if err != nil {
			queryErrors.WithLabelValues(string(c.ID())).Inc()
			c.logger.Debug().Err(err).Int("attempt", attempt).Msg("query failed")
		}
		return err
	})
	return rows, err
}
