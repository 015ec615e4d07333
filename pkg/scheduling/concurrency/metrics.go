package concurrency

import (
	"context"
	"time"

	"github.com/vnykmshr/fanout/pkg/metrics"
)

// MetricsLimiter wraps a Limiter with Prometheus metrics collection.
type MetricsLimiter struct {
	limiter  Limiter
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithConfigAndMetrics creates a limiter with custom config and metrics.
// When metricsConfig is disabled the plain limiter is returned.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) (Limiter, error) {
	base, err := NewWithConfigSafe(config)
	if err != nil {
		return nil, err
	}

	if !metricsConfig.Enabled {
		return base, nil
	}

	ml := &MetricsLimiter{
		limiter:  base,
		name:     name,
		registry: metrics.For(metricsConfig),
		enabled:  true,
	}
	ml.updateMetrics()

	return ml, nil
}

func (ml *MetricsLimiter) updateMetrics() {
	if !ml.enabled {
		return
	}
	ml.registry.ConcurrencyActive.WithLabelValues(ml.name).Set(float64(ml.limiter.InUse()))
	ml.registry.ConcurrencyWaiting.WithLabelValues(ml.name).Set(float64(ml.limiter.Waiting()))
}

// TryAcquire takes a permit without blocking.
func (ml *MetricsLimiter) TryAcquire() bool {
	ok := ml.limiter.TryAcquire()
	ml.updateMetrics()
	return ok
}

// Wait blocks until a permit is granted and records the wait duration.
func (ml *MetricsLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if ml.enabled {
		ml.registry.ConcurrencyWaiting.WithLabelValues(ml.name).Inc()
	}

	err := ml.limiter.Wait(ctx)

	if ml.enabled {
		ml.registry.ConcurrencyWaitTime.WithLabelValues(ml.name).Observe(time.Since(start).Seconds())
		ml.updateMetrics()
	}
	return err
}

// Release returns a permit.
func (ml *MetricsLimiter) Release() {
	ml.limiter.Release()
	ml.updateMetrics()
}

func (ml *MetricsLimiter) Capacity() int  { return ml.limiter.Capacity() }
func (ml *MetricsLimiter) Available() int { return ml.limiter.Available() }
func (ml *MetricsLimiter) InUse() int     { return ml.limiter.InUse() }
func (ml *MetricsLimiter) Waiting() int   { return ml.limiter.Waiting() }

// EnableMetrics enables metrics collection.
func (ml *MetricsLimiter) EnableMetrics(config metrics.Config) error {
	ml.enabled = config.Enabled
	ml.registry = metrics.For(config)
	ml.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (ml *MetricsLimiter) DisableMetrics() {
	ml.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (ml *MetricsLimiter) MetricsEnabled() bool {
	return ml.enabled
}
