// Package promcollector exposes pqvec operation metrics to Prometheus.
package promcollector

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements pqvec.MetricsCollector on top of Prometheus metrics.
type Collector struct {
	opLatency    *prometheus.HistogramVec
	trainVectors prometheus.Counter
	batchItems   *prometheus.CounterVec
	batchFailed  *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used. An empty namespace
// defaults to "pqvec".
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "pqvec"
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of quantizer operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op", "status"}),
		trainVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "train_vectors_total",
			Help:      "Total vectors submitted for training",
		}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Total items submitted to batch operations",
		}, []string{"op"}),
		batchFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failed_total",
			Help:      "Total batch items that failed or were abandoned",
		}, []string{"op"}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.trainVectors, c.batchItems, c.batchFailed} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("promcollector: register: %w", err)
		}
	}

	return c, nil
}

// MustNew is like New but panics on registration failure.
func MustNew(reg prometheus.Registerer, namespace string) *Collector {
	c, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordTrain implements pqvec.MetricsCollector.
func (c *Collector) RecordTrain(vectors int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("train", status(err)).Observe(d.Seconds())
	c.trainVectors.Add(float64(vectors))
}

// RecordEncode implements pqvec.MetricsCollector.
func (c *Collector) RecordEncode(d time.Duration, err error) {
	c.opLatency.WithLabelValues("encode", status(err)).Observe(d.Seconds())
}

// RecordDecode implements pqvec.MetricsCollector.
func (c *Collector) RecordDecode(d time.Duration, err error) {
	c.opLatency.WithLabelValues("decode", status(err)).Observe(d.Seconds())
}

// RecordBatch implements pqvec.MetricsCollector.
func (c *Collector) RecordBatch(op string, count, failed int, d time.Duration) {
	st := "success"
	if failed > 0 {
		st = "error"
	}
	c.opLatency.WithLabelValues(op+"_batch", st).Observe(d.Seconds())
	c.batchItems.WithLabelValues(op).Add(float64(count))
	c.batchFailed.WithLabelValues(op).Add(float64(failed))
}
