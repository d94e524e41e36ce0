/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics provides a Prometheus implementation of contentstore.MetricsCollector.
package metrics

import (
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector maps the collector interface to Prometheus vectors, created on first use:
//   - RecordDuration -> HistogramVec, observed in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// The label names of a metric are fixed by its first observation. Later observations
// with other label names are dropped.
type Collector struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	buckets    []float64
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	dropped    int
}

// Option configures a Collector.
type Option func(*Collector)

// WithBuckets sets the histogram buckets. The default is prometheus.DefBuckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Collector) {
		c.buckets = buckets
	}
}

// NewCollector creates a Collector registering its vectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, opts ...Option) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		registerer: reg,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RecordDuration observes duration in seconds.
func (c *Collector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.histograms[metric]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metric,
			Help:    "Duration of contentstore operations in seconds",
			Buckets: c.buckets,
		}, labelNames(labels))
		vec = register(c.registerer, vec)
		c.histograms[metric] = vec
	}

	obs, err := vec.GetMetricWith(labels)
	if err != nil {
		c.dropped++
		return
	}
	obs.Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (c *Collector) IncrementCounter(metric string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.counters[metric]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metric,
			Help: "Number of contentstore operations",
		}, labelNames(labels))
		vec = register(c.registerer, vec)
		c.counters[metric] = vec
	}

	counter, err := vec.GetMetricWith(labels)
	if err != nil {
		c.dropped++
		return
	}
	counter.Inc()
}

// RecordValue sets the gauge to value.
func (c *Collector) RecordValue(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vec, ok := c.gauges[metric]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metric,
			Help: "Last value recorded by a contentstore operation",
		}, labelNames(labels))
		vec = register(c.registerer, vec)
		c.gauges[metric] = vec
	}

	gauge, err := vec.GetMetricWith(labels)
	if err != nil {
		c.dropped++
		return
	}
	gauge.Set(value)
}

// Dropped returns the number of observations whose labels did not match their metric.
func (c *Collector) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// register registers vec, or returns the vector already registered under the same
// description.
func register[V prometheus.Collector](reg prometheus.Registerer, vec V) V {
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(V); ok {
				return existing
			}
		}
	}
	return vec
}
