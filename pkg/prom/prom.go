package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemVales = "vales"
)

const (
	MetricValesCreated        = "created_total"
	MetricValesSettled        = "settled_total"
	MetricLoginFailures       = "login_failures_total"
	MetricHTTPRequestDuration = "http_request_duration_seconds"
)

var createMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers every metric the service emits. Call once at startup.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounter(SystemVales, MetricValesCreated))
	hasError(createCounter(SystemVales, MetricValesSettled))
	hasError(createCounter(SystemVales, MetricLoginFailures))
	hasError(createHistogramVec(SystemVales, MetricHTTPRequestDuration, []string{"method", "status"}))

	return err
}

func createCounter(system, name string) error {
	createMetricLock.Lock()
	defer createMetricLock.Unlock()

	key := system + "_" + name
	if _, ok := MetricCollectionCounters[key]; ok {
		return nil
	}

	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   system,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	if err := prometheus.Register(c); err != nil {
		return err
	}
	MetricCollectionCounters[key] = c
	return nil
}

func createHistogramVec(system, name string, labels []string) error {
	createMetricLock.Lock()
	defer createMetricLock.Unlock()

	key := system + "_" + name
	if _, ok := MetricCollectionHistogramVec[key]; ok {
		return nil
	}

	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   system,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	if err := prometheus.Register(h); err != nil {
		return err
	}
	MetricCollectionHistogramVec[key] = h
	return nil
}

// IncCounter bumps a registered counter; a no-op when metrics are disabled
// or the name is unknown.
func IncCounter(system, name string) {
	if !MetricSystemEnabled {
		return
	}
	if c, ok := MetricCollectionCounters[system+"_"+name]; ok {
		c.Inc()
	}
}

// ObserveHistogram records a value on a registered histogram vec.
func ObserveHistogram(system, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if h, ok := MetricCollectionHistogramVec[system+"_"+name]; ok {
		h.WithLabelValues(labelValues...).Observe(value)
	}
}

// Handler exposes the default prometheus registry over fasthttp.
func Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
}
