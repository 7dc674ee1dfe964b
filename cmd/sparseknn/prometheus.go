package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/sparseknn"
)

// PrometheusCollector implements sparseknn.MetricsCollector.
type PrometheusCollector struct {
	opLatency   *prometheus.HistogramVec
	examples    prometheus.Gauge
	predictions *prometheus.CounterVec
	evalCorrect prometheus.Gauge
	evalTotal   prometheus.Gauge
}

// NewPrometheusCollector creates the collector and registers it with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sparseknn_operation_latency_seconds",
			Help:    "Latency of training and prediction",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		examples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sparseknn_training_examples",
			Help: "Number of examples in the training corpus",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparseknn_predictions_total",
			Help: "Predictions served",
		}, []string{"source"}),
		evalCorrect: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sparseknn_evaluation_correct",
			Help: "Correct predictions in evaluation mode",
		}),
		evalTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sparseknn_evaluation_total",
			Help: "Evaluated predictions",
		}),
	}

	reg.MustRegister(c.opLatency, c.examples, c.predictions, c.evalCorrect, c.evalTotal)
	return c
}

func (c *PrometheusCollector) RecordTrain(examples int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("train", status(err)).Observe(d.Seconds())
	if err == nil {
		c.examples.Set(float64(examples))
	}
}

func (c *PrometheusCollector) RecordPredict(_ int, d time.Duration, cached bool, err error) {
	c.opLatency.WithLabelValues("predict", status(err)).Observe(d.Seconds())
	if err != nil {
		return
	}
	if cached {
		c.predictions.WithLabelValues("cache").Inc()
	} else {
		c.predictions.WithLabelValues("search").Inc()
	}
}

func (c *PrometheusCollector) RecordEvaluation(correct, total int) {
	c.evalCorrect.Set(float64(correct))
	c.evalTotal.Set(float64(total))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// serveMetrics exposes reg on addr until the process exits.
func serveMetrics(addr string, reg prometheus.Gatherer, logger *sparseknn.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
