// Package metrics exposes compositor counters in the Prometheus text format.
// The collector owns its registry so that several instances (one per test)
// never collide on the global default registerer.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/compwm/internal/compositor"
)

const namespace = "compwm"

// Collector holds all compositor metrics.
type Collector struct {
	registry *prometheus.Registry

	Windows       prometheus.Gauge
	Visible       prometheus.Gauge
	Hung          prometheus.Gauge
	Iconified     prometheus.Gauge
	Transitioning prometheus.Gauge
	Compositing   prometheus.Gauge

	Events   *prometheus.CounterVec
	Repaints prometheus.Counter
}

// NewCollector creates a collector with a private registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Collector{
		registry:      reg,
		Windows:       gauge("windows", "Number of tracked windows"),
		Visible:       gauge("windows_visible", "Number of visible windows"),
		Hung:          gauge("windows_hung", "Number of windows not answering pings"),
		Iconified:     gauge("windows_iconified", "Number of iconified windows"),
		Transitioning: gauge("windows_transitioning", "Number of windows with an animation in flight"),
		Compositing:   gauge("compositing", "1 while windows are redirected, 0 while a fullscreen window renders directly"),
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "window_events_total",
				Help:      "Window lifecycle notifications by kind",
			},
			[]string{"kind"},
		),
		Repaints: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repaints_total",
			Help:      "Scene repaint requests",
		}),
	}
}

// Observe counts one lifecycle notification. It has the shape of a
// compositor.Listener.
func (c *Collector) Observe(ev compositor.Event) {
	c.Events.WithLabelValues(ev.Kind.String()).Inc()
}

// Update copies a manager snapshot into the gauges.
func (c *Collector) Update(s compositor.Snapshot) {
	c.Windows.Set(float64(s.Windows))
	c.Visible.Set(float64(s.Visible))
	c.Hung.Set(float64(s.Hung))
	c.Iconified.Set(float64(s.Iconified))
	c.Transitioning.Set(float64(s.Transitioning))
	if s.Compositing {
		c.Compositing.Set(1)
	} else {
		c.Compositing.Set(0)
	}
}

// Repaint counts a repaint request.
func (c *Collector) Repaint() {
	c.Repaints.Inc()
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
