package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "delta_build_info",
		Help: "Build information of delta",
	}, []string{"version", "commit", "date"})

	IterationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delta_iterations_total",
		Help: "Total number of probe iterations started",
	}, []string{"backend"})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delta_probe_duration_milliseconds",
		Help:    "Round-trip latency of successful probes in milliseconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"backend"})

	ProbeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delta_probe_failures_total",
		Help: "Total number of failed probe iterations",
	}, []string{"backend", "kind"})

	OutputErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delta_output_errors_total",
		Help: "Total number of samples an output failed to write",
	}, []string{"output"})
)

// Serve exposes the default registry on addr until ctx is done.
func Serve(ctx context.Context, log *slog.Logger, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics: shutdown failed", "error", err)
		}
	}()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics: server error", "error", err)
		}
	}()
	log.Info("metrics: listening", "address", listener.Addr().String())
	return nil
}
