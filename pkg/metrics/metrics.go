// Package metrics exposes the collector's Prometheus metrics.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, pagination, normalize, checkpoint, storage) via promauto to
// keep packages independent; this package serves them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry is the default Prometheus registry used by the collector.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the /metrics handler for the default gatherer.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. A collection run is
// short lived, so this is mainly useful to watch cooldowns of long jobs.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Metrics Documentation
//
// Quota Metrics (pkg/ratelimit):
//   - scouter_ratelimit_window_requests (Gauge): Requests counted in the current quota window
//   - scouter_ratelimit_cooldowns_total (Counter): Quota cooldowns taken
//   - scouter_ratelimit_cooldown_seconds_total (Counter): Time spent in cooldowns
//
// Request Metrics (pkg/client):
//   - scouter_requests_total{endpoint, status} (Counter): Requests by route and HTTP status
//   - scouter_request_duration_seconds{endpoint} (Histogram): Request duration by route
//   - scouter_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Pagination Metrics (pkg/pagination):
//   - scouter_pages_fetched_total{mode, source} (Counter): Pages by mode and source (api, cache)
//   - scouter_fetch_aborted_total{mode} (Counter): Resources cut short by a failed page
//
// Cache Metrics (pkg/cache):
//   - scouter_cache_hits_total (Counter): Cache hits
//   - scouter_cache_misses_total (Counter): Cache misses
//   - scouter_cache_written_bytes_total (Counter): Bytes written to Redis
//   - scouter_cache_errors_total{operation} (Counter): Cache operation errors
//
// Normalization Metrics (pkg/normalize):
//   - scouter_normalize_rows_total{table} (Counter): Rows produced, checkpoint snapshots included
//   - scouter_normalize_skipped_total{table} (Counter): Sub-records dropped
//
// Output Metrics (pkg/checkpoint, pkg/storage):
//   - scouter_checkpoints_written_total{job} (Counter): Checkpoints written
//   - scouter_checkpoint_failures_total{job} (Counter): Checkpoint writes that failed
//   - scouter_storage_objects_written_total{kind} (Counter): Objects written (table, raw, json)
//   - scouter_storage_bytes_written_total{kind} (Counter): Bytes written
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(scouter_cache_hits_total[5m])) /
//   (sum(rate(scouter_cache_hits_total[5m])) + sum(rate(scouter_cache_misses_total[5m])))
//
//   # Share of time spent cooling down
//   rate(scouter_ratelimit_cooldown_seconds_total[10m])
//
//   # Skipped items per minute
//   sum(rate(scouter_fetch_aborted_total[1m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(scouter_request_duration_seconds_bucket[5m]))
