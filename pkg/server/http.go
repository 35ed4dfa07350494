// Package server constructs the HTTP and gRPC servers used by the catalog.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/abgdnv/productcatalog/pkg/server"

func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter creates a chi router with request id injection, structured logging,
// panic recovery, path cleaning and an active request gauge.
func NewChiRouter(logger *slog.Logger, mp metric.MeterProvider) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	mux.Use(chimiddleware.CleanPath)
	mux.Use(web.ActiveRequests(mp.Meter(meterName)))
	return mux
}

// Instrument wraps the handler with OpenTelemetry HTTP server instrumentation.
func Instrument(handler http.Handler, operation string) http.Handler {
	return otelhttp.NewHandler(handler, operation)
}

// NewPprofServer serves the runtime profiles on their own mux, away from the public API.
func NewPprofServer(cfg config.PProfConfig, readHeaderTimeout time.Duration) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
