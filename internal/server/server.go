package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillgreens/microfarm/internal/aggregate"
	"github.com/tillgreens/microfarm/internal/catalog"
	"github.com/tillgreens/microfarm/internal/database"
	"github.com/tillgreens/microfarm/internal/depletion"
	"github.com/tillgreens/microfarm/internal/handler"
	"github.com/tillgreens/microfarm/internal/inventory"
	"github.com/tillgreens/microfarm/internal/lifecycle"
	"github.com/tillgreens/microfarm/internal/logger"
	"github.com/tillgreens/microfarm/internal/metrics"
	"github.com/tillgreens/microfarm/internal/planner"
	"github.com/tillgreens/microfarm/internal/repository"
	"github.com/tillgreens/microfarm/internal/schedule"
	"github.com/tillgreens/microfarm/internal/yield"
)

// Services bundles everything the HTTP surface exposes
type Services struct {
	Inventory inventory.Service
	Planner   planner.Service
	Aggregate aggregate.Service
	Depletion depletion.Service
	Catalog   catalog.Service
	Yield     yield.Service
	Lifecycle lifecycle.Service
	Schedule  schedule.Service
	Protocols repository.Protocol
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
	services   Services
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, services Services) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Planning routes
		r.Post("/plan", handler.HandlePlanOrders(services.Planner))

		// Requirement consolidation routes
		aggregateHandler := handler.NewAggregateHandler(services.Aggregate)
		r.Route("/requirements", func(r chi.Router) {
			r.Post("/consolidate", aggregateHandler.HandleConsolidate)
			r.Post("/merge", aggregateHandler.HandleMerge)
			r.Post("/remove", aggregateHandler.HandleRemove)
		})
		r.Post("/aggregates/recalculate", aggregateHandler.HandleRecalculate)

		// Inventory routes
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/lot", handler.HandleGetLotSummary(services.Inventory))
			r.Get("/lots", handler.HandleListLots(services.Inventory))
			r.Post("/replenish", handler.HandleReplenish(services.Inventory))
			r.Post("/deduct", handler.HandleDeduct(services.Inventory))
			r.Get("/health", handler.HandleGetLotHealth(services.Depletion))
			r.Post("/sweep", handler.HandleSweepLots(services.Depletion))
		})

		// Batch lifecycle routes
		batchHandler := handler.NewBatchHandler(services.Lifecycle, services.Schedule)
		r.Route("/batch", func(r chi.Router) {
			r.Post("/plant", batchHandler.HandlePlant)
			r.Post("/advance", batchHandler.HandleAdvance)
			r.Post("/reset", batchHandler.HandleResetStage)
			r.Get("/get", batchHandler.HandleGetBatch)
			r.Get("/validate", batchHandler.HandleValidateSequence)
			r.Post("/suspend-watering", batchHandler.HandleSuspendWatering)
			r.Post("/reschedule", batchHandler.HandleReschedule)
		})

		// Protocol routes
		protocolHandler := handler.NewProtocolHandler(services.Protocols)
		r.Route("/protocols", func(r chi.Router) {
			r.Get("/", protocolHandler.HandleListProtocols)
			r.Post("/", protocolHandler.HandleCreateProtocol)
			r.Get("/get", protocolHandler.HandleGetProtocol)
		})

		// Catalog routes
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", handler.HandleGetProducts(services.Catalog))
			r.Get("/resolve", handler.HandleResolveVariety(services.Catalog))
			r.Post("/reload", handler.HandleReloadCatalog(services.Catalog))
		})

		// Yield routes
		r.Route("/yield", func(r chi.Router) {
			r.Post("/harvest", handler.HandleRecordHarvest(services.Yield))
			r.Get("/estimate", handler.HandleGetYieldEstimate(services.Yield))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:   dbPool,
		services: services,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
