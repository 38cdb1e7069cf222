package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/cache"
	cachesqlite "github.com/mmynk/splitsync/internal/cache/sqlite"
	"github.com/mmynk/splitsync/internal/config"
	"github.com/mmynk/splitsync/internal/enrich"
	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/notify"
	"github.com/mmynk/splitsync/internal/observability"
	"github.com/mmynk/splitsync/internal/service"
	"github.com/mmynk/splitsync/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWith(parseLevel(cfg.LogLevel), cfg.LogFormat)

	metrics := observability.NewMetrics()

	tokens := &auth.ExpiryCheckSource{
		Source: auth.StaticTokenSource(cfg.APIToken),
		Leeway: 30 * time.Second,
	}
	client := ledger.NewClient(cfg.APIBaseURL, tokens, cfg.APITimeout)

	enricher := enrich.New(client)
	enricher.OnLookupFailure = func(userID string, err error) {
		metrics.LookupFailed()
	}

	var snapCache cache.SnapshotCache
	if cfg.CachePath != "" {
		c, err := cachesqlite.New(cfg.CachePath)
		if err != nil {
			slog.Error("Failed to open snapshot cache", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
		defer c.Close()
		snapCache = c
		slog.Info("Snapshot cache ready", "path", cfg.CachePath)
	}

	svc := service.NewSyncService(client, enricher, notify.SlogNotifier{}, snapCache, metrics, cfg.ObserverID)

	ctx := context.Background()
	if err := svc.LoadCached(ctx); err != nil {
		slog.Warn("Warm start failed, continuing cold", "error", err)
	}
	if _, err := svc.Refresh(ctx); err != nil {
		// Cached or empty state stays visible; the ticker retries.
		slog.Warn("Initial refresh failed", "error", err)
	}

	if cfg.RefreshInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.RefreshInterval)
			defer ticker.Stop()
			for range ticker.C {
				if _, err := svc.Refresh(context.Background()); err != nil {
					slog.Warn("Periodic refresh failed", "error", err)
				}
			}
		}()
		slog.Info("Periodic refresh enabled", "interval", cfg.RefreshInterval)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, svc)
	mux.Handle("/metrics", metrics.Handler())

	handler := loggingMiddleware(corsMiddleware(metrics.Middleware(mux)))

	// h2c lets presentation clients use HTTP/2 without TLS termination here.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	slog.Info("View API starting", "address", cfg.ListenAddr, "observer", cfg.ObserverID)
	if err := http.ListenAndServe(cfg.ListenAddr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func registerRoutes(mux *http.ServeMux, svc *service.SyncService) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"loading": svc.Loading(),
		})
	})

	mux.HandleFunc("GET /v1/snapshot", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshotView(svc))
	})

	mux.HandleFunc("GET /v1/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Stats())
	})

	mux.HandleFunc("POST /v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Refresh(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	// Focus trigger: the mobile shell calls this when a ledger view regains
	// focus or its params change.
	mux.HandleFunc("POST /v1/focus", func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.HandleFocus(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /v1/signals/group-created", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
			return
		}
		svc.SignalGroupCreated(name)
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("GET /v1/groups/{id}/validate", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ValidateGroup(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "exists"})
	})

	mux.HandleFunc("GET /v1/splits/{id}/validate", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ValidateSplit(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "exists"})
	})
}

// snapshotView packages the controller state with its loading/error flags,
// mirroring what the mobile dashboard binds to.
func snapshotView(svc *service.SyncService) map[string]any {
	snap := svc.Snapshot()
	view := map[string]any{
		"groups":          snap.Groups,
		"bill_splits":     snap.BillSplits,
		"settlements":     snap.Settlements,
		"enriched_splits": snap.EnrichedSplits,
		"computed_stats":  snap.Stats,
		"generation":      snap.Generation,
		"loading":         svc.Loading(),
	}
	if err := svc.Err(); err != nil {
		view["error"] = err.Error()
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case ledger.IsAuth(err):
		status = http.StatusUnauthorized
	case ledger.IsRetryable(err):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{
		"error":     err.Error(),
		"retryable": ledger.IsRetryable(err),
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
