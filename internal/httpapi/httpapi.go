package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/metrics"
	"warungpos/backend/internal/service"
	"warungpos/backend/internal/store"
)

const (
	maxJSONBody   = 1 << 20
	maxImportBody = 10 << 20
)

type API struct {
	service       *service.Service
	metrics       *metrics.Metrics
	log           *zap.Logger
	allowedOrigin string
	assistLimiter *attemptLimiter
}

func New(svc *service.Service, m *metrics.Metrics, log *zap.Logger, allowedOrigin string) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		service:       svc,
		metrics:       m,
		log:           log.Named("http"),
		allowedOrigin: allowedOrigin,
		assistLimiter: newAttemptLimiter(10, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	l.entries[key] = append(kept, now)
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.withMiddleware)

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", a.handleListProducts)
			r.Post("/", a.handleCreateProduct)
			r.Delete("/", a.handleClearProducts)
			r.Get("/low-stock", a.handleLowStock)
			r.Put("/{id}", a.handleUpdateProduct)
			r.Delete("/{id}", a.handleDeleteProduct)
		})
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", a.handleListCustomers)
			r.Post("/", a.handleCreateCustomer)
			r.Delete("/", a.handleClearCustomers)
			r.Get("/search", a.handleSearchCustomers)
			r.Put("/{id}", a.handleUpdateCustomer)
			r.Delete("/{id}", a.handleDeleteCustomer)
		})
		r.Get("/settings", a.handleGetSettings)
		r.Put("/settings", a.handlePutSettings)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", a.handleGetCart)
			r.Post("/items", a.handleAddItem)
			r.Patch("/items/{id}", a.handlePatchItem)
			r.Delete("/items/{id}", a.handleRemoveItem)
			r.Put("/customer", a.handleSetCustomer)
			r.Post("/checkout", a.handleCheckout)
			r.Post("/cancel", a.handleCancelCart)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", a.handleListOrders)
			r.Delete("/", a.handleClearOrders)
			r.Get("/receipts", a.handleReceiptBundle)
			r.Get("/{id}", a.handleGetOrder)
			r.Delete("/{id}", a.handleDeleteOrder)
			r.Post("/{id}/edit", a.handleBeginEdit)
			r.Get("/{id}/receipt", a.handleReceipt)
		})

		r.Get("/analytics/daily", a.handleDailyReport)
		r.Get("/export/{collection}", a.handleExport)
		r.Post("/import/{collection}", a.handleImport)
		r.Post("/assist/describe", a.handleDescribe)
		r.Post("/reset", a.handleReset)
		r.Post("/sync/refresh", a.handleRefresh)
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"remote": a.service.RemoteConfigured(),
		"assist": a.service.AssistEnabled(),
		"time":   time.Now().UTC(),
	})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		switch contentType := strings.ToLower(r.Header.Get("Content-Type")); {
		case strings.Contains(contentType, "application/json"):
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		case strings.HasPrefix(contentType, "multipart/form-data"):
			r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		took := time.Since(startedAt)
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		a.metrics.ObserveHTTP(r.Method, route, ww.Status(), took)
		a.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", took),
		)
	})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrInsufficientStock), errors.Is(err, billing.ErrEditInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation), billing.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, err error) {
	a.writeError(w, statusFor(err), err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

// writeError returns a generic message for 5xx responses and logs the cause.
func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		a.log.Error("internal error", zap.Int("status", status), zap.Error(err))
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFile(w http.ResponseWriter, contentType string, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
