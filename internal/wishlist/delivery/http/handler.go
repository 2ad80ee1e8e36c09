package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
	"github.com/tair/wishlist-service/pkg/auth"
	"github.com/tair/wishlist-service/pkg/logger"
	"github.com/tair/wishlist-service/pkg/validator"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_requests_total",
			Help: "Total number of requests to wishlist service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wishlist_service_request_duration_seconds",
			Help:    "Duration of wishlist service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Summary metric for percentile calculation (p50, p90, p95, p99)
	requestSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "wishlist_service_request_duration_summary",
			Help: "Summary of request durations with percentiles (client-side quantiles)",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.01,
				0.99: 0.001,
			},
			MaxAge: 10 * time.Minute,
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(requestSummary)
}

// WishlistUseCase is the wishlist behaviour served over HTTP
type WishlistUseCase interface {
	GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddItem(ctx context.Context, userID string, input domain.AddItemInput) (*domain.Wishlist, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error)
	MoveToCart(ctx context.Context, userID string, input domain.MoveToCartInput) (*domain.MoveToCartResult, error)
	ClearAllCache(ctx context.Context)
}

// HealthChecker reports whether the wishlist store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// WishlistHandler handles HTTP requests for wishlists
type WishlistHandler struct {
	service WishlistUseCase
	tokens  *auth.TokenValidator
	limiter RateLimiter
}

// NewWishlistHandler creates a new wishlist handler. A nil limiter disables rate limiting.
func NewWishlistHandler(service WishlistUseCase, tokens *auth.TokenValidator, limiter RateLimiter) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		tokens:  tokens,
		limiter: limiter,
	}
}

// Response is the envelope of non-wishlist replies such as health checks
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *WishlistHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// protected authenticates the caller, then applies the per-user rate limit
func (h *WishlistHandler) protected(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	if h.limiter != nil {
		next = RateLimitMiddleware(h.limiter)(next)
	}
	return h.metricsMiddleware(endpoint, AuthMiddleware(h.tokens)(next))
}

func (h *WishlistHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/wishlist", h.protected("/wishlist", h.GetWishlist)).Methods("GET")
	router.HandleFunc("/wishlist", h.protected("/wishlist", h.ClearWishlist)).Methods("DELETE")
	router.HandleFunc("/wishlist/items", h.protected("/wishlist/items", h.AddItem)).Methods("POST")
	router.HandleFunc("/wishlist/items/{productId}", h.protected("/wishlist/items/{productId}", h.RemoveItem)).Methods("DELETE")
	router.HandleFunc("/wishlist/addToCart", h.protected("/wishlist/addToCart", h.MoveToCart)).Methods("POST")

	// Admin routes (admin role required)
	router.HandleFunc("/wishlist/cache", h.metricsMiddleware("/wishlist/cache", AdminMiddleware(h.tokens)(h.ClearAllCache))).Methods("DELETE")
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	wishlist, err := h.service.GetWishlist(ctx, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).
		Int("item_count", len(wishlist.Items)).
		Msg("Wishlist retrieved successfully")
	respondJSON(w, http.StatusOK, wishlist)
}

// AddItem handles POST /wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req domain.AddItemInput
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	wishlist, err := h.service.AddItem(ctx, userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).
		Str("product_id", req.ProductID).
		Int("item_count", len(wishlist.Items)).
		Msg("Item added to wishlist")
	respondJSON(w, http.StatusCreated, wishlist)
}

// RemoveItem handles DELETE /wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	productID := mux.Vars(r)["productId"]

	wishlist, err := h.service.RemoveItem(ctx, userID, productID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).
		Str("product_id", productID).
		Int("item_count", len(wishlist.Items)).
		Msg("Item removed from wishlist")
	respondJSON(w, http.StatusOK, wishlist)
}

// ClearWishlist handles DELETE /wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	wishlist, err := h.service.ClearWishlist(ctx, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).Msg("Wishlist cleared")
	respondJSON(w, http.StatusOK, wishlist)
}

// MoveToCart handles POST /wishlist/addToCart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req domain.MoveToCartInput
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.service.MoveToCart(ctx, userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.Info(ctx).
		Str("product_id", result.ProductID).
		Int("cart_item_count", len(result.CartItems)).
		Msg("Item moved from wishlist to cart")
	respondJSON(w, http.StatusCreated, result)
}

// ClearAllCache handles DELETE /wishlist/cache
func (h *WishlistHandler) ClearAllCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearAllCache(r.Context())

	logger.Warn(r.Context()).Msg("All wishlist caches cleared")
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cache cleared successfully",
	})
}

func (h *WishlistHandler) RegisterHealthCheck(router *mux.Router, store HealthChecker) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Error(ctx).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Wishlist service is healthy",
		})
	}).Methods("GET")
}

// decodeRequest maps body and validation failures onto the error taxonomy
func decodeRequest(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return apperrors.ValidationFailed(valErr.Error(), valErr.Fields())
	}
	if errors.Is(err, validator.ErrEmptyBody) {
		return apperrors.InvalidInput("Request body is required")
	}
	return apperrors.InvalidFormat(err)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
