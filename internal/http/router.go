package http

import (
	"net/http"
	"time"

	"tourism-system/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v9"
)

type Router struct {
	chi.Router
}

// NewRouter builds the router with the shared middleware stack. redis
// may be nil, which disables rate limiting.
func NewRouter(redisClient *redis.Client, requestsPerMinute int) *Router {
	r := chi.NewRouter()

	// Use chi middleware with aliases to avoid conflicts
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Custom middleware
	r.Use(middleware.RateLimit(redisClient, requestsPerMinute))
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	return &Router{r}
}

// RegisterQueryRoutes registers the travel query API routes
func (r *Router) RegisterQueryRoutes(handler *QueryHandler) {
	handler.RegisterRoutes(r)
}

// RegisterHealthRoutes registers health check routes
func (r *Router) RegisterHealthRoutes() {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
	})
}
