// file: internal/router/router.go
package router

import (
	"net/http"
	"time"

	"taskhive/internal/cache"
	"taskhive/internal/database"
	"taskhive/internal/events"
	achievementsapi "taskhive/internal/handlers/api/v1/achievements"
	"taskhive/internal/middleware"
	"taskhive/internal/response"
	"taskhive/internal/services"

	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire routes and
// report health.
type Dependencies struct {
	AchievementService services.AchievementService
	ResponseBuilder    *response.Builder
	DB                 *database.Manager
	Cache              cache.Cache
	EventBus           events.EventBus
	CORSOrigin         string
	Logger             *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	controller := achievementsapi.NewAchievementController(
		deps.AchievementService,
		deps.Logger,
		deps.ResponseBuilder,
	)

	// Badge views
	mux.HandleFunc("GET /api/v1/users/{id}/achievements", controller.GetTopBadges)
	mux.HandleFunc("GET /api/v1/users/{id}/achievements/gallery", controller.GetGallery)
	mux.HandleFunc("GET /api/v1/users/{id}/achievements/unseen", controller.GetUnseenBadges)

	// Reconciliation trigger
	mux.HandleFunc("POST /api/v1/users/{id}/achievements/sync", controller.SyncUser)

	// Notification gate
	mux.HandleFunc("POST /api/v1/achievements/{id}/acknowledge", controller.AcknowledgeBadge)

	// Health check
	mux.HandleFunc("GET /health", healthHandler(deps))

	// Fallbacks keep error responses in the standard envelope.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseBuilder.WriteNotFound(w, r, "Endpoint not found")
	})

	return middleware.Chain(mux,
		middleware.RequestID(deps.Logger),
		middleware.RecoverPanic(deps.Logger),
		middleware.EnhancedLogging(deps.Logger),
		middleware.CORS(deps.CORSOrigin),
		func(next http.Handler) http.Handler { return middleware.SecureHeaders(next) },
	)
}

// healthHandler reports the state of the server's dependencies
func healthHandler(deps *Dependencies) http.HandlerFunc {
	type componentHealth struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		components := map[string]componentHealth{}
		healthy := true

		check := func(name string, err error) {
			if err != nil {
				healthy = false
				components[name] = componentHealth{Status: "unhealthy", Error: err.Error()}
				return
			}
			components[name] = componentHealth{Status: "healthy"}
		}

		check("database", deps.DB.HealthCheck(ctx))
		check("cache", deps.Cache.Health(ctx))
		check("event_bus", deps.EventBus.Health())

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		deps.ResponseBuilder.WriteStatus(w, r, code, map[string]interface{}{
			"status":     status,
			"components": components,
			"checked_at": time.Now().UTC(),
		})
	}
}
