// ===============================
// FILE: internal/handlers/api/v1/achievements/achievements_controller.go
// ===============================

package achievements

import (
	"net/http"
	"strconv"

	"taskhive/internal/response"
	"taskhive/internal/services"

	"go.uber.org/zap"
)

// defaultTopLimit is the number of badges shown on a profile card when the
// caller does not ask for more.
const defaultTopLimit = 3

// AchievementController handles achievement API endpoints
type AchievementController struct {
	service         services.AchievementService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAchievementController creates a new achievement controller
func NewAchievementController(
	service services.AchievementService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AchievementController {
	return &AchievementController{
		service:         service,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ===============================
// BADGE VIEWS
// ===============================

// GetTopBadges handles GET /api/v1/users/{id}/achievements
func (c *AchievementController) GetTopBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.pathID(w, r, "id", "Invalid user ID")
	if !ok {
		return
	}

	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.responseBuilder.WriteBadRequest(w, r, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	badges, err := c.service.GetTopBadges(r.Context(), &services.GetBadgesRequest{
		UserID: userID,
		Limit:  limit,
		Locale: r.URL.Query().Get("locale"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badges)
}

// GetGallery handles GET /api/v1/users/{id}/achievements/gallery
func (c *AchievementController) GetGallery(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.pathID(w, r, "id", "Invalid user ID")
	if !ok {
		return
	}

	badges, err := c.service.GetGallery(r.Context(), &services.GetBadgesRequest{
		UserID: userID,
		Locale: r.URL.Query().Get("locale"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badges)
}

// GetUnseenBadges handles GET /api/v1/users/{id}/achievements/unseen
func (c *AchievementController) GetUnseenBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.pathID(w, r, "id", "Invalid user ID")
	if !ok {
		return
	}

	badges, err := c.service.GetUnseenBadges(r.Context(), &services.GetBadgesRequest{
		UserID: userID,
		Locale: r.URL.Query().Get("locale"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badges)
}

// ===============================
// SYNCHRONIZATION
// ===============================

// SyncUser handles POST /api/v1/users/{id}/achievements/sync
func (c *AchievementController) SyncUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.pathID(w, r, "id", "Invalid user ID")
	if !ok {
		return
	}

	report, err := c.service.SyncUser(r.Context(), &services.SyncUserRequest{UserID: userID})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("Achievement sync requested via API",
		zap.Int64("user_id", userID),
		zap.Int("created", report.Created),
		zap.Int("leveled_up", report.LeveledUp),
		zap.Bool("partial", report.Partial()),
	)

	c.responseBuilder.WriteSuccess(w, r, report)
}

// ===============================
// NOTIFICATION GATING
// ===============================

// AcknowledgeBadge handles POST /api/v1/achievements/{id}/acknowledge
func (c *AchievementController) AcknowledgeBadge(w http.ResponseWriter, r *http.Request) {
	recordID, ok := c.pathID(w, r, "id", "Invalid achievement ID")
	if !ok {
		return
	}

	if err := c.service.AcknowledgeBadge(r.Context(), recordID); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// pathID extracts a positive int64 path parameter, writing a 400 on failure
func (c *AchievementController) pathID(w http.ResponseWriter, r *http.Request, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		c.responseBuilder.WriteBadRequest(w, r, message)
		return 0, false
	}
	return id, true
}
