// file: internal/services/interface.go
package services

import (
	"context"
	"taskhive/internal/achievements"
	"taskhive/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// AchievementService defines the badge engine's business surface: running
// syncs, reading badge views, and gating level-up announcements.
type AchievementService interface {
	// Synchronization
	SyncUser(ctx context.Context, req *SyncUserRequest) (*achievements.SyncReport, error)

	// Badge views
	GetTopBadges(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error)
	GetGallery(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error)
	GetUnseenBadges(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error)

	// Notification gating
	AcknowledgeBadge(ctx context.Context, recordID int64) error
}

// ===============================
// REQUEST TYPES
// ===============================

// SyncUserRequest asks for one reconciliation run for a user.
type SyncUserRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// GetBadgesRequest parameterizes the badge read views.
type GetBadgesRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Limit  int    `json:"limit" validate:"min=0,max=100"`
	Locale string `json:"locale" validate:"omitempty,bcp47_language_tag"`
}
