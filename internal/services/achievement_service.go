// file: internal/services/achievement_service.go
package services

import (
	"context"
	"errors"
	"taskhive/internal/achievements"
	"taskhive/internal/models"
	"taskhive/internal/repositories"
	"taskhive/internal/validation"

	"go.uber.org/zap"
)

// achievementService implements AchievementService on top of the engine
// components.
type achievementService struct {
	synchronizer  *achievements.Synchronizer
	queries       *achievements.QueryService
	gate          *achievements.NotificationGate
	activity      repositories.ActivityRepository
	defaultLocale string
	logger        *zap.Logger
}

// NewAchievementService creates a new achievement service
func NewAchievementService(
	synchronizer *achievements.Synchronizer,
	queries *achievements.QueryService,
	gate *achievements.NotificationGate,
	activity repositories.ActivityRepository,
	defaultLocale string,
	logger *zap.Logger,
) AchievementService {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &achievementService{
		synchronizer:  synchronizer,
		queries:       queries,
		gate:          gate,
		activity:      activity,
		defaultLocale: defaultLocale,
		logger:        logger,
	}
}

// SyncUser runs one reconciliation pass for a user. A partially failed run
// still returns its report; only a total inability to reconcile is an
// error.
func (s *achievementService) SyncUser(ctx context.Context, req *SyncUserRequest) (*achievements.SyncReport, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid sync request", err)
	}

	profile, err := s.activity.GetProfile(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to look up user profile", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to synchronize achievements")
	}
	if profile == nil {
		return nil, NewNotFoundError("user not found")
	}

	report, err := s.synchronizer.Sync(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Achievement sync failed", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to synchronize achievements")
	}

	if report.Partial() {
		s.logger.Warn("Achievement sync completed with partial failures",
			zap.Int64("user_id", req.UserID),
			zap.Int("category_failures", len(report.CategoryFailures)),
			zap.Int("write_failures", len(report.WriteFailures)),
		)
	}
	return report, nil
}

// GetTopBadges returns a user's highest-ranked badges.
func (s *achievementService) GetTopBadges(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badges request", err)
	}

	records, err := s.queries.TopBadges(ctx, req.UserID, req.Limit)
	if err != nil {
		s.logger.Error("Failed to load top badges", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to load badges")
	}
	return s.decorate(records, req.Locale), nil
}

// GetGallery returns the deduplicated badge gallery for a user.
func (s *achievementService) GetGallery(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badges request", err)
	}

	records, err := s.queries.GalleryBadges(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to load badge gallery", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to load badge gallery")
	}
	return s.decorate(records, req.Locale), nil
}

// GetUnseenBadges returns badges still pending announcement.
func (s *achievementService) GetUnseenBadges(ctx context.Context, req *GetBadgesRequest) ([]*models.AchievementRecord, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid badges request", err)
	}

	records, err := s.queries.UnseenBadges(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to load unseen badges", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to load unseen badges")
	}
	return s.decorate(records, req.Locale), nil
}

// AcknowledgeBadge marks one badge's level-up as shown to the user.
func (s *achievementService) AcknowledgeBadge(ctx context.Context, recordID int64) error {
	if recordID <= 0 {
		return NewValidationError("invalid achievement record ID", nil)
	}

	if err := s.gate.Acknowledge(ctx, recordID); err != nil {
		if errors.Is(err, achievements.ErrRecordNotFound) {
			return NewNotFoundError("achievement record not found")
		}
		s.logger.Error("Failed to acknowledge badge", zap.Error(err), zap.Int64("record_id", recordID))
		return NewInternalError("failed to acknowledge badge")
	}
	return nil
}

// decorate fills display helpers on the returned records.
func (s *achievementService) decorate(records []*models.AchievementRecord, locale string) []*models.AchievementRecord {
	if locale == "" {
		locale = s.defaultLocale
	}
	for _, rec := range records {
		rec.LevelName = achievements.LevelDisplayName(rec.Level, locale)
	}
	return records
}
