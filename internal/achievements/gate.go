// file: internal/achievements/gate.go
package achievements

import (
	"context"
	"database/sql"
	"errors"

	"taskhive/internal/cache"
	"taskhive/internal/repositories"

	"go.uber.org/zap"
)

// ErrRecordNotFound is returned when an acknowledgment targets a record
// that does not exist.
var ErrRecordNotFound = errors.New("achievement record not found")

// NotificationGate marks badge records as announced so the notification
// surface does not re-announce a level-up the user has already seen.
type NotificationGate struct {
	repo   repositories.AchievementRepository
	cache  cache.Cache
	logger *zap.Logger
}

// NewNotificationGate creates a new notification gate.
func NewNotificationGate(repo repositories.AchievementRepository, c cache.Cache, logger *zap.Logger) *NotificationGate {
	return &NotificationGate{repo: repo, cache: c, logger: logger}
}

// Acknowledge sets notified=true on exactly one record. Acknowledging an
// already acknowledged record is a no-op; notified only flips back to false
// when a later sync raises the record's level.
func (g *NotificationGate) Acknowledge(ctx context.Context, recordID int64) error {
	rec, err := g.repo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordNotFound
	}

	if err := g.repo.MarkNotified(ctx, recordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return err
	}

	invalidateUser(ctx, g.cache, rec.UserID)
	g.logger.Debug("Achievement acknowledged",
		zap.Int64("record_id", recordID),
		zap.Int64("user_id", rec.UserID),
	)
	return nil
}
