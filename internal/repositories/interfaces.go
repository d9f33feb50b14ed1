// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"taskhive/internal/models"
)

// ===============================
// CORE REPOSITORY INTERFACES
// ===============================

// AchievementRepository defines the contract for persisted badge records.
// All mutations are forward-only: a write may raise level/metric_value but
// can never lower them, which keeps records safe under concurrent syncs.
type AchievementRepository interface {
	// Lookups
	GetByID(ctx context.Context, id int64) (*models.AchievementRecord, error)
	GetByKey(ctx context.Context, key models.AchievementKey) (*models.AchievementRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.AchievementRecord, error)
	ListUnnotified(ctx context.Context, userID int64) ([]*models.AchievementRecord, error)

	// Mutations
	// Insert creates a record if none exists for its key. It returns false
	// without error when a concurrent writer inserted the key first.
	Insert(ctx context.Context, rec *models.AchievementRecord) (bool, error)
	// Upgrade advances an existing record to the given level/metric. The
	// update is guarded: it only applies while it moves the record forward,
	// and earned_at/notified change only when the level actually increases.
	// Returns false when the stored record already meets or exceeds the
	// proposed values.
	Upgrade(ctx context.Context, rec *models.AchievementRecord) (bool, error)
	// MarkNotified acknowledges a level-up announcement. Idempotent.
	MarkNotified(ctx context.Context, id int64) error
}

// ActivityRepository supplies the read-only, denormalized activity
// snapshots the metric aggregators reduce over. Each method corresponds to
// one achievement category's source data and is independent of the others,
// so a failing source only starves its own category.
type ActivityRepository interface {
	// teammates: one row per (completed task, approved co-participant).
	SharedCompletions(ctx context.Context, userID int64) ([]models.SharedCompletion, error)
	// habits / communities: one row per (completed task, tag of category).
	TaggedCompletions(ctx context.Context, userID int64, category models.TagCategory) ([]models.TaggedCompletion, error)
	// leadership / positive_impact: the user's own tasks with counters.
	CreatedTasks(ctx context.Context, userID int64) ([]models.CreatedTask, error)
	// collaboration: completed tasks joined as an approved collaborator.
	CollaboratorCompletions(ctx context.Context, userID int64) ([]models.CollaboratorCompletion, error)
	// sociability: follow relationships targeting the user.
	Followers(ctx context.Context, userID int64) ([]models.Follow, error)
	// reliability: ratings received, in chronological order.
	Ratings(ctx context.Context, userID int64) ([]models.Rating, error)
	// consistency: the user's repeating tasks with streak counters.
	RepeatingTasks(ctx context.Context, userID int64) ([]models.RepeatingTask, error)

	// Profile lookup for entity_name resolution.
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
}
