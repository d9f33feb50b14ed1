// file: internal/models/achievement.go
package models

import (
	"fmt"
	"time"
)

// AchievementCategory is one of the nine fixed dimensions of user activity
// tracked for badges.
type AchievementCategory string

const (
	CategoryTeammates      AchievementCategory = "teammates"
	CategoryHabits         AchievementCategory = "habits"
	CategoryCommunities    AchievementCategory = "communities"
	CategoryLeadership     AchievementCategory = "leadership"
	CategoryCollaboration  AchievementCategory = "collaboration"
	CategoryPositiveImpact AchievementCategory = "positive_impact"
	CategorySociability    AchievementCategory = "sociability"
	CategoryReliability    AchievementCategory = "reliability"
	CategoryConsistency    AchievementCategory = "consistency"
)

// AllCategories returns the nine categories in their canonical order.
func AllCategories() []AchievementCategory {
	return []AchievementCategory{
		CategoryTeammates,
		CategoryHabits,
		CategoryCommunities,
		CategoryLeadership,
		CategoryCollaboration,
		CategoryPositiveImpact,
		CategorySociability,
		CategoryReliability,
		CategoryConsistency,
	}
}

// Valid reports whether the category is one of the nine known values.
func (c AchievementCategory) Valid() bool {
	switch c {
	case CategoryTeammates, CategoryHabits, CategoryCommunities,
		CategoryLeadership, CategoryCollaboration, CategoryPositiveImpact,
		CategorySociability, CategoryReliability, CategoryConsistency:
		return true
	}
	return false
}

// EntityScoped reports whether badges in this category are tied to a
// specific person or tag. The remaining categories are global to the user.
func (c AchievementCategory) EntityScoped() bool {
	switch c {
	case CategoryTeammates, CategoryHabits, CategoryCommunities,
		CategoryPositiveImpact, CategoryConsistency:
		return true
	}
	return false
}

// EntityRef identifies the person or tag a badge is scoped to.
type EntityRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GlobalEntityID is the sentinel stored in place of an entity id for
// categories that are global to the user. Using a non-null sentinel keeps
// the (user_id, category, entity_id) uniqueness constraint simple.
const GlobalEntityID int64 = 0

// AchievementRecord is one persisted badge: the highest level and backing
// metric a user has ever reached for a (category, entity) pair. Records are
// high-water marks; level and metric_value never decrease.
type AchievementRecord struct {
	ID          int64               `json:"id" db:"id"`
	UserID      int64               `json:"user_id" db:"user_id" validate:"required"`
	Category    AchievementCategory `json:"category" db:"category" validate:"required"`
	EntityID    int64               `json:"entity_id" db:"entity_id"`
	EntityName  *string             `json:"entity_name,omitempty" db:"entity_name"`
	Level       int                 `json:"level" db:"level" validate:"min=1,max=12"`
	MetricValue int64               `json:"metric_value" db:"metric_value" validate:"min=0"`
	EarnedAt    time.Time           `json:"earned_at" db:"earned_at"`
	Notified    bool                `json:"notified" db:"notified"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`

	// Display helpers (not in DB)
	LevelName string `json:"level_name,omitempty" db:"-"`
}

// AchievementKey is the unique reconciliation key of a record. EntityID is
// GlobalEntityID for globally scoped categories.
type AchievementKey struct {
	UserID   int64
	Category AchievementCategory
	EntityID int64
}

// Key returns the record's reconciliation key.
func (a *AchievementRecord) Key() AchievementKey {
	return AchievementKey{UserID: a.UserID, Category: a.Category, EntityID: a.EntityID}
}

// Entity returns the entity reference of an entity-scoped record, or nil
// for global records.
func (a *AchievementRecord) Entity() *EntityRef {
	if a.EntityID == GlobalEntityID {
		return nil
	}
	ref := &EntityRef{ID: a.EntityID}
	if a.EntityName != nil {
		ref.Name = *a.EntityName
	}
	return ref
}

// String implements fmt.Stringer for log output.
func (k AchievementKey) String() string {
	return fmt.Sprintf("%d/%s/%d", k.UserID, k.Category, k.EntityID)
}
