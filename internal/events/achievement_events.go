// file: internal/events/achievement_events.go
package events

import "time"

// Event types published by the achievement engine. The notification
// surface subscribes to these to build level-up banners.
const (
	EventTypeAchievementUnlocked = "achievement.unlocked"
	EventTypeAchievementLevelUp  = "achievement.level_up"
)

// AchievementUnlockedEvent is published when a user earns a badge for a
// (category, entity) pair for the first time.
type AchievementUnlockedEvent struct {
	BaseEvent
	Category    string `json:"category"`
	EntityID    int64  `json:"entity_id"`
	Level       int    `json:"level"`
	MetricValue int64  `json:"metric_value"`
}

// NewAchievementUnlockedEvent creates a new achievement unlocked event
func NewAchievementUnlockedEvent(userID int64, category string, entityID int64, level int, metricValue int64) *AchievementUnlockedEvent {
	return &AchievementUnlockedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeAchievementUnlocked,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Category:    category,
		EntityID:    entityID,
		Level:       level,
		MetricValue: metricValue,
	}
}

// AchievementLevelUpEvent is published when an existing badge reaches a
// higher level. Metric-only advances do not publish.
type AchievementLevelUpEvent struct {
	BaseEvent
	Category    string `json:"category"`
	EntityID    int64  `json:"entity_id"`
	Level       int    `json:"level"`
	MetricValue int64  `json:"metric_value"`
}

// NewAchievementLevelUpEvent creates a new achievement level-up event
func NewAchievementLevelUpEvent(userID int64, category string, entityID int64, level int, metricValue int64) *AchievementLevelUpEvent {
	return &AchievementLevelUpEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeAchievementLevelUp,
			Timestamp: time.Now(),
			UserID:    &userID,
		},
		Category:    category,
		EntityID:    entityID,
		Level:       level,
		MetricValue: metricValue,
	}
}
