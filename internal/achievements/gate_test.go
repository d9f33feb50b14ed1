package achievements

import (
	"context"
	"testing"
	"time"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAcknowledge(t *testing.T) {
	repo := newFakeAchievementRepo()
	rec := repo.seed(&models.AchievementRecord{
		ID: 11, UserID: 2, Category: models.CategoryLeadership, EntityID: models.GlobalEntityID,
		Level: 1, MetricValue: 12, EarnedAt: time.Now(),
	})

	gate := NewNotificationGate(repo, nil, zap.NewNop())
	require.NoError(t, gate.Acknowledge(context.Background(), rec.ID))

	stored := repo.get(rec.Key())
	assert.True(t, stored.Notified)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	repo := newFakeAchievementRepo()
	rec := repo.seed(&models.AchievementRecord{
		ID: 11, UserID: 2, Category: models.CategoryLeadership, EntityID: models.GlobalEntityID,
		Level: 1, MetricValue: 12, EarnedAt: time.Now(), Notified: true,
	})

	gate := NewNotificationGate(repo, nil, zap.NewNop())
	assert.NoError(t, gate.Acknowledge(context.Background(), rec.ID))
}

func TestAcknowledgeUnknownRecord(t *testing.T) {
	gate := NewNotificationGate(newFakeAchievementRepo(), nil, zap.NewNop())

	err := gate.Acknowledge(context.Background(), 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
