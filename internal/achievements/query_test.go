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

func seedBadges(repo *fakeAchievementRepo) {
	repo.seed(&models.AchievementRecord{
		ID: 1, UserID: 1, Category: models.CategoryTeammates, EntityID: 7,
		Level: 2, MetricValue: 150, EarnedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.seed(&models.AchievementRecord{
		ID: 2, UserID: 1, Category: models.CategoryHabits, EntityID: 3,
		Level: 5, MetricValue: 2400, EarnedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	repo.seed(&models.AchievementRecord{
		ID: 3, UserID: 1, Category: models.CategorySociability, EntityID: models.GlobalEntityID,
		Level: 2, MetricValue: 300, EarnedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Notified: true,
	})
	repo.seed(&models.AchievementRecord{
		ID: 4, UserID: 1, Category: models.CategoryConsistency, EntityID: 3,
		Level: 5, MetricValue: 2400, EarnedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestTopBadgesOrderingAndTruncation(t *testing.T) {
	repo := newFakeAchievementRepo()
	seedBadges(repo)
	q := NewQueryService(repo, nil, 0, zap.NewNop())

	badges, err := q.TopBadges(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, badges, 3)

	// Level desc, then metric desc, then id asc for full determinism.
	assert.Equal(t, int64(2), badges[0].ID)
	assert.Equal(t, int64(4), badges[1].ID)
	assert.Equal(t, int64(3), badges[2].ID, "metric 300 outranks metric 150 at equal level")
}

func TestTopBadgesZeroLimitReturnsAll(t *testing.T) {
	repo := newFakeAchievementRepo()
	seedBadges(repo)
	q := NewQueryService(repo, nil, 0, zap.NewNop())

	badges, err := q.TopBadges(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, badges, 4)
}

func TestTopBadgesUnknownUser(t *testing.T) {
	q := NewQueryService(newFakeAchievementRepo(), nil, 0, zap.NewNop())

	badges, err := q.TopBadges(context.Background(), 404, 3)
	require.NoError(t, err)
	assert.Empty(t, badges)
}

func TestGalleryBadgesDeduplicates(t *testing.T) {
	repo := newFakeAchievementRepo()
	seedBadges(repo)
	q := NewQueryService(repo, nil, 0, zap.NewNop())

	badges, err := q.GalleryBadges(context.Background(), 1)
	require.NoError(t, err)

	// Each (category, entity) pair appears exactly once.
	type galleryKey struct {
		category models.AchievementCategory
		entityID int64
	}
	seen := make(map[galleryKey]bool)
	for _, b := range badges {
		key := galleryKey{category: b.Category, entityID: b.EntityID}
		assert.False(t, seen[key], "duplicate gallery entry %v", key)
		seen[key] = true
	}
	assert.Len(t, badges, 4)
}

// duplicateRowRepo simulates a store without the uniqueness constraint:
// ListByUser hands back whatever rows it was given, duplicates included.
type duplicateRowRepo struct {
	*fakeAchievementRepo
	rows []*models.AchievementRecord
}

func (r *duplicateRowRepo) ListByUser(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	return r.rows, nil
}

func TestGalleryBadgesCollapsesDuplicateRows(t *testing.T) {
	repo := &duplicateRowRepo{
		fakeAchievementRepo: newFakeAchievementRepo(),
		rows: []*models.AchievementRecord{
			{ID: 1, UserID: 1, Category: models.CategoryHabits, EntityID: 3, Level: 3, MetricValue: 600},
			{ID: 2, UserID: 1, Category: models.CategoryHabits, EntityID: 3, Level: 5, MetricValue: 2400},
			{ID: 3, UserID: 1, Category: models.CategoryHabits, EntityID: 3, Level: 5, MetricValue: 2000},
			{ID: 4, UserID: 1, Category: models.CategoryTeammates, EntityID: 7, Level: 2, MetricValue: 150},
		},
	}
	q := NewQueryService(repo, nil, 0, zap.NewNop())

	badges, err := q.GalleryBadges(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, badges, 2)

	// Of the three (habits, 3) rows the highest level survives, with
	// metric_value breaking the level tie.
	assert.Equal(t, int64(2), badges[0].ID)
	assert.Equal(t, 5, badges[0].Level)
	assert.Equal(t, int64(2400), badges[0].MetricValue)
	assert.Equal(t, int64(4), badges[1].ID)
}

func TestUnseenBadges(t *testing.T) {
	repo := newFakeAchievementRepo()
	seedBadges(repo)
	q := NewQueryService(repo, nil, 0, zap.NewNop())

	badges, err := q.UnseenBadges(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, badges, 3)
	for _, b := range badges {
		assert.False(t, b.Notified)
	}
}
