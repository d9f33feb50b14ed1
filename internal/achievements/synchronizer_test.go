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

func testConfig() Config {
	return Config{
		MaxConcurrentAggregators: 4,
		WriteRetryLimit:          1,
		WriteRetryInterval:       time.Millisecond,
	}
}

func newTestSynchronizer(repo *fakeAchievementRepo, aggs ...Aggregator) *Synchronizer {
	return NewSynchronizer(aggs, repo, nil, nil, testConfig(), zap.NewNop())
}

func TestSyncCreatesRecords(t *testing.T) {
	repo := newFakeAchievementRepo()
	s := newTestSynchronizer(repo,
		&stubAggregator{category: models.CategoryTeammates, candidates: []Candidate{
			{Category: models.CategoryTeammates, Entity: &models.EntityRef{ID: 7, Name: "Asha"}, Metric: 150},
		}},
		&stubAggregator{category: models.CategoryCollaboration, candidates: []Candidate{
			{Category: models.CategoryCollaboration, Metric: 12},
		}},
	)

	report, err := s.Sync(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Unchanged)
	assert.False(t, report.Partial())

	teammate := repo.get(models.AchievementKey{UserID: 1, Category: models.CategoryTeammates, EntityID: 7})
	require.NotNil(t, teammate)
	assert.Equal(t, 2, teammate.Level, "metric 150 lands on level 2")
	assert.Equal(t, int64(150), teammate.MetricValue)
	assert.False(t, teammate.Notified, "new records start unannounced")
	require.NotNil(t, teammate.EntityName)
	assert.Equal(t, "Asha", *teammate.EntityName)

	global := repo.get(models.AchievementKey{UserID: 1, Category: models.CategoryCollaboration, EntityID: models.GlobalEntityID})
	require.NotNil(t, global)
	assert.Equal(t, 1, global.Level)
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newFakeAchievementRepo()
	agg := &stubAggregator{category: models.CategorySociability, candidates: []Candidate{
		{Category: models.CategorySociability, Metric: 42},
	}}
	s := newTestSynchronizer(repo, agg)

	first, err := s.Sync(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := s.Sync(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Writes(), "unchanged source data must write nothing")
	assert.Equal(t, 1, second.Unchanged)
}

func TestSyncNeverDowngrades(t *testing.T) {
	repo := newFakeAchievementRepo()
	earned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.seed(&models.AchievementRecord{
		UserID:      9,
		Category:    models.CategoryReliability,
		EntityID:    models.GlobalEntityID,
		Level:       4,
		MetricValue: 1500,
		EarnedAt:    earned,
		Notified:    true,
	})

	// The streak shrank since the record was earned.
	s := newTestSynchronizer(repo, &stubAggregator{category: models.CategoryReliability, candidates: []Candidate{
		{Category: models.CategoryReliability, Metric: 30},
	}})

	report, err := s.Sync(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Writes())

	rec := repo.get(models.AchievementKey{UserID: 9, Category: models.CategoryReliability, EntityID: models.GlobalEntityID})
	assert.Equal(t, 4, rec.Level)
	assert.Equal(t, int64(1500), rec.MetricValue)
	assert.Equal(t, earned, rec.EarnedAt)
	assert.True(t, rec.Notified)
}

func TestSyncLevelUpResetsNotified(t *testing.T) {
	repo := newFakeAchievementRepo()
	earned := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	repo.seed(&models.AchievementRecord{
		UserID:      3,
		Category:    models.CategoryHabits,
		EntityID:    6,
		Level:       2,
		MetricValue: 120,
		EarnedAt:    earned,
		Notified:    true,
	})

	s := newTestSynchronizer(repo, &stubAggregator{category: models.CategoryHabits, candidates: []Candidate{
		{Category: models.CategoryHabits, Entity: &models.EntityRef{ID: 6, Name: "running"}, Metric: 600},
	}})
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	report, err := s.Sync(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.LeveledUp)

	rec := repo.get(models.AchievementKey{UserID: 3, Category: models.CategoryHabits, EntityID: 6})
	assert.Equal(t, 3, rec.Level)
	assert.Equal(t, int64(600), rec.MetricValue)
	assert.Equal(t, now, rec.EarnedAt, "earned_at moves on level increase")
	assert.False(t, rec.Notified, "level increase re-arms the announcement")
}

func TestSyncMetricAdvanceKeepsEarnedAt(t *testing.T) {
	repo := newFakeAchievementRepo()
	earned := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	repo.seed(&models.AchievementRecord{
		UserID:      3,
		Category:    models.CategoryHabits,
		EntityID:    6,
		Level:       2,
		MetricValue: 120,
		EarnedAt:    earned,
		Notified:    true,
	})

	// 130 completions is still level 2; only the metric advances.
	s := newTestSynchronizer(repo, &stubAggregator{category: models.CategoryHabits, candidates: []Candidate{
		{Category: models.CategoryHabits, Entity: &models.EntityRef{ID: 6, Name: "running"}, Metric: 130},
	}})

	report, err := s.Sync(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Advanced)
	assert.Equal(t, 0, report.LeveledUp)

	rec := repo.get(models.AchievementKey{UserID: 3, Category: models.CategoryHabits, EntityID: 6})
	assert.Equal(t, 2, rec.Level)
	assert.Equal(t, int64(130), rec.MetricValue)
	assert.Equal(t, earned, rec.EarnedAt, "earned_at is pinned to the level, not the metric")
	assert.True(t, rec.Notified)
}

func TestSyncDropsBelowFloorCandidates(t *testing.T) {
	repo := newFakeAchievementRepo()
	s := newTestSynchronizer(repo, &stubAggregator{category: models.CategorySociability, candidates: []Candidate{
		{Category: models.CategorySociability, Metric: 9},
	}})

	report, err := s.Sync(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Writes())
	assert.Nil(t, repo.get(models.AchievementKey{UserID: 2, Category: models.CategorySociability, EntityID: models.GlobalEntityID}))
}

func TestSyncToleratesAggregatorFailure(t *testing.T) {
	repo := newFakeAchievementRepo()
	s := newTestSynchronizer(repo,
		&stubAggregator{category: models.CategoryTeammates, err: errSourceDown},
		&stubAggregator{category: models.CategoryCollaboration, candidates: []Candidate{
			{Category: models.CategoryCollaboration, Metric: 25},
		}},
	)

	report, err := s.Sync(context.Background(), 4)
	require.NoError(t, err, "a failed aggregator must not fail the run")

	assert.True(t, report.Partial())
	require.Len(t, report.CategoryFailures, 1)
	assert.Equal(t, models.CategoryTeammates, report.CategoryFailures[0].Category)

	// The healthy category still got its record.
	assert.Equal(t, 1, report.Created)
	assert.NotNil(t, repo.get(models.AchievementKey{UserID: 4, Category: models.CategoryCollaboration, EntityID: models.GlobalEntityID}))
}

func TestSyncToleratesWriteFailure(t *testing.T) {
	repo := newFakeAchievementRepo()
	repo.insertErr = errSourceDown
	repo.insertErrCategory = models.CategoryCollaboration
	s := newTestSynchronizer(repo,
		&stubAggregator{category: models.CategoryCollaboration, candidates: []Candidate{
			{Category: models.CategoryCollaboration, Metric: 25},
		}},
		&stubAggregator{category: models.CategorySociability, candidates: []Candidate{
			{Category: models.CategorySociability, Metric: 40},
		}},
	)

	report, err := s.Sync(context.Background(), 4)
	require.NoError(t, err)

	assert.True(t, report.Partial())
	require.Len(t, report.WriteFailures, 1)
	assert.Equal(t, models.CategoryCollaboration, report.WriteFailures[0].Key.Category)

	// The failed write leaves the sibling candidate untouched.
	assert.Equal(t, 1, report.Created)
	assert.NotNil(t, repo.get(models.AchievementKey{UserID: 4, Category: models.CategorySociability, EntityID: models.GlobalEntityID}))
	assert.Nil(t, repo.get(models.AchievementKey{UserID: 4, Category: models.CategoryCollaboration, EntityID: models.GlobalEntityID}))
}

func TestSyncLostInsertRaceDegradesToUpgrade(t *testing.T) {
	repo := newFakeAchievementRepo()
	repo.loseInsertRace = true

	s := newTestSynchronizer(repo, &stubAggregator{category: models.CategorySociability, candidates: []Candidate{
		{Category: models.CategorySociability, Metric: 250},
	}})

	report, err := s.Sync(context.Background(), 6)
	require.NoError(t, err)

	// The race winner's level-1 row got advanced to our candidate.
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Advanced)

	rec := repo.get(models.AchievementKey{UserID: 6, Category: models.CategorySociability, EntityID: models.GlobalEntityID})
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Level)
	assert.Equal(t, int64(250), rec.MetricValue)
}
