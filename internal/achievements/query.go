// file: internal/achievements/query.go
package achievements

import (
	"context"
	"fmt"
	"time"

	"taskhive/internal/cache"
	"taskhive/internal/models"
	"taskhive/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// cache keys per user view. The synchronizer and the notification gate
// invalidate these whenever they write.
func cacheKeyTop(userID int64) string {
	return fmt.Sprintf("achievements:user:%d:top", userID)
}

func cacheKeyGallery(userID int64) string {
	return fmt.Sprintf("achievements:user:%d:gallery", userID)
}

func cacheKeyUnseen(userID int64) string {
	return fmt.Sprintf("achievements:user:%d:unseen", userID)
}

func invalidateUser(ctx context.Context, c cache.Cache, userID int64) {
	if c == nil {
		return
	}
	for _, key := range []string{cacheKeyTop(userID), cacheKeyGallery(userID), cacheKeyUnseen(userID)} {
		_ = c.Delete(ctx, key)
	}
}

// QueryService provides the read-side views over persisted badge records.
type QueryService struct {
	repo   repositories.AchievementRepository
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
}

// NewQueryService creates a new badge query service.
func NewQueryService(repo repositories.AchievementRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *QueryService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryService{repo: repo, cache: c, logger: logger, ttl: ttl}
}

// TopBadges returns the user's records sorted by (level desc, metric desc),
// truncated to limit. A non-positive limit returns everything.
func (q *QueryService) TopBadges(ctx context.Context, userID int64, limit int) ([]*models.AchievementRecord, error) {
	records, err := q.listCached(ctx, cacheKeyTop(userID), userID)
	if err != nil {
		return nil, err
	}

	sortByRank(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GalleryBadges returns one record per (category, entity), retaining the
// highest level with metric_value as the tie breaker. The dedup is
// defensive: a store without the uniqueness constraint can hold duplicate
// rows, and the gallery must not show them twice.
func (q *QueryService) GalleryBadges(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	records, err := q.listCached(ctx, cacheKeyGallery(userID), userID)
	if err != nil {
		return nil, err
	}

	type galleryKey struct {
		category models.AchievementCategory
		entityID int64
	}
	best := make(map[galleryKey]*models.AchievementRecord, len(records))
	order := make([]galleryKey, 0, len(records))
	for _, rec := range records {
		key := galleryKey{category: rec.Category, entityID: rec.EntityID}
		current, ok := best[key]
		if !ok {
			best[key] = rec
			order = append(order, key)
			continue
		}
		if rec.Level > current.Level ||
			(rec.Level == current.Level && rec.MetricValue > current.MetricValue) {
			best[key] = rec
		}
	}

	gallery := make([]*models.AchievementRecord, 0, len(order))
	for _, key := range order {
		gallery = append(gallery, best[key])
	}
	sortByRank(gallery)
	return gallery, nil
}

// UnseenBadges returns the user's records still pending announcement, most
// recently earned first.
func (q *QueryService) UnseenBadges(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	if cached, found := q.cacheGet(ctx, cacheKeyUnseen(userID)); found {
		return cached, nil
	}

	records, err := q.repo.ListUnnotified(ctx, userID)
	if err != nil {
		return nil, err
	}
	q.cacheSet(ctx, cacheKeyUnseen(userID), records)
	return records, nil
}

func (q *QueryService) listCached(ctx context.Context, key string, userID int64) ([]*models.AchievementRecord, error) {
	if cached, found := q.cacheGet(ctx, key); found {
		return cached, nil
	}

	records, err := q.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	q.cacheSet(ctx, key, records)
	return records, nil
}

func (q *QueryService) cacheGet(ctx context.Context, key string) ([]*models.AchievementRecord, bool) {
	if q.cache == nil {
		return nil, false
	}
	cached, found := q.cache.Get(ctx, key)
	if !found {
		return nil, false
	}
	records, ok := cached.([]*models.AchievementRecord)
	if !ok {
		return nil, false
	}
	// Return a copy so callers can truncate and re-sort freely.
	return slices.Clone(records), true
}

func (q *QueryService) cacheSet(ctx context.Context, key string, records []*models.AchievementRecord) {
	if q.cache == nil {
		return
	}
	if err := q.cache.Set(ctx, key, slices.Clone(records), q.ttl); err != nil {
		q.logger.Warn("Failed to cache badge view", zap.String("key", key), zap.Error(err))
	}
}

// sortByRank orders records by (level desc, metric desc, id asc).
func sortByRank(records []*models.AchievementRecord) {
	slices.SortStableFunc(records, func(a, b *models.AchievementRecord) int {
		switch {
		case a.Level != b.Level:
			if a.Level > b.Level {
				return -1
			}
			return 1
		case a.MetricValue != b.MetricValue:
			if a.MetricValue > b.MetricValue {
				return -1
			}
			return 1
		case a.ID != b.ID:
			if a.ID < b.ID {
				return -1
			}
			return 1
		}
		return 0
	})
}
