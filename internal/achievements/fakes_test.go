package achievements

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"taskhive/internal/models"
)

// fakeAchievementRepo is an in-memory AchievementRepository that mirrors
// the conditional-write semantics of the Postgres implementation.
type fakeAchievementRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[models.AchievementKey]*models.AchievementRecord

	insertErr  error
	upgradeErr error
	// insertErrCategory scopes insertErr to one category; empty fails all.
	insertErrCategory models.AchievementCategory
	// loseInsertRace makes the next Insert report a lost race after a
	// phantom concurrent writer creates a level-1 row for the key.
	loseInsertRace bool
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{
		nextID:  1,
		records: make(map[models.AchievementKey]*models.AchievementRecord),
	}
}

func (f *fakeAchievementRepo) seed(rec *models.AchievementRecord) *models.AchievementRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == 0 {
		rec.ID = f.nextID
		f.nextID++
	} else if rec.ID >= f.nextID {
		f.nextID = rec.ID + 1
	}
	clone := *rec
	f.records[rec.Key()] = &clone
	return rec
}

func (f *fakeAchievementRepo) GetByID(ctx context.Context, id int64) (*models.AchievementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeAchievementRepo) GetByKey(ctx context.Context, key models.AchievementKey) (*models.AchievementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[key]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeAchievementRepo) ListByUser(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AchievementRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) ListUnnotified(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AchievementRecord
	for _, rec := range f.records {
		if rec.UserID == userID && !rec.Notified {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) Insert(ctx context.Context, rec *models.AchievementRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil && (f.insertErrCategory == "" || f.insertErrCategory == rec.Category) {
		return false, f.insertErr
	}
	if f.loseInsertRace {
		f.loseInsertRace = false
		race := *rec
		race.ID = f.nextID
		f.nextID++
		race.Level = 1
		race.MetricValue = ThresholdForLevel(1)
		race.Notified = false
		f.records[rec.Key()] = &race
		return false, nil
	}
	if _, exists := f.records[rec.Key()]; exists {
		return false, nil
	}
	rec.ID = f.nextID
	f.nextID++
	rec.Notified = false
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	clone := *rec
	f.records[rec.Key()] = &clone
	return true, nil
}

func (f *fakeAchievementRepo) Upgrade(ctx context.Context, rec *models.AchievementRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upgradeErr != nil {
		return false, f.upgradeErr
	}
	current, ok := f.records[rec.Key()]
	if !ok {
		return false, nil
	}
	if current.Level >= rec.Level && current.MetricValue >= rec.MetricValue {
		return false, nil
	}
	current.EntityName = rec.EntityName
	if rec.Level > current.Level {
		current.EarnedAt = rec.EarnedAt
		current.Notified = false
		current.Level = rec.Level
	}
	if rec.MetricValue > current.MetricValue {
		current.MetricValue = rec.MetricValue
	}
	current.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeAchievementRepo) MarkNotified(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			rec.Notified = true
			rec.UpdatedAt = time.Now()
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeAchievementRepo) get(key models.AchievementKey) *models.AchievementRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[key]
}

// stubAggregator returns canned candidates or a canned error.
type stubAggregator struct {
	category   models.AchievementCategory
	candidates []Candidate
	err        error
}

func (s *stubAggregator) Category() models.AchievementCategory { return s.category }

func (s *stubAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

var errSourceDown = errors.New("activity source unavailable")
