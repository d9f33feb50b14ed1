// file: internal/achievements/synchronizer.go
package achievements

import (
	"context"
	"sync"
	"time"

	"taskhive/internal/cache"
	"taskhive/internal/events"
	"taskhive/internal/models"
	"taskhive/internal/repositories"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ===============================
// SYNC REPORT
// ===============================

// CategoryFailure records an aggregator that could not read its source
// data. The category simply contributes no candidates for the run.
type CategoryFailure struct {
	Category models.AchievementCategory `json:"category"`
	Error    string                     `json:"error"`
}

// WriteFailure records a candidate whose persistence attempt failed. The
// remaining candidates are unaffected.
type WriteFailure struct {
	Key   models.AchievementKey `json:"key"`
	Error string                `json:"error"`
}

// SyncReport summarizes one reconciliation run. A run with failures is
// partial, not fatal: every record it did write is valid, and a retry will
// pick up whatever was missed.
type SyncReport struct {
	UserID     int64     `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Candidates int `json:"candidates"`
	Created    int `json:"created"`
	LeveledUp  int `json:"leveled_up"`
	Advanced   int `json:"advanced"`
	Unchanged  int `json:"unchanged"`

	CategoryFailures []CategoryFailure `json:"category_failures,omitempty"`
	WriteFailures    []WriteFailure    `json:"write_failures,omitempty"`
}

// Partial reports whether any part of the run failed.
func (r *SyncReport) Partial() bool {
	return len(r.CategoryFailures) > 0 || len(r.WriteFailures) > 0
}

// Writes returns the number of records the run actually wrote.
func (r *SyncReport) Writes() int {
	return r.Created + r.LeveledUp + r.Advanced
}

// ===============================
// SYNCHRONIZER
// ===============================

// Config tunes a Synchronizer.
type Config struct {
	// MaxConcurrentAggregators bounds the aggregator fan-out.
	MaxConcurrentAggregators int
	// WriteRetryLimit bounds retries of an individual candidate write.
	WriteRetryLimit uint64
	// WriteRetryInterval is the initial backoff between write retries.
	WriteRetryInterval time.Duration
}

// DefaultConfig returns the default synchronizer configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentAggregators: 4,
		WriteRetryLimit:          3,
		WriteRetryInterval:       50 * time.Millisecond,
	}
}

// Synchronizer reconciles aggregator output against persisted records. It
// holds no per-run state; one instance serves any number of users.
type Synchronizer struct {
	aggregators []Aggregator
	repo        repositories.AchievementRepository
	bus         events.EventBus
	cache       cache.Cache
	logger      *zap.Logger
	cfg         Config
	now         func() time.Time
}

// NewSynchronizer creates a new badge synchronizer.
func NewSynchronizer(
	aggregators []Aggregator,
	repo repositories.AchievementRepository,
	bus events.EventBus,
	c cache.Cache,
	cfg Config,
	logger *zap.Logger,
) *Synchronizer {
	if cfg.MaxConcurrentAggregators <= 0 {
		cfg.MaxConcurrentAggregators = DefaultConfig().MaxConcurrentAggregators
	}
	if cfg.WriteRetryInterval <= 0 {
		cfg.WriteRetryInterval = DefaultConfig().WriteRetryInterval
	}
	return &Synchronizer{
		aggregators: aggregators,
		repo:        repo,
		bus:         bus,
		cache:       c,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Sync runs one reconciliation pass for a user: fan out the aggregators,
// merge their candidates, and apply monotonic upgrades against the
// persisted records. Running it twice with unchanged source data performs
// zero writes on the second pass.
func (s *Synchronizer) Sync(ctx context.Context, userID int64) (*SyncReport, error) {
	report := &SyncReport{UserID: userID, StartedAt: s.now()}

	candidates := s.collectCandidates(ctx, userID, report)
	report.Candidates = len(candidates)

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[models.AchievementKey]*models.AchievementRecord, len(existing))
	for _, rec := range existing {
		byKey[rec.Key()] = rec
	}

	for _, candidate := range candidates {
		s.applyCandidate(ctx, userID, candidate, byKey, report)
	}

	if report.Writes() > 0 {
		invalidateUser(ctx, s.cache, userID)
	}

	report.FinishedAt = s.now()
	s.logger.Info("Achievement sync finished",
		zap.Int64("user_id", userID),
		zap.Int("candidates", report.Candidates),
		zap.Int("created", report.Created),
		zap.Int("leveled_up", report.LeveledUp),
		zap.Int("advanced", report.Advanced),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("category_failures", len(report.CategoryFailures)),
		zap.Int("write_failures", len(report.WriteFailures)),
	)
	return report, nil
}

// collectCandidates fans the aggregators out with bounded concurrency. An
// aggregator failure is recorded and starves only its own category.
func (s *Synchronizer) collectCandidates(ctx context.Context, userID int64, report *SyncReport) []Candidate {
	var (
		mu         sync.Mutex
		candidates []Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentAggregators)

	for _, agg := range s.aggregators {
		agg := agg
		g.Go(func() error {
			produced, err := agg.Aggregate(gctx, userID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("Aggregator failed, category skipped this run",
					zap.Int64("user_id", userID),
					zap.String("category", string(agg.Category())),
					zap.Error(err),
				)
				report.CategoryFailures = append(report.CategoryFailures, CategoryFailure{
					Category: agg.Category(),
					Error:    err.Error(),
				})
				// Partial failure only; never abort the sibling aggregators.
				return nil
			}
			candidates = append(candidates, produced...)
			return nil
		})
	}
	// Every goroutine returns nil; failures travel through the report.
	_ = g.Wait()

	return candidates
}

// applyCandidate reconciles one candidate against the persisted state. Each
// write is independently attempted and independently reported.
func (s *Synchronizer) applyCandidate(
	ctx context.Context,
	userID int64,
	candidate Candidate,
	byKey map[models.AchievementKey]*models.AchievementRecord,
	report *SyncReport,
) {
	level := LevelForMetric(candidate.Metric)
	if level == 0 {
		return
	}

	key := models.AchievementKey{UserID: userID, Category: candidate.Category, EntityID: candidate.EntityKey()}
	rec := &models.AchievementRecord{
		UserID:      userID,
		Category:    candidate.Category,
		EntityID:    key.EntityID,
		Level:       level,
		MetricValue: candidate.Metric,
		EarnedAt:    s.now(),
	}
	if candidate.Entity != nil {
		name := candidate.Entity.Name
		rec.EntityName = &name
	}

	existing := byKey[key]
	if existing != nil && level <= existing.Level && candidate.Metric <= existing.MetricValue {
		report.Unchanged++
		return
	}

	outcome, err := s.writeWithRetry(ctx, rec, existing)
	if err != nil {
		s.logger.Error("Failed to persist achievement candidate",
			zap.Int64("user_id", userID),
			zap.String("key", key.String()),
			zap.Error(err),
		)
		report.WriteFailures = append(report.WriteFailures, WriteFailure{
			Key:   key,
			Error: err.Error(),
		})
		return
	}

	switch {
	case outcome.created:
		report.Created++
		s.publish(ctx, events.NewAchievementUnlockedEvent(userID, string(rec.Category), rec.EntityID, rec.Level, rec.MetricValue))
	case outcome.leveledUp:
		report.LeveledUp++
		s.publish(ctx, events.NewAchievementLevelUpEvent(userID, string(rec.Category), rec.EntityID, rec.Level, rec.MetricValue))
	case outcome.advanced:
		report.Advanced++
	default:
		report.Unchanged++
	}
}

type writeOutcome struct {
	created   bool
	leveledUp bool
	advanced  bool
}

// writeWithRetry applies one candidate write, retrying transient failures
// and insert races with exponential backoff. A lost insert race degrades
// into a guarded upgrade against the row the winner created.
func (s *Synchronizer) writeWithRetry(ctx context.Context, rec *models.AchievementRecord, existing *models.AchievementRecord) (writeOutcome, error) {
	var outcome writeOutcome

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newWriteBackOff(s.cfg.WriteRetryInterval), s.cfg.WriteRetryLimit),
		ctx,
	)

	op := func() error {
		if existing == nil {
			created, err := s.repo.Insert(ctx, rec)
			if err != nil {
				return err
			}
			if created {
				outcome = writeOutcome{created: true}
				return nil
			}
			// Lost the insert race; a concurrent sync owns the row now.
			// Fall through to a guarded upgrade.
		}

		changed, err := s.repo.Upgrade(ctx, rec)
		if err != nil {
			return err
		}
		if !changed {
			// The stored row already meets or exceeds the candidate.
			outcome = writeOutcome{}
			return nil
		}
		if existing != nil && rec.Level > existing.Level {
			outcome = writeOutcome{leveledUp: true}
		} else {
			// Metric-only advance, or a lost insert race where the
			// winner's row sat below our candidate.
			outcome = writeOutcome{advanced: true}
		}
		return nil
	}

	err := backoff.Retry(op, policy)
	return outcome, err
}

func newWriteBackOff(initial time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = time.Second
	return b
}

func (s *Synchronizer) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish achievement event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
