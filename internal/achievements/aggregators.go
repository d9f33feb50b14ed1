// file: internal/achievements/aggregators.go
package achievements

import (
	"context"
	"taskhive/internal/models"
	"taskhive/internal/repositories"

	"golang.org/x/exp/slices"
)

// Candidate is one (category, entity, metric) produced by an aggregator for
// a user. Entity is nil for globally scoped categories.
type Candidate struct {
	Category models.AchievementCategory `json:"category"`
	Entity   *models.EntityRef          `json:"entity,omitempty"`
	Metric   int64                      `json:"metric"`
}

// EntityKey returns the entity id used for reconciliation, with the global
// sentinel for unscoped candidates.
func (c Candidate) EntityKey() int64 {
	if c.Entity == nil {
		return models.GlobalEntityID
	}
	return c.Entity.ID
}

// Aggregator reduces one category's activity stream to badge candidates.
// Aggregators are read-only and mutually independent; the synchronizer runs
// them concurrently and tolerates individual failures.
type Aggregator interface {
	Category() models.AchievementCategory
	Aggregate(ctx context.Context, userID int64) ([]Candidate, error)
}

// NewAggregators returns the full set of nine aggregators backed by the
// given activity repository, in canonical category order.
func NewAggregators(activity repositories.ActivityRepository) []Aggregator {
	return []Aggregator{
		&teammatesAggregator{activity: activity},
		&tagAggregator{activity: activity, category: models.CategoryHabits, tagCategory: models.TagCategorySkill},
		&tagAggregator{activity: activity, category: models.CategoryCommunities, tagCategory: models.TagCategoryCommunity},
		&leadershipAggregator{activity: activity},
		&collaborationAggregator{activity: activity},
		&positiveImpactAggregator{activity: activity},
		&sociabilityAggregator{activity: activity},
		&reliabilityAggregator{activity: activity},
		&consistencyAggregator{activity: activity},
	}
}

// dropBelowFloor removes candidates whose metric does not reach the level-1
// threshold. Below-threshold activity must never reach the synchronizer, so
// no record is created for it.
func dropBelowFloor(candidates []Candidate) []Candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if LevelForMetric(c.Metric) > 0 {
			kept = append(kept, c)
		}
	}
	return kept
}

// sortByEntity orders entity-scoped candidates deterministically for stable
// logs and tests. Metric ties between entities are not otherwise ordered.
func sortByEntity(candidates []Candidate) []Candidate {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.EntityKey() < b.EntityKey():
			return -1
		case a.EntityKey() > b.EntityKey():
			return 1
		}
		return 0
	})
	return candidates
}

// ===============================
// TEAMMATES
// ===============================

// teammatesAggregator counts shared completed tasks per co-participant.
type teammatesAggregator struct {
	activity repositories.ActivityRepository
}

func (a *teammatesAggregator) Category() models.AchievementCategory {
	return models.CategoryTeammates
}

func (a *teammatesAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	shares, err := a.activity.SharedCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceTeammates(shares), nil
}

// ReduceTeammates reduces shared completions to one candidate per teammate,
// with the count of shared completed tasks as the metric.
func ReduceTeammates(shares []models.SharedCompletion) []Candidate {
	type teammate struct {
		name  string
		count int64
	}
	byID := make(map[int64]*teammate)
	for _, s := range shares {
		t, ok := byID[s.TeammateID]
		if !ok {
			t = &teammate{name: s.TeammateName}
			byID[s.TeammateID] = t
		}
		t.count++
	}

	candidates := make([]Candidate, 0, len(byID))
	for id, t := range byID {
		candidates = append(candidates, Candidate{
			Category: models.CategoryTeammates,
			Entity:   &models.EntityRef{ID: id, Name: t.name},
			Metric:   t.count,
		})
	}
	return sortByEntity(dropBelowFloor(candidates))
}

// ===============================
// HABITS / COMMUNITIES
// ===============================

// tagAggregator counts tagged completions per tag; it serves both the
// habits (skill tags) and communities (community tags) categories.
type tagAggregator struct {
	activity    repositories.ActivityRepository
	category    models.AchievementCategory
	tagCategory models.TagCategory
}

func (a *tagAggregator) Category() models.AchievementCategory {
	return a.category
}

func (a *tagAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	completions, err := a.activity.TaggedCompletions(ctx, userID, a.tagCategory)
	if err != nil {
		return nil, err
	}
	return ReduceTagged(a.category, completions), nil
}

// ReduceTagged reduces tagged completions to one candidate per tag, with
// the count of completions carrying that tag as the metric.
func ReduceTagged(category models.AchievementCategory, completions []models.TaggedCompletion) []Candidate {
	type tag struct {
		name  string
		count int64
	}
	byID := make(map[int64]*tag)
	for _, c := range completions {
		t, ok := byID[c.TagID]
		if !ok {
			t = &tag{name: c.TagName}
			byID[c.TagID] = t
		}
		t.count++
	}

	candidates := make([]Candidate, 0, len(byID))
	for id, t := range byID {
		candidates = append(candidates, Candidate{
			Category: category,
			Entity:   &models.EntityRef{ID: id, Name: t.name},
			Metric:   t.count,
		})
	}
	return sortByEntity(dropBelowFloor(candidates))
}

// ===============================
// LEADERSHIP
// ===============================

// leadershipAggregator takes the maximum number of approved participants
// across any single task the user created.
type leadershipAggregator struct {
	activity repositories.ActivityRepository
}

func (a *leadershipAggregator) Category() models.AchievementCategory {
	return models.CategoryLeadership
}

func (a *leadershipAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	tasks, err := a.activity.CreatedTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceLeadership(tasks), nil
}

// ReduceLeadership reduces created tasks to at most one global candidate:
// the largest approved-participant count on any single task.
func ReduceLeadership(tasks []models.CreatedTask) []Candidate {
	var max int64
	for _, t := range tasks {
		if t.ApprovedParticipants > max {
			max = t.ApprovedParticipants
		}
	}
	return dropBelowFloor([]Candidate{{
		Category: models.CategoryLeadership,
		Metric:   max,
	}})
}

// ===============================
// COLLABORATION
// ===============================

// collaborationAggregator counts completed tasks the user joined as an
// approved collaborator.
type collaborationAggregator struct {
	activity repositories.ActivityRepository
}

func (a *collaborationAggregator) Category() models.AchievementCategory {
	return models.CategoryCollaboration
}

func (a *collaborationAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	completions, err := a.activity.CollaboratorCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceCollaboration(completions), nil
}

// ReduceCollaboration reduces collaborator completions to a single global
// count candidate.
func ReduceCollaboration(completions []models.CollaboratorCompletion) []Candidate {
	return dropBelowFloor([]Candidate{{
		Category: models.CategoryCollaboration,
		Metric:   int64(len(completions)),
	}})
}

// ===============================
// POSITIVE IMPACT
// ===============================

// positiveImpactAggregator takes the maximum like count reached by any
// single completed task the user created. The winning task's first tag
// scopes the badge; between tied tasks any winner may supply it.
type positiveImpactAggregator struct {
	activity repositories.ActivityRepository
}

func (a *positiveImpactAggregator) Category() models.AchievementCategory {
	return models.CategoryPositiveImpact
}

func (a *positiveImpactAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	tasks, err := a.activity.CreatedTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReducePositiveImpact(tasks), nil
}

// ReducePositiveImpact reduces the user's completed created tasks to at
// most one candidate carrying the highest like count.
func ReducePositiveImpact(tasks []models.CreatedTask) []Candidate {
	var best *models.CreatedTask
	for i := range tasks {
		t := &tasks[i]
		if !t.Completed {
			continue
		}
		if best == nil || t.LikesCount > best.LikesCount {
			best = t
		}
	}
	if best == nil {
		return nil
	}

	candidate := Candidate{
		Category: models.CategoryPositiveImpact,
		Metric:   best.LikesCount,
	}
	if best.FirstTagID != nil {
		name := ""
		if best.FirstTagName != nil {
			name = *best.FirstTagName
		}
		candidate.Entity = &models.EntityRef{ID: *best.FirstTagID, Name: name}
	}
	return dropBelowFloor([]Candidate{candidate})
}

// ===============================
// SOCIABILITY
// ===============================

// sociabilityAggregator counts follow relationships targeting the user.
type sociabilityAggregator struct {
	activity repositories.ActivityRepository
}

func (a *sociabilityAggregator) Category() models.AchievementCategory {
	return models.CategorySociability
}

func (a *sociabilityAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	follows, err := a.activity.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceSociability(follows), nil
}

// ReduceSociability reduces the follower list to a single global count
// candidate.
func ReduceSociability(follows []models.Follow) []Candidate {
	return dropBelowFloor([]Candidate{{
		Category: models.CategorySociability,
		Metric:   int64(len(follows)),
	}})
}

// ===============================
// RELIABILITY
// ===============================

// reliabilityAggregator takes the longest run of consecutive maximum-value
// ratings received by the user.
type reliabilityAggregator struct {
	activity repositories.ActivityRepository
}

func (a *reliabilityAggregator) Category() models.AchievementCategory {
	return models.CategoryReliability
}

func (a *reliabilityAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	ratings, err := a.activity.Ratings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceReliability(ratings), nil
}

// ReduceReliability reduces a chronological rating stream to a single
// global candidate: the longest unbroken run of maximum-value ratings.
func ReduceReliability(ratings []models.Rating) []Candidate {
	var longest, current int64
	for _, rt := range ratings {
		if rt.IsMax() {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return dropBelowFloor([]Candidate{{
		Category: models.CategoryReliability,
		Metric:   longest,
	}})
}

// ===============================
// CONSISTENCY
// ===============================

// consistencyAggregator takes the maximum streak counter across the user's
// repeating tasks. The winning task's first tag scopes the badge; between
// tied tasks any winner may supply it.
type consistencyAggregator struct {
	activity repositories.ActivityRepository
}

func (a *consistencyAggregator) Category() models.AchievementCategory {
	return models.CategoryConsistency
}

func (a *consistencyAggregator) Aggregate(ctx context.Context, userID int64) ([]Candidate, error) {
	tasks, err := a.activity.RepeatingTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ReduceConsistency(tasks), nil
}

// ReduceConsistency reduces the user's repeating tasks to at most one
// candidate carrying the highest streak counter.
func ReduceConsistency(tasks []models.RepeatingTask) []Candidate {
	var best *models.RepeatingTask
	for i := range tasks {
		t := &tasks[i]
		if best == nil || t.Streak > best.Streak {
			best = t
		}
	}
	if best == nil {
		return nil
	}

	candidate := Candidate{
		Category: models.CategoryConsistency,
		Metric:   best.Streak,
	}
	if best.FirstTagID != nil {
		name := ""
		if best.FirstTagName != nil {
			name = *best.FirstTagName
		}
		candidate.Entity = &models.EntityRef{ID: *best.FirstTagID, Name: name}
	}
	return dropBelowFloor([]Candidate{candidate})
}
