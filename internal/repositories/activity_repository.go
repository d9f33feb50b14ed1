// file: internal/repositories/activity_repository.go
package repositories

import (
	"context"
	"fmt"
	"taskhive/internal/database"
	"taskhive/internal/models"

	"go.uber.org/zap"
)

// activityRepository implements ActivityRepository with flat, denormalized
// queries. Everything here is read-only; the achievement engine never
// writes to the activity tables.
type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a new activity snapshot repository.
func NewActivityRepository(db *database.Manager, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// SharedCompletions returns one row per (completed task, approved
// co-participant) pair for the user. Pending and rejected collaborations on
// either side never count.
func (r *activityRepository) SharedCompletions(ctx context.Context, userID int64) ([]models.SharedCompletion, error) {
	query := `
		SELECT t.id, p.id, p.display_name
		FROM tasks t
		JOIN collaborations mine
			ON mine.task_id = t.id AND mine.user_id = $1 AND mine.status = 'approved'
		JOIN collaborations theirs
			ON theirs.task_id = t.id AND theirs.user_id <> $1 AND theirs.status = 'approved'
		JOIN profiles p ON p.id = theirs.user_id
		WHERE t.status = 'completed'
		ORDER BY t.id, p.id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared completions: %w", err)
	}
	defer rows.Close()

	var shares []models.SharedCompletion
	for rows.Next() {
		var s models.SharedCompletion
		if err := rows.Scan(&s.TaskID, &s.TeammateID, &s.TeammateName); err != nil {
			return nil, fmt.Errorf("failed to scan shared completion: %w", err)
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

// TaggedCompletions returns one row per (completed task the user approved
// into, tag of the given category).
func (r *activityRepository) TaggedCompletions(ctx context.Context, userID int64, category models.TagCategory) ([]models.TaggedCompletion, error) {
	query := `
		SELECT t.id, tg.id, tg.name
		FROM tasks t
		JOIN collaborations c
			ON c.task_id = t.id AND c.user_id = $1 AND c.status = 'approved'
		JOIN task_tags tt ON tt.task_id = t.id
		JOIN tags tg ON tg.id = tt.tag_id AND tg.category = $2
		WHERE t.status = 'completed'
		ORDER BY t.id, tg.id`

	rows, err := r.QueryContext(ctx, query, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query tagged completions: %w", err)
	}
	defer rows.Close()

	var completions []models.TaggedCompletion
	for rows.Next() {
		var c models.TaggedCompletion
		if err := rows.Scan(&c.TaskID, &c.TagID, &c.TagName); err != nil {
			return nil, fmt.Errorf("failed to scan tagged completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// CreatedTasks returns the user's own tasks with the counters the
// leadership and positive-impact metrics reduce over, plus each task's
// first attached tag.
func (r *activityRepository) CreatedTasks(ctx context.Context, userID int64) ([]models.CreatedTask, error) {
	query := `
		SELECT
			t.id,
			t.status = 'completed' AS completed,
			t.likes_count,
			(SELECT COUNT(*) FROM collaborations c
				WHERE c.task_id = t.id AND c.status = 'approved') AS approved_participants,
			ft.tag_id, ft.tag_name
		FROM tasks t
		LEFT JOIN LATERAL (
			SELECT tg.id AS tag_id, tg.name AS tag_name
			FROM task_tags tt
			JOIN tags tg ON tg.id = tt.tag_id
			WHERE tt.task_id = t.id
			ORDER BY tt.position, tg.id
			LIMIT 1
		) ft ON TRUE
		WHERE t.creator_id = $1
		ORDER BY t.id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query created tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.CreatedTask
	for rows.Next() {
		var t models.CreatedTask
		if err := rows.Scan(
			&t.TaskID, &t.Completed, &t.LikesCount,
			&t.ApprovedParticipants, &t.FirstTagID, &t.FirstTagName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan created task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CollaboratorCompletions returns completed tasks the user joined as an
// approved collaborator without owning them.
func (r *activityRepository) CollaboratorCompletions(ctx context.Context, userID int64) ([]models.CollaboratorCompletion, error) {
	query := `
		SELECT t.id
		FROM tasks t
		JOIN collaborations c
			ON c.task_id = t.id AND c.user_id = $1
			AND c.status = 'approved' AND c.role = 'collaborator'
		WHERE t.status = 'completed' AND t.creator_id <> $1
		ORDER BY t.id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collaborator completions: %w", err)
	}
	defer rows.Close()

	var completions []models.CollaboratorCompletion
	for rows.Next() {
		var c models.CollaboratorCompletion
		if err := rows.Scan(&c.TaskID); err != nil {
			return nil, fmt.Errorf("failed to scan collaborator completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// Followers returns the follow relationships targeting the user.
func (r *activityRepository) Followers(ctx context.Context, userID int64) ([]models.Follow, error) {
	query := `
		SELECT follower_id, created_at
		FROM follows
		WHERE followee_id = $1
		ORDER BY created_at, follower_id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query followers: %w", err)
	}
	defer rows.Close()

	var follows []models.Follow
	for rows.Next() {
		var f models.Follow
		if err := rows.Scan(&f.FollowerID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}

// Ratings returns the ratings received by the user in chronological order,
// which the reliability streak reduction depends on.
func (r *activityRepository) Ratings(ctx context.Context, userID int64) ([]models.Rating, error) {
	query := `
		SELECT value, created_at
		FROM ratings
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.Value, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// RepeatingTasks returns the user's repeating tasks with streak counters
// and each task's first attached tag.
func (r *activityRepository) RepeatingTasks(ctx context.Context, userID int64) ([]models.RepeatingTask, error) {
	query := `
		SELECT t.id, t.streak_count, ft.tag_id, ft.tag_name
		FROM tasks t
		LEFT JOIN LATERAL (
			SELECT tg.id AS tag_id, tg.name AS tag_name
			FROM task_tags tt
			JOIN tags tg ON tg.id = tt.tag_id
			WHERE tt.task_id = t.id
			ORDER BY tt.position, tg.id
			LIMIT 1
		) ft ON TRUE
		WHERE t.creator_id = $1 AND t.is_repeating = TRUE
		ORDER BY t.id`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repeating tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.RepeatingTask
	for rows.Next() {
		var t models.RepeatingTask
		if err := rows.Scan(&t.TaskID, &t.Streak, &t.FirstTagID, &t.FirstTagName); err != nil {
			return nil, fmt.Errorf("failed to scan repeating task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetProfile returns the minimal profile projection for a user.
func (r *activityRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT id, display_name, created_at FROM profiles WHERE id = $1`

	var p models.Profile
	err := r.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
