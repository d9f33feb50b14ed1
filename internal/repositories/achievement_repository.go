// file: internal/repositories/achievement_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"taskhive/internal/database"
	"taskhive/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// achievementRepository implements AchievementRepository on Postgres.
type achievementRepository struct {
	*BaseRepository
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *database.Manager, logger *zap.Logger) AchievementRepository {
	return &achievementRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const achievementColumns = `
	id, user_id, category, entity_id, entity_name,
	level, metric_value, earned_at, notified, created_at, updated_at`

func (r *achievementRepository) scanRecord(row interface {
	Scan(dest ...interface{}) error
}) (*models.AchievementRecord, error) {
	var rec models.AchievementRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Category, &rec.EntityID, &rec.EntityName,
		&rec.Level, &rec.MetricValue, &rec.EarnedAt, &rec.Notified,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID retrieves a single record by primary key.
func (r *achievementRepository) GetByID(ctx context.Context, id int64) (*models.AchievementRecord, error) {
	query := `SELECT` + achievementColumns + ` FROM achievements WHERE id = $1`

	rec, err := r.scanRecord(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get achievement by id: %w", err)
	}
	return rec, nil
}

// GetByKey retrieves a record by its (user, category, entity) key.
func (r *achievementRepository) GetByKey(ctx context.Context, key models.AchievementKey) (*models.AchievementRecord, error) {
	query := `SELECT` + achievementColumns + `
		FROM achievements
		WHERE user_id = $1 AND category = $2 AND entity_id = $3`

	rec, err := r.scanRecord(r.QueryRowContext(ctx, query, key.UserID, key.Category, key.EntityID))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get achievement by key: %w", err)
	}
	return rec, nil
}

// ListByUser returns all of a user's records, highest first.
func (r *achievementRepository) ListByUser(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	query := `SELECT` + achievementColumns + `
		FROM achievements
		WHERE user_id = $1
		ORDER BY level DESC, metric_value DESC, id ASC`

	return r.queryRecords(ctx, query, userID)
}

// ListUnnotified returns the user's records still pending announcement.
func (r *achievementRepository) ListUnnotified(ctx context.Context, userID int64) ([]*models.AchievementRecord, error) {
	query := `SELECT` + achievementColumns + `
		FROM achievements
		WHERE user_id = $1 AND notified = FALSE
		ORDER BY earned_at DESC, id ASC`

	return r.queryRecords(ctx, query, userID)
}

func (r *achievementRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]*models.AchievementRecord, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var records []*models.AchievementRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievement rows: %w", err)
	}
	return records, nil
}

// Insert creates a record for a key that has no record yet. A concurrent
// insert of the same key is not an error; it reports false so the caller
// can retry the write as an upgrade.
func (r *achievementRepository) Insert(ctx context.Context, rec *models.AchievementRecord) (bool, error) {
	query := `
		INSERT INTO achievements (
			user_id, category, entity_id, entity_name,
			level, metric_value, earned_at, notified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		ON CONFLICT (user_id, category, entity_id) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		rec.UserID, rec.Category, rec.EntityID, rec.EntityName,
		rec.Level, rec.MetricValue, rec.EarnedAt,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if r.IsNotFound(err) {
			// ON CONFLICT DO NOTHING returns no row when the key exists.
			return false, nil
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert achievement: %w", err)
	}

	rec.Notified = false
	r.GetLogger().Info("Achievement record created",
		zap.Int64("user_id", rec.UserID),
		zap.String("category", string(rec.Category)),
		zap.Int64("entity_id", rec.EntityID),
		zap.Int("level", rec.Level),
	)
	return true, nil
}

// Upgrade advances an existing record. The WHERE guard re-checks the
// monotonic invariant against the current row, so a concurrent writer that
// already advanced further simply turns this into a no-op. earned_at and
// notified change only when the stored level actually increases.
func (r *achievementRepository) Upgrade(ctx context.Context, rec *models.AchievementRecord) (bool, error) {
	query := `
		UPDATE achievements SET
			entity_name  = $4,
			earned_at    = CASE WHEN $5 > level THEN $7 ELSE earned_at END,
			notified     = CASE WHEN $5 > level THEN FALSE ELSE notified END,
			level        = GREATEST(level, $5),
			metric_value = GREATEST(metric_value, $6),
			updated_at   = NOW()
		WHERE user_id = $1 AND category = $2 AND entity_id = $3
			AND (level < $5 OR metric_value < $6)`

	result, err := r.ExecContext(
		ctx, query,
		rec.UserID, rec.Category, rec.EntityID, rec.EntityName,
		rec.Level, rec.MetricValue, rec.EarnedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upgrade achievement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upgrade result: %w", err)
	}
	return affected > 0, nil
}

// MarkNotified acknowledges a record's announcement. Marking an already
// acknowledged record is a no-op; an unknown id is reported via
// sql.ErrNoRows so the service layer can translate it.
func (r *achievementRepository) MarkNotified(ctx context.Context, id int64) error {
	query := `UPDATE achievements SET notified = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark achievement notified: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read acknowledge result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
