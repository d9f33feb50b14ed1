// file: internal/services/achievement_service_test.go
package services

import (
	"context"
	"net/http"
	"testing"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The validation layer rejects malformed requests before the engine is
// touched, so a service with nil engine components is enough here.
func newValidationOnlyService(t *testing.T) AchievementService {
	t.Helper()
	return NewAchievementService(nil, nil, nil, nil, "en", zap.NewNop())
}

// emptyActivityRepo knows no users and has no activity.
type emptyActivityRepo struct{}

func (emptyActivityRepo) SharedCompletions(ctx context.Context, userID int64) ([]models.SharedCompletion, error) {
	return nil, nil
}

func (emptyActivityRepo) TaggedCompletions(ctx context.Context, userID int64, category models.TagCategory) ([]models.TaggedCompletion, error) {
	return nil, nil
}

func (emptyActivityRepo) CreatedTasks(ctx context.Context, userID int64) ([]models.CreatedTask, error) {
	return nil, nil
}

func (emptyActivityRepo) CollaboratorCompletions(ctx context.Context, userID int64) ([]models.CollaboratorCompletion, error) {
	return nil, nil
}

func (emptyActivityRepo) Followers(ctx context.Context, userID int64) ([]models.Follow, error) {
	return nil, nil
}

func (emptyActivityRepo) Ratings(ctx context.Context, userID int64) ([]models.Rating, error) {
	return nil, nil
}

func (emptyActivityRepo) RepeatingTasks(ctx context.Context, userID int64) ([]models.RepeatingTask, error) {
	return nil, nil
}

func (emptyActivityRepo) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	return nil, nil
}

func TestSyncUserUnknownUser(t *testing.T) {
	svc := NewAchievementService(nil, nil, nil, emptyActivityRepo{}, "en", zap.NewNop())

	_, err := svc.SyncUser(context.Background(), &SyncUserRequest{UserID: 123})
	require.Error(t, err)

	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.GetStatusCode())
}

func TestSyncUserRejectsInvalidUserID(t *testing.T) {
	svc := newValidationOnlyService(t)

	_, err := svc.SyncUser(context.Background(), &SyncUserRequest{UserID: 0})
	require.Error(t, err)

	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", se.Type)
	assert.Equal(t, http.StatusBadRequest, se.GetStatusCode())
}

func TestGetTopBadgesRejectsInvalidRequests(t *testing.T) {
	svc := newValidationOnlyService(t)

	tests := []struct {
		name string
		req  *GetBadgesRequest
	}{
		{"zero user id", &GetBadgesRequest{UserID: 0, Limit: 3}},
		{"negative user id", &GetBadgesRequest{UserID: -4, Limit: 3}},
		{"negative limit", &GetBadgesRequest{UserID: 1, Limit: -1}},
		{"oversized limit", &GetBadgesRequest{UserID: 1, Limit: 500}},
		{"malformed locale", &GetBadgesRequest{UserID: 1, Locale: "not a locale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetTopBadges(context.Background(), tt.req)
			require.Error(t, err)

			se, ok := IsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", se.Type)
		})
	}
}

func TestAcknowledgeBadgeRejectsInvalidID(t *testing.T) {
	svc := newValidationOnlyService(t)

	err := svc.AcknowledgeBadge(context.Background(), 0)
	require.Error(t, err)

	se, ok := IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, se.GetStatusCode())
}
