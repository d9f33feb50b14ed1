// file: internal/models/models.go
package models

import "time"

// ===============================
// ACTIVITY SNAPSHOT MODELS
// ===============================
//
// Flat, denormalized rows produced by the read-only activity queries. The
// achievement aggregators reduce these locally instead of walking a shared
// object graph, so there are no cross-references between entities here.

// TaskStatus enumerates the lifecycle states of a task.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// ApprovalStatus enumerates the approval states of a collaboration.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// CollaborationRole distinguishes collaborators from requesters on a task.
type CollaborationRole string

const (
	RoleCollaborator CollaborationRole = "collaborator"
	RoleRequester    CollaborationRole = "requester"
)

// TagCategory distinguishes skill tags from community tags.
type TagCategory string

const (
	TagCategorySkill     TagCategory = "skill"
	TagCategoryCommunity TagCategory = "community"
)

// MaxRatingValue is the highest value a rating can carry. A "perfect run"
// for the reliability metric is a streak of ratings at exactly this value.
const MaxRatingValue = 5

// SharedCompletion is one (completed task, approved co-participant) pair for
// a user. The same teammate appears once per shared completed task.
type SharedCompletion struct {
	TaskID       int64  `json:"task_id" db:"task_id"`
	TeammateID   int64  `json:"teammate_id" db:"teammate_id"`
	TeammateName string `json:"teammate_name" db:"teammate_name"`
}

// TaggedCompletion is one (completed task, tag) pair for a task the user
// participated in as an approved participant.
type TaggedCompletion struct {
	TaskID  int64  `json:"task_id" db:"task_id"`
	TagID   int64  `json:"tag_id" db:"tag_id"`
	TagName string `json:"tag_name" db:"tag_name"`
}

// CreatedTask is a task owned by the user, with the counters the leadership
// and positive-impact metrics reduce over. FirstTag* carry the task's first
// attached tag, if any.
type CreatedTask struct {
	TaskID               int64   `json:"task_id" db:"task_id"`
	Completed            bool    `json:"completed" db:"completed"`
	LikesCount           int64   `json:"likes_count" db:"likes_count"`
	ApprovedParticipants int64   `json:"approved_participants" db:"approved_participants"`
	FirstTagID           *int64  `json:"first_tag_id,omitempty" db:"first_tag_id"`
	FirstTagName         *string `json:"first_tag_name,omitempty" db:"first_tag_name"`
}

// CollaboratorCompletion is a completed task where the user took part as an
// approved collaborator without being the creator.
type CollaboratorCompletion struct {
	TaskID int64 `json:"task_id" db:"task_id"`
}

// Follow is one follow relationship targeting the user.
type Follow struct {
	FollowerID int64     `json:"follower_id" db:"follower_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Rating is one rating received by the user. Callers that need streak
// semantics must request ratings in chronological order.
type Rating struct {
	Value     int       `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsMax reports whether the rating carries the maximum possible value.
func (r Rating) IsMax() bool {
	return r.Value >= MaxRatingValue
}

// RepeatingTask is one of the user's repeating tasks together with its
// current streak counter and first attached tag.
type RepeatingTask struct {
	TaskID       int64   `json:"task_id" db:"task_id"`
	Streak       int64   `json:"streak" db:"streak"`
	FirstTagID   *int64  `json:"first_tag_id,omitempty" db:"first_tag_id"`
	FirstTagName *string `json:"first_tag_name,omitempty" db:"first_tag_name"`
}

// Profile is the minimal projection of a user the engine needs: an identity
// and a display label for entity_name denormalization.
type Profile struct {
	ID          int64     `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
