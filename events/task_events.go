package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted when a task's fields change.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted. Its shares are
// removed in the same operation.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	OwnerID   string    `json:"owner_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// TaskSharedEvent is emitted when a task is shared with a recipient.
type TaskSharedEvent struct {
	TaskID      string    `json:"task_id"`
	OwnerID     string    `json:"owner_id"`
	RecipientID string    `json:"recipient_id"`
	Permission  string    `json:"permission"`
	SharedAt    time.Time `json:"shared_at"`
}

// TaskSharedV1 is the typed event definition for share creation.
// Subject: events.task.v1.task-shared
var TaskSharedV1 = helper.EventDefinition[TaskSharedEvent](
	"task", "TaskShared", "v1",
)

// ShareRevokedEvent is emitted when a share edge is removed.
type ShareRevokedEvent struct {
	TaskID      string    `json:"task_id"`
	OwnerID     string    `json:"owner_id"`
	RecipientID string    `json:"recipient_id"`
	RevokedAt   time.Time `json:"revoked_at"`
}

// ShareRevokedV1 is the typed event definition for share removal.
// Subject: events.task.v1.share-revoked
var ShareRevokedV1 = helper.EventDefinition[ShareRevokedEvent](
	"task", "ShareRevoked", "v1",
)

// TaskDueSoonEvent is emitted by the reminder sweep for incomplete tasks
// approaching their due date.
type TaskDueSoonEvent struct {
	TaskID  string    `json:"task_id"`
	Title   string    `json:"title"`
	OwnerID string    `json:"owner_id"`
	DueDate time.Time `json:"due_date"`
}

// TaskDueSoonV1 is the typed event definition for due-date reminders.
// Subject: events.reminder.v1.task-due-soon
var TaskDueSoonV1 = helper.EventDefinition[TaskDueSoonEvent](
	"reminder", "TaskDueSoon", "v1",
)
