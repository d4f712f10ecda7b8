package task

import (
	"context"
	"time"
)

// UserRef is the wire form of a user joined onto a task or share.
type UserRef struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// ShareResponse is the wire form of a share row.
type ShareResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	RecipientID string    `json:"recipient_id"`
	Permission  string    `json:"permission"`
	Recipient   *UserRef  `json:"recipient,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskResponse is the wire form of a task with its owner and shares.
type TaskResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	OwnerID     string          `json:"owner_id"`
	Owner       *UserRef        `json:"owner,omitempty"`
	Shares      []ShareResponse `json:"shares"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTaskRequest is the request for creating a task. OwnerID comes
// from the authenticated caller, never from the client body.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerID     string     `json:"owner_id"`
}

// GetTaskRequest is the request for fetching a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing a user's visible tasks:
// tasks they own plus tasks shared to them.
type ListTasksRequest struct {
	UserID string `json:"user_id"`
	Search string `json:"search,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UpdateTaskRequest is the request for partially updating a task. Nil
// fields are left untouched.
type UpdateTaskRequest struct {
	TaskID      string     `json:"task_id"`
	OwnerID     string     `json:"owner_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID  string `json:"task_id"`
	OwnerID string `json:"owner_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// ShareTaskRequest is the request for sharing a task with a recipient.
type ShareTaskRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
	RecipientID string `json:"recipient_id"`
	Permission  string `json:"permission,omitempty"`
}

// ListSharesRequest is the request for listing a task's shares.
type ListSharesRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
}

// ListSharesResponse is the response for listing a task's shares.
type ListSharesResponse struct {
	Shares []ShareResponse `json:"shares"`
	Total  int             `json:"total"`
}

// RevokeShareRequest is the request for removing a share edge.
type RevokeShareRequest struct {
	TaskID      string `json:"task_id"`
	RequesterID string `json:"requester_id"`
	RecipientID string `json:"recipient_id"`
}

// RevokeShareResponse is the response for removing a share edge.
type RevokeShareResponse struct {
	Removed bool `json:"removed"`
}

// ListDueRequest is the request for the reminder sweep: incomplete tasks
// due within the given number of seconds.
type ListDueRequest struct {
	WithinSeconds int64 `json:"within_seconds"`
}

// ListDueResponse is the response for the reminder sweep.
type ListDueResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// PingRequest is the request for the storage health probe.
type PingRequest struct{}

// PingResponse is the response for the storage health probe.
type PingResponse struct {
	Database string `json:"database"`
}

// TaskPort defines the interface for task and sharing operations used by
// other modules.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, taskID string) (*TaskResponse, error)
	ListTasks(ctx context.Context, userID, search string) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID, ownerID string) (bool, error)
	ShareTask(ctx context.Context, req *ShareTaskRequest) (*ShareResponse, error)
	ListShares(ctx context.Context, taskID, requesterID string) (*ListSharesResponse, error)
	RevokeShare(ctx context.Context, taskID, requesterID, recipientID string) (bool, error)
	ListDue(ctx context.Context, within time.Duration) (*ListDueResponse, error)
	Ping(ctx context.Context) (*PingResponse, error)
}
