package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module calls.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via
// SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// call is the shared request-reply plumbing for every task service.
func call[T any](a *taskAdapter, ctx context.Context, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(a, ctx, "create-task", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*TaskResponse, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := call(a, ctx, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks lists a user's visible tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, userID, search string) (*ListTasksResponse, error) {
	req := ListTasksRequest{UserID: userID, Search: search}
	var resp ListTasksResponse
	if err := call(a, ctx, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask applies a partial update via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := call(a, ctx, "update-task", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service and reports
// whether a row was removed.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID, ownerID string) (bool, error) {
	req := DeleteTaskRequest{TaskID: taskID, OwnerID: ownerID}
	var resp DeleteTaskResponse
	if err := call(a, ctx, "delete-task", &req, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// ShareTask records a share via the share-task service.
func (a *taskAdapter) ShareTask(ctx context.Context, req *ShareTaskRequest) (*ShareResponse, error) {
	var resp ShareResponse
	if err := call(a, ctx, "share-task", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListShares lists a task's shares via the list-shares service.
func (a *taskAdapter) ListShares(ctx context.Context, taskID, requesterID string) (*ListSharesResponse, error) {
	req := ListSharesRequest{TaskID: taskID, RequesterID: requesterID}
	var resp ListSharesResponse
	if err := call(a, ctx, "list-shares", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevokeShare removes a share edge via the revoke-share service and
// reports whether anything was removed.
func (a *taskAdapter) RevokeShare(ctx context.Context, taskID, requesterID, recipientID string) (bool, error) {
	req := RevokeShareRequest{TaskID: taskID, RequesterID: requesterID, RecipientID: recipientID}
	var resp RevokeShareResponse
	if err := call(a, ctx, "revoke-share", &req, &resp); err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// ListDue lists incomplete tasks due within the window via the list-due
// service.
func (a *taskAdapter) ListDue(ctx context.Context, within time.Duration) (*ListDueResponse, error) {
	req := ListDueRequest{WithinSeconds: int64(within.Seconds())}
	var resp ListDueResponse
	if err := call(a, ctx, "list-due", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping probes task storage via the ping service.
func (a *taskAdapter) Ping(ctx context.Context) (*PingResponse, error) {
	var resp PingResponse
	if err := call(a, ctx, "ping", &PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
