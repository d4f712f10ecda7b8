package task

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "github.com/example/taskshare/domain/task"
	"github.com/example/taskshare/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

var (
	// ErrTitleRequired is returned when a task is created without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrInvalidPriority is returned for an unknown priority value.
	ErrInvalidPriority = errors.New("invalid priority value")
	// ErrInvalidPermission is returned for an unknown permission value.
	ErrInvalidPermission = errors.New("invalid permission value")
	// ErrNotOwner is returned when a sharing operation is attempted by a
	// user who does not own the task.
	ErrNotOwner = errors.New("requester is not the task owner")
)

// createTask handles the create-task service request.
func (m *TaskModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if req.Title == "" {
		return TaskResponse{}, ErrTitleRequired
	}

	status := domain.StatusTodo
	if req.Status != "" {
		status = domain.Status(req.Status)
		if !status.Valid() {
			return TaskResponse{}, ErrInvalidStatus
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
		if !priority.Valid() {
			return TaskResponse{}, ErrInvalidPriority
		}
	}

	now := time.Now()
	newTask := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		OwnerID:     req.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.repo.Create(newTask); err != nil {
		return TaskResponse{}, err
	}

	m.publishCreated(newTask)

	// Re-read so the response carries the joined owner.
	created, err := m.repo.FindByID(newTask.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(created), nil
}

// getTask handles the get-task service request. It performs no
// authorization; the gateway decides access from the returned owner and
// share list.
func (m *TaskModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.repo.FindByID(req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// listTasks handles the list-tasks service request: the union of tasks
// owned by the user and tasks shared to them. No de-duplication is done;
// a task cannot be in both sets because owners do not share with
// themselves.
func (m *TaskModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	owned, err := m.repo.FindByOwner(req.UserID, req.Search)
	if err != nil {
		return ListTasksResponse{}, err
	}
	shared, err := m.repo.FindSharedWith(req.UserID)
	if err != nil {
		return ListTasksResponse{}, err
	}

	response := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(owned)+len(shared)),
	}
	for _, t := range owned {
		response.Tasks = append(response.Tasks, toTaskResponse(t))
	}
	for _, t := range shared {
		response.Tasks = append(response.Tasks, toTaskResponse(t))
	}
	response.Total = len(response.Tasks)
	return response, nil
}

// updateTask handles the update-task service request. The ownership
// predicate lives in the storage layer; absent and not-owned collapse to
// the same not-found outcome.
func (m *TaskModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	fields := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return TaskResponse{}, ErrTitleRequired
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		if !domain.Status(*req.Status).Valid() {
			return TaskResponse{}, ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		if !domain.Priority(*req.Priority).Valid() {
			return TaskResponse{}, ErrInvalidPriority
		}
		fields["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	task, err := m.repo.Update(req.TaskID, req.OwnerID, fields)
	if err != nil {
		return TaskResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    task.ID,
			OwnerID:   task.OwnerID,
			UpdatedAt: task.UpdatedAt,
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", task.ID, err)
		}
	}

	return toTaskResponse(task), nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	deleted, err := m.repo.Delete(req.TaskID, req.OwnerID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}

	if deleted && m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			OwnerID:   req.OwnerID,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", req.TaskID, err)
		}
	}

	return DeleteTaskResponse{Deleted: deleted}, nil
}

// shareTask handles the share-task service request: ownership pre-check,
// duplicate scan over the loaded share list, insert. The scan and insert
// are separate statements; a concurrent identical request can race
// between them.
func (m *TaskModule) shareTask(_ context.Context, req ShareTaskRequest, _ *mono.Msg) (ShareResponse, error) {
	task, err := m.repo.FindByID(req.TaskID)
	if err != nil {
		return ShareResponse{}, err
	}
	if task.OwnerID != req.RequesterID {
		return ShareResponse{}, ErrNotOwner
	}

	permission := domain.PermissionView
	if req.Permission != "" {
		permission = domain.Permission(req.Permission)
		if !permission.Valid() {
			return ShareResponse{}, ErrInvalidPermission
		}
	}

	if task.SharedWith(req.RecipientID) {
		return ShareResponse{}, ErrDuplicateShare
	}

	share := &domain.Share{
		ID:          uuid.New().String(),
		TaskID:      req.TaskID,
		RecipientID: req.RecipientID,
		Permission:  permission,
		CreatedAt:   time.Now(),
	}
	if err := m.shares.Create(share); err != nil {
		return ShareResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TaskSharedEvent{
			TaskID:      share.TaskID,
			OwnerID:     task.OwnerID,
			RecipientID: share.RecipientID,
			Permission:  string(share.Permission),
			SharedAt:    share.CreatedAt,
		}
		if err := events.TaskSharedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskShared event for task %s: %v", share.TaskID, err)
		}
	}

	created, err := m.shares.FindByID(share.ID)
	if err != nil {
		return ShareResponse{}, err
	}
	return toShareResponse(created), nil
}

// listShares handles the list-shares service request (owner only).
func (m *TaskModule) listShares(_ context.Context, req ListSharesRequest, _ *mono.Msg) (ListSharesResponse, error) {
	task, err := m.repo.FindByID(req.TaskID)
	if err != nil {
		return ListSharesResponse{}, err
	}
	if task.OwnerID != req.RequesterID {
		return ListSharesResponse{}, ErrNotOwner
	}

	shares, err := m.shares.FindByTask(req.TaskID)
	if err != nil {
		return ListSharesResponse{}, err
	}

	response := ListSharesResponse{
		Shares: make([]ShareResponse, 0, len(shares)),
		Total:  len(shares),
	}
	for _, s := range shares {
		response.Shares = append(response.Shares, toShareResponse(s))
	}
	return response, nil
}

// revokeShare handles the revoke-share service request (owner only).
func (m *TaskModule) revokeShare(_ context.Context, req RevokeShareRequest, _ *mono.Msg) (RevokeShareResponse, error) {
	task, err := m.repo.FindByID(req.TaskID)
	if err != nil {
		return RevokeShareResponse{}, err
	}
	if task.OwnerID != req.RequesterID {
		return RevokeShareResponse{}, ErrNotOwner
	}

	removed, err := m.shares.Delete(req.TaskID, req.RecipientID)
	if err != nil {
		return RevokeShareResponse{}, err
	}

	if removed && m.eventBus != nil {
		event := events.ShareRevokedEvent{
			TaskID:      req.TaskID,
			OwnerID:     task.OwnerID,
			RecipientID: req.RecipientID,
			RevokedAt:   time.Now(),
		}
		if err := events.ShareRevokedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish ShareRevoked event for task %s: %v", req.TaskID, err)
		}
	}

	return RevokeShareResponse{Removed: removed}, nil
}

// listDue handles the list-due service request for the reminder sweep.
func (m *TaskModule) listDue(_ context.Context, req ListDueRequest, _ *mono.Msg) (ListDueResponse, error) {
	cutoff := time.Now().Add(time.Duration(req.WithinSeconds) * time.Second)
	tasks, err := m.repo.FindDueBefore(cutoff)
	if err != nil {
		return ListDueResponse{}, err
	}

	response := ListDueResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, t := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(t))
	}
	return response, nil
}

// ping handles the storage health probe used by GET /health.
func (m *TaskModule) ping(ctx context.Context, _ PingRequest, _ *mono.Msg) (PingResponse, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return PingResponse{}, fmt.Errorf("failed to get database connection: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return PingResponse{}, fmt.Errorf("database ping failed: %w", err)
	}
	return PingResponse{Database: "connected"}, nil
}

// publishCreated emits a TaskCreated event, best-effort.
func (m *TaskModule) publishCreated(task *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:    task.ID,
		Title:     task.Title,
		OwnerID:   task.OwnerID,
		CreatedAt: task.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", task.ID, err)
	}
}

// toTaskResponse converts a task entity to its wire form.
func toTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		OwnerID:     task.OwnerID,
		Shares:      make([]ShareResponse, 0, len(task.Shares)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Owner != nil {
		resp.Owner = &UserRef{
			ID:          task.Owner.ID,
			Email:       task.Owner.Email,
			DisplayName: task.Owner.DisplayName,
		}
	}
	for i := range task.Shares {
		resp.Shares = append(resp.Shares, toShareResponse(&task.Shares[i]))
	}
	return resp
}

// toShareResponse converts a share entity to its wire form.
func toShareResponse(share *domain.Share) ShareResponse {
	resp := ShareResponse{
		ID:          share.ID,
		TaskID:      share.TaskID,
		RecipientID: share.RecipientID,
		Permission:  string(share.Permission),
		CreatedAt:   share.CreatedAt,
	}
	if share.Recipient != nil {
		resp.Recipient = &UserRef{
			ID:          share.Recipient.ID,
			Email:       share.Recipient.Email,
			DisplayName: share.Recipient.DisplayName,
		}
	}
	return resp
}
