package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/taskshare/domain/task"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a task is absent or not owned by the
// caller. The two cases are indistinguishable on purpose: ownership
// mismatch must not leak existence.
var ErrNotFound = errors.New("task not found")

// TaskRepository provides access to task storage.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task with its owner and full share list, each
// share joined with its recipient.
func (r *TaskRepository) FindByID(id string) (*domain.Task, error) {
	var task domain.Task
	err := r.db.
		Preload("Owner").
		Preload("Shares").
		Preload("Shares.Recipient").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// FindByOwner returns tasks owned by ownerID, newest-created first,
// optionally filtered to rows whose title or description contains the
// search term case-insensitively.
func (r *TaskRepository) FindByOwner(ownerID, search string) ([]*domain.Task, error) {
	query := r.db.
		Preload("Owner").
		Preload("Shares").
		Preload("Shares.Recipient").
		Where("owner_id = ?", ownerID)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var tasks []*domain.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// FindSharedWith returns tasks shared to userID joined with their owner,
// newest task-creation first. Share sub-lists are intentionally left
// empty on these entries.
func (r *TaskRepository) FindSharedWith(userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.
		Preload("Owner").
		Joins("JOIN shares ON shares.task_id = tasks.id").
		Where("shares.recipient_id = ?", userID).
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shared tasks: %w", err)
	}
	return tasks, nil
}

// Update applies partial field updates only when the task exists and is
// owned by ownerID, refreshing the update timestamp. Returns ErrNotFound
// otherwise, whether the task is absent or owned by someone else.
func (r *TaskRepository) Update(id, ownerID string, fields map[string]any) (*domain.Task, error) {
	if len(fields) == 0 {
		fields = map[string]any{}
	}
	fields["updated_at"] = time.Now()

	result := r.db.Model(&domain.Task{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(id)
}

// Delete removes a task only when owned by ownerID and reports whether a
// row was removed. A successful delete cascades to the task's shares.
func (r *TaskRepository) Delete(id, ownerID string) (bool, error) {
	result := r.db.Delete(&domain.Task{}, "id = ? AND owner_id = ?", id, ownerID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := r.db.Delete(&domain.Share{}, "task_id = ?", id).Error; err != nil {
		return true, fmt.Errorf("failed to delete task shares: %w", err)
	}
	return true, nil
}

// FindDueBefore returns incomplete tasks with a due date at or before the
// cutoff, used by the reminder sweep.
func (r *TaskRepository) FindDueBefore(cutoff time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.
		Preload("Owner").
		Where("due_date IS NOT NULL AND due_date <= ? AND status != ?", cutoff, domain.StatusCompleted).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due tasks: %w", err)
	}
	return tasks, nil
}
