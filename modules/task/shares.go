package task

import (
	"errors"
	"fmt"

	domain "github.com/example/taskshare/domain/task"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateShare is returned when a (task, recipient) pair is
	// already shared.
	ErrDuplicateShare = errors.New("task already shared with this user")
	// ErrShareNotFound is returned when a share edge does not exist.
	ErrShareNotFound = errors.New("share not found")
)

// ShareRepository provides access to the sharing ledger.
type ShareRepository struct {
	db *gorm.DB
}

// NewShareRepository creates a new share repository.
func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create inserts a new share row. Uniqueness of (task, recipient) is the
// caller's responsibility; this operation does not enforce it.
func (r *ShareRepository) Create(share *domain.Share) error {
	if err := r.db.Create(share).Error; err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

// FindByTask returns all shares of a task, each joined with its recipient.
func (r *ShareRepository) FindByTask(taskID string) ([]*domain.Share, error) {
	var shares []*domain.Share
	err := r.db.
		Preload("Recipient").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&shares).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

// FindByID retrieves a single share with its recipient.
func (r *ShareRepository) FindByID(id string) (*domain.Share, error) {
	var share domain.Share
	err := r.db.Preload("Recipient").First(&share, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to find share: %w", err)
	}
	return &share, nil
}

// Delete removes a specific share edge and reports whether anything was
// removed.
func (r *ShareRepository) Delete(taskID, recipientID string) (bool, error) {
	result := r.db.Delete(&domain.Share{}, "task_id = ? AND recipient_id = ?", taskID, recipientID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete share: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
