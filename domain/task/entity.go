package task

import (
	"time"

	"github.com/example/taskshare/domain/user"
)

// Status represents the state of a task. Any status may change to any
// other status; there are no transition restrictions.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority represents the priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Permission is the access level granted by a share. It is recorded and
// returned by the API but mutation rights remain owner-only.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is a known permission value.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// Task is the core domain entity. The owner is set once at creation and
// exclusively controls mutation and deletion.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Status      Status     `gorm:"not null;default:todo;type:text" json:"status"`
	Priority    Priority   `gorm:"not null;default:medium;type:text" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerID     string     `gorm:"index;not null;type:text" json:"owner_id"`
	Owner       *user.User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Shares      []Share    `gorm:"foreignKey:TaskID" json:"shares"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// SharedWith reports whether the task has a share granting access to
// the given user.
func (t *Task) SharedWith(userID string) bool {
	for _, s := range t.Shares {
		if s.RecipientID == userID {
			return true
		}
	}
	return false
}

// Share is a directed grant of access on one task to one recipient.
// (task, recipient) pairs are kept unique at the application layer by
// scanning existing shares before insert.
type Share struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	TaskID      string     `gorm:"index;not null;type:text" json:"task_id"`
	RecipientID string     `gorm:"index;not null;type:text" json:"recipient_id"`
	Permission  Permission `gorm:"not null;default:view;type:text" json:"permission"`
	Recipient   *user.User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the table name for the Share entity.
func (Share) TableName() string {
	return "shares"
}
