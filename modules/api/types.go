package api

import "time"

// RegisterRequest is the HTTP request for creating a local account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest is the HTTP request for local login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the HTTP request for creating a task. The owner is
// always the authenticated caller; an owner field in the body is ignored.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest is the HTTP request for partially updating a task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ShareTaskRequest is the HTTP request for sharing a task by recipient
// email.
type ShareTaskRequest struct {
	TaskID     string `json:"taskId"`
	Email      string `json:"email"`
	Permission string `json:"permission,omitempty"`
}

// HealthResponse is the HTTP response for the health check.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ErrorResponse is the HTTP response for errors. Fields carries
// per-field validation messages on 400 responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
