package identity

import (
	"time"
)

// RegisterRequest is the request for creating a local account.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterResponse is the response for creating a local account.
type RegisterResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LoginRequest is the request for local login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the response for local login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// VerifyTokenRequest is the request for bearer credential verification.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// VerifyTokenResponse is the response for bearer credential verification.
type VerifyTokenResponse struct {
	Valid       bool   `json:"valid"`
	SubjectID   string `json:"subject_id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ResolveUserRequest is the request for subject-to-local-user resolution.
type ResolveUserRequest struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// ProvisionByEmailRequest is the request for share-target resolution.
type ProvisionByEmailRequest struct {
	Email string `json:"email"`
}

// GetUserRequest is the request for fetching a user by local ID.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// UserResponse is the wire form of a user record.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
