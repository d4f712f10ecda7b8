package identity

import (
	"testing"
	"time"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	config := TokenConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: 15 * time.Minute,
		Issuer:        "test-issuer",
	}
	manager := NewTokenManager(config)

	subjectID := "local:subject-123"
	email := "test@example.com"
	displayName := "Test User"

	token, err := manager.Issue(subjectID, email, displayName)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Error("Issue() returned empty token")
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.SubjectID != subjectID {
		t.Errorf("claims.SubjectID = %v, want %v", claims.SubjectID, subjectID)
	}
	if claims.Email != email {
		t.Errorf("claims.Email = %v, want %v", claims.Email, email)
	}
	if claims.DisplayName != displayName {
		t.Errorf("claims.DisplayName = %v, want %v", claims.DisplayName, displayName)
	}
	if claims.Issuer != config.Issuer {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, config.Issuer)
	}
}

func TestTokenManager_InvalidToken(t *testing.T) {
	manager := NewTokenManager(DefaultTokenConfig())

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "random string",
			token: "not.a.valid.token",
		},
		{
			name:  "malformed jwt",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			if err == nil {
				t.Error("Verify() should return error for invalid token")
			}
		})
	}
}

func TestTokenManager_WrongSecretKey(t *testing.T) {
	config1 := TokenConfig{
		SecretKey:     "secret-key-1",
		TokenDuration: 15 * time.Minute,
		Issuer:        "test-issuer",
	}
	config2 := TokenConfig{
		SecretKey:     "secret-key-2",
		TokenDuration: 15 * time.Minute,
		Issuer:        "test-issuer",
	}

	manager1 := NewTokenManager(config1)
	manager2 := NewTokenManager(config2)

	token, err := manager1.Issue("local:subject-123", "test@example.com", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Verify with a different secret
	_, err = manager2.Verify(token)
	if err == nil {
		t.Error("Verify() should fail with different secret key")
	}
	if err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	config := TokenConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: 1 * time.Millisecond,
		Issuer:        "test-issuer",
	}
	manager := NewTokenManager(config)

	token, err := manager.Issue("local:subject-123", "test@example.com", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Wait for token to expire
	time.Sleep(10 * time.Millisecond)

	_, err = manager.Verify(token)
	if err == nil {
		t.Error("Verify() should fail for expired token")
	}
	if err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenManager_RejectsEmptySubject(t *testing.T) {
	manager := NewTokenManager(DefaultTokenConfig())

	token, err := manager.Issue("", "test@example.com", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = manager.Verify(token)
	if err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
