package identity

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/taskshare/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// IdentityPort defines the interface other modules use for identity
// operations: the Identity Verifier contract plus User Directory lookups.
type IdentityPort interface {
	VerifyToken(ctx context.Context, token string) (*domain.Claims, error)
	ResolveUser(ctx context.Context, subjectID, email, displayName string) (*UserResponse, error)
	ProvisionByEmail(ctx context.Context, email string) (*UserResponse, error)
	GetUser(ctx context.Context, userID string) (*UserResponse, error)
}

// identityAdapter wraps ServiceContainer for type-safe cross-module calls.
type identityAdapter struct {
	container mono.ServiceContainer
}

// NewIdentityAdapter creates a new adapter for identity services.
// container is the ServiceContainer from the identity module received via
// SetDependencyServiceContainer.
func NewIdentityAdapter(container mono.ServiceContainer) IdentityPort {
	if container == nil {
		panic("identity adapter requires non-nil ServiceContainer")
	}
	return &identityAdapter{container: container}
}

// VerifyToken validates a bearer credential via the verify-token service.
func (a *identityAdapter) VerifyToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := VerifyTokenRequest{Token: token}
	var resp VerifyTokenResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"verify-token",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("verify-token service call failed: %w", err)
	}
	if !resp.Valid {
		return nil, fmt.Errorf("token verification failed: %s", resp.Error)
	}
	return &domain.Claims{
		SubjectID:   resp.SubjectID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}, nil
}

// ResolveUser resolves a verified subject to a local user, creating one
// on first sight, via the resolve-user service.
func (a *identityAdapter) ResolveUser(ctx context.Context, subjectID, email, displayName string) (*UserResponse, error) {
	req := ResolveUserRequest{SubjectID: subjectID, Email: email, DisplayName: displayName}
	var resp UserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"resolve-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("resolve-user service call failed: %w", err)
	}
	return &resp, nil
}

// ProvisionByEmail resolves a share-target email to a user record via the
// provision-by-email service.
func (a *identityAdapter) ProvisionByEmail(ctx context.Context, email string) (*UserResponse, error) {
	req := ProvisionByEmailRequest{Email: email}
	var resp UserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"provision-by-email",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("provision-by-email service call failed: %w", err)
	}
	return &resp, nil
}

// GetUser retrieves a user by local ID via the get-user service.
func (a *identityAdapter) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-user",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-user service call failed: %w", err)
	}
	return &resp, nil
}
