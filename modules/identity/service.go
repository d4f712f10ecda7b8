package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	domain "github.com/example/taskshare/domain/user"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// IdentityService implements the User Directory and the local side of the
// Identity Verifier contract.
type IdentityService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(repo *UserRepository, hasher *PasswordHasher, tokens *TokenManager) *IdentityService {
	return &IdentityService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a local account with a minted subject identifier.
// When the email already belongs to a placeholder record (provisioned as
// a share target before this person ever signed up), the placeholder is
// claimed in place so shares pointing at it survive.
func (s *IdentityService) Register(_ context.Context, email, password, displayName string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.repo.FindByEmail(email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil && (!existing.Placeholder() || existing.PasswordHash != "") {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if existing != nil {
		return s.claimPlaceholder(existing, domain.SubjectPrefixLocal+uuid.New().String(), passwordHash, displayName)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		SubjectID:    domain.SubjectPrefixLocal + uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a local account and issues a bearer token.
// Placeholder accounts have no password hash and can never log in until
// they register.
func (s *IdentityService) Login(_ context.Context, email, password string) (string, int64, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", 0, ErrInvalidCredentials
		}
		return "", 0, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return "", 0, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.SubjectID, user.Email, user.DisplayName)
	if err != nil {
		return "", 0, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, int64(s.tokens.config.TokenDuration.Seconds()), nil
}

// VerifyToken maps a bearer credential to a verified subject identity.
func (s *IdentityService) VerifyToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{
		SubjectID:   claims.SubjectID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// ResolveOrCreate looks a user up by subject identifier, creating one on
// first sight (just-in-time provisioning). At most one insert happens per
// unseen subject identifier.
func (s *IdentityService) ResolveOrCreate(_ context.Context, subjectID, email, displayName string) (*domain.User, error) {
	user, err := s.repo.FindBySubject(subjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to resolve subject: %w", err)
	}

	// The email may already belong to a placeholder provisioned for a
	// share; attach the real subject identifier to that record instead
	// of inserting a second row for the same email.
	if email != "" {
		existing, lookupErr := s.repo.FindByEmail(email)
		if lookupErr == nil {
			if !existing.Placeholder() {
				return nil, ErrUserExists
			}
			return s.claimPlaceholder(existing, subjectID, "", displayName)
		}
		if !errors.Is(lookupErr, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up email: %w", lookupErr)
		}
	}

	user = &domain.User{
		ID:          uuid.New().String(),
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}
	return user, nil
}

// claimPlaceholder turns a placeholder record into a real account and
// returns the refreshed record.
func (s *IdentityService) claimPlaceholder(existing *domain.User, subjectID, passwordHash, displayName string) (*domain.User, error) {
	if err := s.repo.Claim(existing.ID, subjectID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to claim placeholder user: %w", err)
	}
	if displayName != "" && displayName != existing.DisplayName {
		if err := s.repo.UpdateDisplayName(existing.ID, displayName); err != nil {
			return nil, fmt.Errorf("failed to set display name: %w", err)
		}
	}
	return s.repo.FindByID(existing.ID)
}

// FindOrProvisionByEmail resolves a share-target email to a user record,
// creating a placeholder account with a synthetic subject identifier when
// none exists yet.
func (s *IdentityService) FindOrProvisionByEmail(_ context.Context, email string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.repo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	user = &domain.User{
		ID:        uuid.New().String(),
		SubjectID: domain.SubjectPrefixPending + uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to provision placeholder user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by local ID.
func (s *IdentityService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(userID)
}
