package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	domain "github.com/example/taskshare/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IdentityModule provides the User Directory and the Identity Verifier
// contract: bearer credential verification, subject resolution with
// just-in-time provisioning, and placeholder accounts for share targets.
type IdentityModule struct {
	db      *gorm.DB
	service *IdentityService
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*IdentityModule)(nil)
var _ mono.ServiceProviderModule = (*IdentityModule)(nil)
var _ mono.HealthCheckableModule = (*IdentityModule)(nil)

// NewModule creates a new IdentityModule.
func NewModule() *IdentityModule {
	dbPath := os.Getenv("TASKSHARE_DB_PATH")
	if dbPath == "" {
		dbPath = "taskshare.db"
	}
	return &IdentityModule{dbPath: dbPath}
}

// Name returns the module name.
func (m *IdentityModule) Name() string {
	return "identity"
}

// Start opens the database, migrates the users table and wires the service.
func (m *IdentityModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repo := NewUserRepository(db)
	hasher := NewPasswordHasher()
	tokens := NewTokenManager(loadTokenConfig())
	m.service = NewIdentityService(repo, hasher, tokens)

	log.Printf("[identity] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *IdentityModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[identity] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *IdentityModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *IdentityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "register", json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "login", json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "verify-token", json.Unmarshal, json.Marshal, m.handleVerifyToken,
	); err != nil {
		return fmt.Errorf("failed to register verify-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "resolve-user", json.Unmarshal, json.Marshal, m.handleResolveUser,
	); err != nil {
		return fmt.Errorf("failed to register resolve-user service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "provision-by-email", json.Unmarshal, json.Marshal, m.handleProvisionByEmail,
	); err != nil {
		return fmt.Errorf("failed to register provision-by-email service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-user", json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register get-user service: %w", err)
	}

	log.Printf("[identity] Registered services: register, login, verify-token, resolve-user, provision-by-email, get-user")
	return nil
}

// handleRegister handles local account creation.
func (m *IdentityModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (RegisterResponse, error) {
	user, err := m.service.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// handleLogin handles local login.
func (m *IdentityModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (LoginResponse, error) {
	token, expiresIn, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	}, nil
}

// handleVerifyToken handles bearer credential verification. Validation
// failures are returned in the response, not as errors.
func (m *IdentityModule) handleVerifyToken(ctx context.Context, req VerifyTokenRequest, _ *mono.Msg) (VerifyTokenResponse, error) {
	claims, err := m.service.VerifyToken(ctx, req.Token)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, ErrExpiredToken) {
			errMsg = "token expired"
		}
		return VerifyTokenResponse{Valid: false, Error: errMsg}, nil
	}
	return VerifyTokenResponse{
		Valid:       true,
		SubjectID:   claims.SubjectID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// handleResolveUser handles subject-to-local-user resolution.
func (m *IdentityModule) handleResolveUser(ctx context.Context, req ResolveUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.ResolveOrCreate(ctx, req.SubjectID, req.Email, req.DisplayName)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// handleProvisionByEmail handles share-target resolution.
func (m *IdentityModule) handleProvisionByEmail(ctx context.Context, req ProvisionByEmailRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.FindOrProvisionByEmail(ctx, req.Email)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// handleGetUser handles user lookup by local ID.
func (m *IdentityModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// toUserResponse converts a user entity to its wire form.
func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Placeholder: user.Placeholder(),
		CreatedAt:   user.CreatedAt,
	}
}

// loadTokenConfig loads token configuration from environment variables.
func loadTokenConfig() TokenConfig {
	config := DefaultTokenConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		config.Issuer = issuer
	}
	if ttl := os.Getenv("JWT_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			config.TokenDuration = d
		}
	}

	return config
}
