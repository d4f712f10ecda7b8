package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/taskshare/domain/task"
	"github.com/example/taskshare/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskModule provides the task store and sharing ledger.
type TaskModule struct {
	db       *gorm.DB
	repo     *TaskRepository
	shares   *ShareRepository
	eventBus mono.EventBus
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule() *TaskModule {
	dbPath := os.Getenv("TASKSHARE_DB_PATH")
	if dbPath == "" {
		dbPath = "taskshare.db"
	}
	return &TaskModule{dbPath: dbPath}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the application event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TaskSharedV1.ToBase(),
		events.ShareRevokedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"create-task", func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-task", json.Unmarshal, json.Marshal, m.createTask)
		}},
		{"get-task", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-task", json.Unmarshal, json.Marshal, m.getTask)
		}},
		{"list-tasks", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks)
		}},
		{"update-task", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-task", json.Unmarshal, json.Marshal, m.updateTask)
		}},
		{"delete-task", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask)
		}},
		{"share-task", func() error {
			return helper.RegisterTypedRequestReplyService(container, "share-task", json.Unmarshal, json.Marshal, m.shareTask)
		}},
		{"list-shares", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-shares", json.Unmarshal, json.Marshal, m.listShares)
		}},
		{"revoke-share", func() error {
			return helper.RegisterTypedRequestReplyService(container, "revoke-share", json.Unmarshal, json.Marshal, m.revokeShare)
		}},
		{"list-due", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-due", json.Unmarshal, json.Marshal, m.listDue)
		}},
		{"ping", func() error {
			return helper.RegisterTypedRequestReplyService(container, "ping", json.Unmarshal, json.Marshal, m.ping)
		}},
	}

	for _, s := range services {
		if err := s.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", s.name, err)
		}
	}

	log.Printf("[task] Registered services: create-task, get-task, list-tasks, update-task, delete-task, share-task, list-shares, revoke-share, list-due, ping")
	return nil
}

// Start opens the database and migrates the tasks and shares tables. The
// users table is owned and migrated by the identity module, which starts
// first.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}, &domain.Share{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.repo = NewTaskRepository(db)
	m.shares = NewShareRepository(db)

	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}

	log.Printf("[task] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
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
