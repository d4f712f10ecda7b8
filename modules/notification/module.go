package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/taskshare/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationLog represents a delivered notification. Delivery here is
// an in-process log; a mail or push backend would hang off the same
// consumers.
type NotificationLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationModule fans task and reminder events out to users.
type NotificationModule struct {
	notifications []NotificationLog
	mu            sync.RWMutex
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)

func NewModule() *NotificationModule {
	return &NotificationModule{
		notifications: make([]NotificationLog, 0),
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskSharedV1, m.handleTaskShared, m); err != nil {
		return fmt.Errorf("failed to register TaskShared consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDueSoonV1, m.handleTaskDueSoon, m); err != nil {
		return fmt.Errorf("failed to register TaskDueSoon consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskShared, TaskDeleted, TaskDueSoon")
	return nil
}

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task created: %s - %s", event.TaskID, event.Title)
	m.logNotification(event.TaskID, event.OwnerID, "task_created", fmt.Sprintf("Task '%s' created", event.Title))
	return nil
}

func (m *NotificationModule) handleTaskShared(_ context.Context, event events.TaskSharedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task %s shared with user %s (%s)", event.TaskID, event.RecipientID, event.Permission)
	m.logNotification(event.TaskID, event.RecipientID, "task_shared", fmt.Sprintf("A task was shared with you (%s access)", event.Permission))
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task deleted: %s by user %s", event.TaskID, event.OwnerID)
	m.logNotification(event.TaskID, event.OwnerID, "task_deleted", fmt.Sprintf("Task %s deleted", event.TaskID))
	return nil
}

func (m *NotificationModule) handleTaskDueSoon(_ context.Context, event events.TaskDueSoonEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task due soon: %s - %s (due %s)", event.TaskID, event.Title, event.DueDate.Format(time.RFC3339))
	m.logNotification(event.TaskID, event.OwnerID, "task_due_soon", fmt.Sprintf("Task '%s' is due %s", event.Title, event.DueDate.Format(time.RFC3339)))
	return nil
}

func (m *NotificationModule) logNotification(id, userID, notificationType, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications = append(m.notifications, NotificationLog{
		ID:        id,
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// GetNotifications returns a snapshot of all logged notifications.
func (m *NotificationModule) GetNotifications() []NotificationLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]NotificationLog, len(m.notifications))
	copy(result, m.notifications)
	return result
}

func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for task events")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}
