package reminder

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/taskshare/events"
	"github.com/example/taskshare/modules/task"
	"github.com/go-monolith/mono"
	"github.com/robfig/cron/v3"
)

// dueWindow is how far ahead the sweep looks for approaching due dates.
const dueWindow = 24 * time.Hour

// ReminderModule periodically sweeps for incomplete tasks due within the
// next day and publishes a due-soon event per task. Deduplication keeps a
// task from being announced on every sweep.
type ReminderModule struct {
	cron      *cron.Cron
	tasks     task.TaskPort
	eventBus  mono.EventBus
	interval  time.Duration
	announced map[string]bool
}

// Compile-time interface checks.
var _ mono.Module = (*ReminderModule)(nil)
var _ mono.DependentModule = (*ReminderModule)(nil)
var _ mono.EventEmitterModule = (*ReminderModule)(nil)

// NewModule creates a new ReminderModule.
func NewModule() *ReminderModule {
	interval := 15 * time.Minute
	if raw := os.Getenv("REMINDER_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			log.Printf("[reminder] Invalid REMINDER_INTERVAL %q, using default %s", raw, interval)
		} else {
			interval = parsed
		}
	}
	return &ReminderModule{
		interval:  interval,
		announced: make(map[string]bool),
	}
}

// Name returns the module name.
func (m *ReminderModule) Name() string {
	return "reminder"
}

// Dependencies returns the list of module dependencies.
func (m *ReminderModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *ReminderModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.tasks = task.NewTaskAdapter(container)
	}
}

// SetEventBus receives the application event bus.
func (m *ReminderModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *ReminderModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskDueSoonV1.ToBase(),
	}
}

// Start schedules the periodic due-date sweep.
func (m *ReminderModule) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("task dependency not set")
	}

	m.cron = cron.New()
	spec := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(spec, m.sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	m.cron.Start()

	log.Printf("[reminder] Module started (sweep every %s, window %s)", m.interval, dueWindow)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (m *ReminderModule) Stop(_ context.Context) error {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	log.Println("[reminder] Module stopped")
	return nil
}

// sweep queries tasks due within the window and announces each once.
func (m *ReminderModule) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := m.tasks.ListDue(ctx, dueWindow)
	if err != nil {
		log.Printf("[reminder] Due-date sweep failed: %v", err)
		return
	}

	for _, t := range resp.Tasks {
		if m.announced[t.ID] || t.DueDate == nil {
			continue
		}
		event := events.TaskDueSoonEvent{
			TaskID:  t.ID,
			Title:   t.Title,
			OwnerID: t.OwnerID,
			DueDate: *t.DueDate,
		}
		if m.eventBus == nil {
			log.Printf("[reminder] Event bus not set, skipping announcement for task %s", t.ID)
			continue
		}
		if err := events.TaskDueSoonV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[reminder] Failed to publish due-soon event for task %s: %v", t.ID, err)
			continue
		}
		m.announced[t.ID] = true
		log.Printf("[reminder] Announced task %s (due %s)", t.ID, t.DueDate.Format(time.RFC3339))
	}
}
