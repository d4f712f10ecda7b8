package task

import (
	"testing"
	"time"

	domain "github.com/example/taskshare/domain/task"
	userdomain "github.com/example/taskshare/domain/user"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&userdomain.User{}, &domain.Task{}, &domain.Share{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// createTestUser inserts a user row and returns it.
func createTestUser(t *testing.T, db *gorm.DB, email string) *userdomain.User {
	t.Helper()

	user := &userdomain.User{
		ID:        uuid.New().String(),
		SubjectID: userdomain.SubjectPrefixLocal + uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestTask inserts a task row and returns it.
func createTestTask(t *testing.T, db *gorm.DB, ownerID, title, description string) *domain.Task {
	t.Helper()

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

func TestTaskRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "recipient@example.com")
	task := createTestTask(t, db, owner.ID, "Groceries", "")

	share := &domain.Share{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		RecipientID: recipient.ID,
		Permission:  domain.PermissionView,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(share).Error; err != nil {
		t.Fatalf("failed to create test share: %v", err)
	}

	t.Run("existing task with joins", func(t *testing.T) {
		found, err := repo.FindByID(task.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Owner == nil || found.Owner.Email != "owner@example.com" {
			t.Error("expected owner to be joined")
		}
		if len(found.Shares) != 1 {
			t.Fatalf("expected 1 share, got %d", len(found.Shares))
		}
		if found.Shares[0].Recipient == nil || found.Shares[0].Recipient.Email != "recipient@example.com" {
			t.Error("expected share recipient to be joined")
		}
	})

	t.Run("non-existent task", func(t *testing.T) {
		_, err := repo.FindByID("non-existent-id")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTaskRepository_FindByOwner_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestTask(t, db, alice.ID, "Buy GROCERIES", "")
	createTestTask(t, db, alice.ID, "Walk the dog", "pick up groceries on the way")
	createTestTask(t, db, alice.ID, "File taxes", "")
	// Matching task owned by someone else must never appear
	createTestTask(t, db, bob.ID, "groceries for bob", "")

	t.Run("case-insensitive match on title and description", func(t *testing.T) {
		tasks, err := repo.FindByOwner(alice.ID, "gRoCeRiEs")
		if err != nil {
			t.Fatalf("FindByOwner() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 matching tasks, got %d", len(tasks))
		}
		for _, task := range tasks {
			if task.OwnerID != alice.ID {
				t.Errorf("search leaked task %s owned by %s", task.ID, task.OwnerID)
			}
		}
	})

	t.Run("empty search returns all owned tasks", func(t *testing.T) {
		tasks, err := repo.FindByOwner(alice.ID, "")
		if err != nil {
			t.Fatalf("FindByOwner() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Errorf("expected 3 tasks, got %d", len(tasks))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		tasks, err := repo.FindByOwner(alice.ID, "nonexistent-term")
		if err != nil {
			t.Fatalf("FindByOwner() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected 0 tasks, got %d", len(tasks))
		}
	})
}

func TestTaskRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	task := createTestTask(t, db, owner.ID, "Original", "")

	t.Run("owner update succeeds", func(t *testing.T) {
		updated, err := repo.Update(task.ID, owner.ID, map[string]any{"title": "Renamed"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "Renamed" {
			t.Errorf("expected title Renamed, got %q", updated.Title)
		}
		if updated.OwnerID != owner.ID {
			t.Errorf("owner changed on update: %v", updated.OwnerID)
		}
	})

	t.Run("non-owner update is a no-op", func(t *testing.T) {
		_, err := repo.Update(task.ID, other.ID, map[string]any{"title": "Hijacked"})
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		var found domain.Task
		if err := db.First(&found, "id = ?", task.ID).Error; err != nil {
			t.Fatalf("failed to reload task: %v", err)
		}
		if found.Title != "Renamed" {
			t.Errorf("non-owner update modified the task: %q", found.Title)
		}
	})

	t.Run("absent task looks identical to not-owned", func(t *testing.T) {
		_, err := repo.Update("non-existent-id", owner.ID, map[string]any{"title": "x"})
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTaskRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	recipient := createTestUser(t, db, "recipient@example.com")
	second := createTestUser(t, db, "second@example.com")
	task := createTestTask(t, db, owner.ID, "Doomed", "")

	for _, recipientID := range []string{recipient.ID, second.ID} {
		share := &domain.Share{
			ID:          uuid.New().String(),
			TaskID:      task.ID,
			RecipientID: recipientID,
			Permission:  domain.PermissionEdit,
			CreatedAt:   time.Now(),
		}
		if err := db.Create(share).Error; err != nil {
			t.Fatalf("failed to create test share: %v", err)
		}
	}

	t.Run("non-owner delete is a no-op", func(t *testing.T) {
		deleted, err := repo.Delete(task.ID, other.ID)
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if deleted {
			t.Error("non-owner delete reported success")
		}

		var count int64
		db.Model(&domain.Task{}).Where("id = ?", task.ID).Count(&count)
		if count != 1 {
			t.Error("non-owner delete removed the task")
		}
	})

	t.Run("owner delete cascades to shares", func(t *testing.T) {
		deleted, err := repo.Delete(task.ID, owner.ID)
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if !deleted {
			t.Fatal("expected delete to report success")
		}

		var taskCount, shareCount int64
		db.Model(&domain.Task{}).Where("id = ?", task.ID).Count(&taskCount)
		db.Model(&domain.Share{}).Where("task_id = ?", task.ID).Count(&shareCount)
		if taskCount != 0 {
			t.Error("task row still present after delete")
		}
		if shareCount != 0 {
			t.Errorf("expected 0 orphaned shares, got %d", shareCount)
		}
	})

	t.Run("delete of absent task", func(t *testing.T) {
		deleted, err := repo.Delete("non-existent-id", owner.ID)
		if err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if deleted {
			t.Error("expected no deletion for absent task")
		}
	})
}

func TestTaskRepository_FindSharedWith(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	recipient := createTestUser(t, db, "recipient@example.com")
	shared := createTestTask(t, db, owner.ID, "Shared task", "")
	createTestTask(t, db, owner.ID, "Private task", "")

	share := &domain.Share{
		ID:          uuid.New().String(),
		TaskID:      shared.ID,
		RecipientID: recipient.ID,
		Permission:  domain.PermissionView,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(share).Error; err != nil {
		t.Fatalf("failed to create test share: %v", err)
	}

	tasks, err := repo.FindSharedWith(recipient.ID)
	if err != nil {
		t.Fatalf("FindSharedWith() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 shared task, got %d", len(tasks))
	}
	if tasks[0].ID != shared.ID {
		t.Errorf("expected task %v, got %v", shared.ID, tasks[0].ID)
	}
	if tasks[0].Owner == nil || tasks[0].Owner.ID != owner.ID {
		t.Error("expected owner to be joined on shared task")
	}
}

func TestTaskRepository_FindDueBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	owner := createTestUser(t, db, "owner@example.com")

	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(48 * time.Hour)

	dueSoon := createTestTask(t, db, owner.ID, "Due soon", "")
	db.Model(dueSoon).Update("due_date", soon)

	dueLater := createTestTask(t, db, owner.ID, "Due later", "")
	db.Model(dueLater).Update("due_date", later)

	doneSoon := createTestTask(t, db, owner.ID, "Done already", "")
	db.Model(doneSoon).Updates(map[string]any{"due_date": soon, "status": domain.StatusCompleted})

	createTestTask(t, db, owner.ID, "No due date", "")

	tasks, err := repo.FindDueBefore(time.Now().Add(24 * time.Hour))
	if err != nil {
		t.Fatalf("FindDueBefore() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 due task, got %d", len(tasks))
	}
	if tasks[0].ID != dueSoon.ID {
		t.Errorf("expected task %v, got %v", dueSoon.ID, tasks[0].ID)
	}
}
