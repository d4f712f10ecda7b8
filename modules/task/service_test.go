package task

import (
	"context"
	"testing"

	domain "github.com/example/taskshare/domain/task"
	"gorm.io/gorm"
)

// setupModule builds a TaskModule on an in-memory database, with no
// event bus. Event publication is best-effort and guarded, so handlers
// work without one.
func setupModule(t *testing.T) (*TaskModule, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	return &TaskModule{
		db:     db,
		repo:   NewTaskRepository(db),
		shares: NewShareRepository(db),
	}, db
}

func TestCreateTask_Defaults(t *testing.T) {
	module, db := setupModule(t)
	owner := createTestUser(t, db, "owner@example.com")

	resp, err := module.createTask(context.Background(), CreateTaskRequest{
		Title:   "Minimal task",
		OwnerID: owner.ID,
	}, nil)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}

	if resp.Status != string(domain.StatusTodo) {
		t.Errorf("expected default status todo, got %q", resp.Status)
	}
	if resp.Priority != string(domain.PriorityMedium) {
		t.Errorf("expected default priority medium, got %q", resp.Priority)
	}
	if resp.Owner == nil || resp.Owner.Email != "owner@example.com" {
		t.Error("expected owner to be joined in the response")
	}
	if resp.Shares == nil {
		t.Error("expected an empty share list, not null")
	}
}

func TestCreateTask_Validation(t *testing.T) {
	module, db := setupModule(t)
	owner := createTestUser(t, db, "owner@example.com")

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{
			name:    "missing title",
			req:     CreateTaskRequest{OwnerID: owner.ID},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "unknown status",
			req:     CreateTaskRequest{Title: "x", Status: "archived", OwnerID: owner.ID},
			wantErr: ErrInvalidStatus,
		},
		{
			name:    "unknown priority",
			req:     CreateTaskRequest{Title: "x", Priority: "urgent", OwnerID: owner.ID},
			wantErr: ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := module.createTask(context.Background(), tt.req, nil)
			if err != tt.wantErr {
				t.Errorf("createTask() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListTasks_UnionOwnedAndShared(t *testing.T) {
	module, db := setupModule(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestTask(t, db, alice.ID, "Alice's own task", "")
	bobTask := createTestTask(t, db, bob.ID, "Bob's shared task", "")
	createTestTask(t, db, bob.ID, "Bob's private task", "")

	if _, err := module.shareTask(ctx, ShareTaskRequest{
		TaskID:      bobTask.ID,
		RequesterID: bob.ID,
		RecipientID: alice.ID,
	}, nil); err != nil {
		t.Fatalf("shareTask() error = %v", err)
	}

	resp, err := module.listTasks(ctx, ListTasksRequest{UserID: alice.ID}, nil)
	if err != nil {
		t.Fatalf("listTasks() error = %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected 2 visible tasks, got %d", resp.Total)
	}

	seen := map[string]bool{}
	for _, task := range resp.Tasks {
		seen[task.Title] = true
	}
	if !seen["Alice's own task"] || !seen["Bob's shared task"] {
		t.Errorf("union missing expected tasks: %v", seen)
	}
	if seen["Bob's private task"] {
		t.Error("union leaked a task that was never shared")
	}
}

func TestUpdateTask_OwnershipAndImmutableOwner(t *testing.T) {
	module, db := setupModule(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	task := createTestTask(t, db, owner.ID, "Original", "")

	t.Run("owner updates fields", func(t *testing.T) {
		title := "Renamed"
		status := "completed"
		resp, err := module.updateTask(ctx, UpdateTaskRequest{
			TaskID:  task.ID,
			OwnerID: owner.ID,
			Title:   &title,
			Status:  &status,
		}, nil)
		if err != nil {
			t.Fatalf("updateTask() error = %v", err)
		}
		if resp.Title != "Renamed" || resp.Status != "completed" {
			t.Errorf("update not applied: %+v", resp)
		}
		if resp.OwnerID != owner.ID {
			t.Errorf("owner changed on update: %v", resp.OwnerID)
		}
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		title := "Hijacked"
		_, err := module.updateTask(ctx, UpdateTaskRequest{
			TaskID:  task.ID,
			OwnerID: other.ID,
			Title:   &title,
		}, nil)
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for non-owner, got %v", err)
		}
	})

	t.Run("invalid status rejected before touching storage", func(t *testing.T) {
		status := "archived"
		_, err := module.updateTask(ctx, UpdateTaskRequest{
			TaskID:  task.ID,
			OwnerID: owner.ID,
			Status:  &status,
		}, nil)
		if err != ErrInvalidStatus {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})
}

func TestShareTask(t *testing.T) {
	module, db := setupModule(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	recipient := createTestUser(t, db, "recipient@example.com")
	task := createTestTask(t, db, owner.ID, "Shareable", "")

	t.Run("first share succeeds with default view permission", func(t *testing.T) {
		resp, err := module.shareTask(ctx, ShareTaskRequest{
			TaskID:      task.ID,
			RequesterID: owner.ID,
			RecipientID: recipient.ID,
		}, nil)
		if err != nil {
			t.Fatalf("shareTask() error = %v", err)
		}
		if resp.Permission != string(domain.PermissionView) {
			t.Errorf("expected default view permission, got %q", resp.Permission)
		}
		if resp.Recipient == nil || resp.Recipient.Email != "recipient@example.com" {
			t.Error("expected recipient to be joined in the response")
		}
	})

	t.Run("duplicate share conflicts", func(t *testing.T) {
		_, err := module.shareTask(ctx, ShareTaskRequest{
			TaskID:      task.ID,
			RequesterID: owner.ID,
			RecipientID: recipient.ID,
			Permission:  "edit",
		}, nil)
		if err != ErrDuplicateShare {
			t.Errorf("expected ErrDuplicateShare, got %v", err)
		}
	})

	t.Run("non-owner cannot share", func(t *testing.T) {
		_, err := module.shareTask(ctx, ShareTaskRequest{
			TaskID:      task.ID,
			RequesterID: other.ID,
			RecipientID: other.ID,
		}, nil)
		if err != ErrNotOwner {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("unknown permission rejected", func(t *testing.T) {
		_, err := module.shareTask(ctx, ShareTaskRequest{
			TaskID:      task.ID,
			RequesterID: owner.ID,
			RecipientID: other.ID,
			Permission:  "admin",
		}, nil)
		if err != ErrInvalidPermission {
			t.Errorf("expected ErrInvalidPermission, got %v", err)
		}
	})

	t.Run("absent task", func(t *testing.T) {
		_, err := module.shareTask(ctx, ShareTaskRequest{
			TaskID:      "non-existent-id",
			RequesterID: owner.ID,
			RecipientID: recipient.ID,
		}, nil)
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestListAndRevokeShares(t *testing.T) {
	module, db := setupModule(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	recipient := createTestUser(t, db, "recipient@example.com")
	task := createTestTask(t, db, owner.ID, "Shared", "")

	if _, err := module.shareTask(ctx, ShareTaskRequest{
		TaskID:      task.ID,
		RequesterID: owner.ID,
		RecipientID: recipient.ID,
		Permission:  "edit",
	}, nil); err != nil {
		t.Fatalf("shareTask() error = %v", err)
	}

	t.Run("owner lists shares", func(t *testing.T) {
		resp, err := module.listShares(ctx, ListSharesRequest{TaskID: task.ID, RequesterID: owner.ID}, nil)
		if err != nil {
			t.Fatalf("listShares() error = %v", err)
		}
		if resp.Total != 1 {
			t.Fatalf("expected 1 share, got %d", resp.Total)
		}
		if resp.Shares[0].Permission != "edit" {
			t.Errorf("expected recorded permission edit, got %q", resp.Shares[0].Permission)
		}
	})

	t.Run("non-owner cannot list shares", func(t *testing.T) {
		_, err := module.listShares(ctx, ListSharesRequest{TaskID: task.ID, RequesterID: other.ID}, nil)
		if err != ErrNotOwner {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("non-owner cannot revoke", func(t *testing.T) {
		_, err := module.revokeShare(ctx, RevokeShareRequest{
			TaskID:      task.ID,
			RequesterID: other.ID,
			RecipientID: recipient.ID,
		}, nil)
		if err != ErrNotOwner {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("owner revokes and the edge is gone", func(t *testing.T) {
		resp, err := module.revokeShare(ctx, RevokeShareRequest{
			TaskID:      task.ID,
			RequesterID: owner.ID,
			RecipientID: recipient.ID,
		}, nil)
		if err != nil {
			t.Fatalf("revokeShare() error = %v", err)
		}
		if !resp.Removed {
			t.Error("expected removal to be reported")
		}

		// Revoking again reports nothing removed
		resp, err = module.revokeShare(ctx, RevokeShareRequest{
			TaskID:      task.ID,
			RequesterID: owner.ID,
			RecipientID: recipient.ID,
		}, nil)
		if err != nil {
			t.Fatalf("revokeShare() second call error = %v", err)
		}
		if resp.Removed {
			t.Error("expected second revoke to be a no-op")
		}
	})
}

func TestDeleteTask_Service(t *testing.T) {
	module, db := setupModule(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	task := createTestTask(t, db, owner.ID, "Doomed", "")

	resp, err := module.deleteTask(ctx, DeleteTaskRequest{TaskID: task.ID, OwnerID: other.ID}, nil)
	if err != nil {
		t.Fatalf("deleteTask() error = %v", err)
	}
	if resp.Deleted {
		t.Error("non-owner delete reported success")
	}

	resp, err = module.deleteTask(ctx, DeleteTaskRequest{TaskID: task.ID, OwnerID: owner.ID}, nil)
	if err != nil {
		t.Fatalf("deleteTask() error = %v", err)
	}
	if !resp.Deleted {
		t.Error("owner delete did not report success")
	}
}
