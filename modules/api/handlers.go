package api

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/example/taskshare/modules/identity"
	"github.com/example/taskshare/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	identityContainer mono.ServiceContainer
	identity          identity.IdentityPort
	tasks             task.TaskPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(identityContainer mono.ServiceContainer, identityPort identity.IdentityPort, taskPort task.TaskPort) *Handlers {
	return &Handlers{
		identityContainer: identityContainer,
		identity:          identityPort,
		tasks:             taskPort,
	}
}

// currentUser returns the authenticated local user stored by the auth
// middleware.
func currentUser(c *fiber.Ctx) (*identity.UserResponse, bool) {
	user, ok := c.Locals(UserContextKey).(*identity.UserResponse)
	return user, ok
}

// Register handles POST /api/v1/auth/register.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", nil)
	}

	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return badRequest(c, "Validation failed", fields)
	}

	identityReq := identity.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	}
	var resp identity.RegisterResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.identityContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&identityReq,
		&resp,
	); err != nil {
		return handleIdentityError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", nil)
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required", nil)
	}

	identityReq := identity.LoginRequest{Email: req.Email, Password: req.Password}
	var resp identity.LoginResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.identityContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&identityReq,
		&resp,
	); err != nil {
		return handleIdentityError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Profile handles GET /api/v1/profile: the caller's own user record,
// read from the user directory rather than echoed from token claims.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	profile, err := h.identity.GetUser(c.UserContext(), user.ID)
	if err != nil {
		log.Printf("[api] Failed to load profile for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve user profile",
		})
	}
	return c.JSON(profile)
}

// ListTasks handles GET /api/v1/tasks: the union of tasks the caller
// owns and tasks shared to them, optionally filtered by ?search=.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	resp, err := h.tasks.ListTasks(c.UserContext(), user.ID, c.Query("search"))
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(resp)
}

// GetTask handles GET /api/v1/tasks/:id. Access requires ownership or a
// share; a task that exists but grants neither yields 403.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	taskResp, err := h.tasks.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleTaskError(c, err)
	}

	if taskResp.OwnerID != user.ID && !sharedWith(taskResp, user.ID) {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have access to this task",
		})
	}
	return c.JSON(taskResp)
}

// CreateTask handles POST /api/v1/tasks. The owner is the authenticated
// caller, never a body field.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", nil)
	}
	if fields := validateTaskFields(req.Title, req.Status, req.Priority, true); len(fields) > 0 {
		return badRequest(c, "Validation failed", fields)
	}

	resp, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		OwnerID:     user.ID,
	})
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateTask handles PUT /api/v1/tasks/:id. Only the owner may update;
// a non-owner gets the same 404 as a missing task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", nil)
	}

	fields := map[string]string{}
	if req.Title != nil && *req.Title == "" {
		fields["title"] = "title must not be empty"
	}
	if req.Status != nil && !validStatus(*req.Status) {
		fields["status"] = "must be todo, in-progress or completed"
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		fields["priority"] = "must be low, medium or high"
	}
	if len(fields) > 0 {
		return badRequest(c, "Validation failed", fields)
	}

	resp, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		TaskID:      c.Params("id"),
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(resp)
}

// DeleteTask handles DELETE /api/v1/tasks/:id. A non-owner delete is a
// no-op reported as 404.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	deleted, err := h.tasks.DeleteTask(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return handleTaskError(c, err)
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ShareTask handles POST /api/v1/tasks/share. The recipient is resolved
// by email; an unseen email is provisioned as a placeholder account so
// the share is recorded before the recipient ever logs in.
func (h *Handlers) ShareTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	var req ShareTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", nil)
	}

	fields := map[string]string{}
	if req.TaskID == "" {
		fields["taskId"] = "taskId is required"
	}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.Permission != "" && !validPermission(req.Permission) {
		fields["permission"] = "must be view or edit"
	}
	if len(fields) > 0 {
		return badRequest(c, "Validation failed", fields)
	}

	// Check the task and ownership before touching the user directory;
	// a rejected share must not leave a provisioned recipient behind.
	taskResp, err := h.tasks.GetTask(c.UserContext(), req.TaskID)
	if err != nil {
		return handleTaskError(c, err)
	}
	if taskResp.OwnerID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Only the task owner may do this",
		})
	}

	recipient, err := h.identity.ProvisionByEmail(c.UserContext(), req.Email)
	if err != nil {
		if strings.Contains(err.Error(), "invalid email format") {
			return badRequest(c, "Invalid email format", map[string]string{"email": "invalid email format"})
		}
		return handleIdentityError(c, err)
	}

	resp, err := h.tasks.ShareTask(c.UserContext(), &task.ShareTaskRequest{
		TaskID:      req.TaskID,
		RequesterID: user.ID,
		RecipientID: recipient.ID,
		Permission:  req.Permission,
	})
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListShares handles GET /api/v1/tasks/:id/shares (owner only).
func (h *Handlers) ListShares(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	resp, err := h.tasks.ListShares(c.UserContext(), c.Params("id"), user.ID)
	if err != nil {
		return handleTaskError(c, err)
	}
	return c.JSON(resp)
}

// RevokeShare handles DELETE /api/v1/tasks/:id/shares/:userId (owner
// only).
func (h *Handlers) RevokeShare(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}

	removed, err := h.tasks.RevokeShare(c.UserContext(), c.Params("id"), user.ID, c.Params("userId"))
	if err != nil {
		return handleTaskError(c, err)
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Share not found",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Health handles GET /health. Storage reachability is probed through the
// task module; failure surfaces as 503, never as a crash.
func (h *Handlers) Health(c *fiber.Ctx) error {
	if _, err := h.tasks.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:   "unhealthy",
			Database: "unreachable",
		})
	}
	return c.JSON(HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// sharedWith reports whether the task's share list contains the user.
func sharedWith(t *task.TaskResponse, userID string) bool {
	for _, s := range t.Shares {
		if s.RecipientID == userID {
			return true
		}
	}
	return false
}

func validStatus(s string) bool {
	return s == "todo" || s == "in-progress" || s == "completed"
}

func validPriority(p string) bool {
	return p == "low" || p == "medium" || p == "high"
}

func validPermission(p string) bool {
	return p == "view" || p == "edit"
}

// validateTaskFields collects field errors for task creation.
func validateTaskFields(title, status, priority string, titleRequired bool) map[string]string {
	fields := map[string]string{}
	if titleRequired && title == "" {
		fields["title"] = "title is required"
	}
	if status != "" && !validStatus(status) {
		fields["status"] = "must be todo, in-progress or completed"
	}
	if priority != "" && !validPriority(priority) {
		fields["priority"] = "must be low, medium or high"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// unauthenticated writes the 401 used when middleware context is missing.
func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

// handleIdentityError maps identity service errors to HTTP statuses.
// Service errors cross the container as strings, so mapping is by
// message.
func handleIdentityError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "user already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "A user with this email already exists",
		})
	case strings.Contains(msg, "invalid email format"):
		return badRequest(c, "Invalid email format", map[string]string{"email": "invalid email format"})
	case strings.Contains(msg, "password must be at least"):
		return badRequest(c, "Password must be at least 8 characters", map[string]string{"password": "too short"})
	case strings.Contains(msg, "password must be at most"):
		return badRequest(c, "Password must be at most 72 characters", map[string]string{"password": "too long"})
	case strings.Contains(msg, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// handleTaskError maps task service errors to HTTP statuses. Absent and
// not-owned both arrive as "task not found" and both map to 404.
func handleTaskError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(msg, "not the task owner"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "Only the task owner may do this",
		})
	case strings.Contains(msg, "already shared"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Task is already shared with this user",
		})
	case strings.Contains(msg, "title is required"):
		return badRequest(c, "Title is required", map[string]string{"title": "title is required"})
	case strings.Contains(msg, "invalid status"):
		return badRequest(c, "Invalid status value", map[string]string{"status": "must be todo, in-progress or completed"})
	case strings.Contains(msg, "invalid priority"):
		return badRequest(c, "Invalid priority value", map[string]string{"priority": "must be low, medium or high"})
	case strings.Contains(msg, "invalid permission"):
		return badRequest(c, "Invalid permission value", map[string]string{"permission": "must be view or edit"})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// badRequest writes a 400 with optional per-field messages.
func badRequest(c *fiber.Ctx, message string, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Fields:  fields,
	})
}
