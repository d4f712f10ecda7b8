package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/taskshare/modules/api"
	"github.com/example/taskshare/modules/identity"
	"github.com/example/taskshare/modules/notification"
	"github.com/example/taskshare/modules/reminder"
	"github.com/example/taskshare/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== TaskShare ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(identity.NewModule())     // Independent (accounts, tokens, user directory)
	app.Register(notification.NewModule()) // Independent (event consumers only)
	app.Register(task.NewModule())         // Independent (task store and sharing ledger)
	app.Register(reminder.NewModule())     // Depends on task module
	app.Register(api.NewModule())          // Depends on identity and task modules

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("REST API Endpoints (http://localhost:3000):")
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/register            - Register a new account")
	log.Println("  POST   /api/v1/auth/login               - Login and get a token")
	log.Println("  GET    /health                          - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/profile                  - Get the caller's user record")
	log.Println("  GET    /api/v1/tasks                    - List owned and shared tasks (?search=)")
	log.Println("  POST   /api/v1/tasks                    - Create a task")
	log.Println("  GET    /api/v1/tasks/:id                - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id                - Update a task (owner only)")
	log.Println("  DELETE /api/v1/tasks/:id                - Delete a task (owner only)")
	log.Println("  POST   /api/v1/tasks/share              - Share a task by recipient email")
	log.Println("  GET    /api/v1/tasks/:id/shares         - List a task's shares (owner only)")
	log.Println("  DELETE /api/v1/tasks/:id/shares/:userId - Revoke a share (owner only)")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
