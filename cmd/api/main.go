package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "consulting-os/docs" // This is for Swagger
	"consulting-os/internal/ai"
	"consulting-os/internal/auth"
	"consulting-os/internal/config"
	"consulting-os/internal/database"
	"consulting-os/internal/email"
	"consulting-os/internal/handlers"
	"consulting-os/internal/keymanager"
	"consulting-os/internal/logger"
	"consulting-os/internal/middleware"
	"consulting-os/internal/realtime"
	"consulting-os/internal/repository"
	"consulting-os/internal/scheduler"
	"consulting-os/internal/securestore"
	"consulting-os/internal/service"
	"consulting-os/internal/vault"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Consulting OS API
// @version 1.0
// @description Backend API for a consulting practice: clients, engagements, sessions and AI-drafted documents
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@consulting-os.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	authSessionRepo := repository.NewAuthSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	clientRepo := repository.NewClientRepository(db.DB)
	intakeRepo := repository.NewIntakeRepository(db.DB)
	engagementRepo := repository.NewEngagementRepository(db.DB)
	goalRepo := repository.NewGoalRepository(db.DB)
	actionRepo := repository.NewActionRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	summaryRepo := repository.NewSummaryRepository(db.DB)
	proposalRepo := repository.NewProposalRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)
	usageRepo := repository.NewUsageRepository(db.DB)
	engagementKeyRepo := repository.NewEngagementKeyRepository(db.DB)

	// Initialize key management for session note encryption
	var vaultClient *vault.Client
	if cfg.Vault.Enabled {
		vaultClient, err = vault.NewClient(&vault.Config{
			Address:      cfg.Vault.Address,
			Token:        cfg.Vault.Token,
			TransitMount: cfg.Vault.TransitMount,
		})
		if err != nil {
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		slog.Info("Vault transit encryption enabled", "vault_addr", cfg.Vault.Address)
	} else {
		slog.Warn("Vault is disabled - session note keys derive from NOTES_MASTER_SECRET")
	}

	keyManager, err := keymanager.NewKeyManager(vaultClient, engagementKeyRepo, cfg.Vault.MasterSecret)
	if err != nil {
		slog.Error("Failed to initialize KeyManager", "error", err)
		os.Exit(1)
	}
	secureStore := securestore.NewSecureStore(keyManager)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	aiClient := ai.NewClient(&cfg.AI)
	hub := realtime.NewHub()

	authSvc := service.NewAuthService(userRepo, authSessionRepo, auditRepo, authService, emailService)
	clientService := service.NewClientService(clientRepo, userRepo, intakeRepo, auditRepo, authService, emailService)
	engagementService := service.NewEngagementService(engagementRepo, clientRepo, goalRepo, actionRepo, sessionRepo, auditRepo)
	goalService := service.NewGoalService(goalRepo, engagementRepo, hub)
	actionService := service.NewActionService(actionRepo, engagementRepo, hub)
	sessionService := service.NewSessionService(sessionRepo, summaryRepo, engagementRepo, secureStore)
	proposalService := service.NewProposalService(proposalRepo, engagementRepo, clientRepo, userRepo, notificationRepo, auditRepo, emailService, hub)
	summaryService := service.NewSummaryService(summaryRepo, sessionRepo, engagementRepo, notificationRepo, hub)
	draftingService := service.NewDraftingService(aiClient, proposalRepo, summaryRepo, sessionRepo, engagementRepo, clientRepo, goalRepo, actionRepo, intakeRepo, usageRepo, secureStore)
	messageService := service.NewMessageService(messageRepo, engagementRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(sessionRepo, engagementRepo, userRepo, messageRepo, emailService, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, authSessionRepo)
	rbacMw := middleware.NewRBACMiddleware()
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditMw := middleware.NewAuditMiddleware(auditRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, auditMw, cfg)
	clientHandler := handlers.NewClientHandler(clientService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	goalHandler := handlers.NewGoalHandler(goalService)
	actionHandler := handlers.NewActionHandler(actionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	draftingHandler := handlers.NewDraftingHandler(draftingService)
	messageHandler := handlers.NewMessageHandler(messageService, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	consultantOnly := rbacMw.RequireRole(middleware.RoleConsultant)
	anyParty := rbacMw.RequireAnyRole(middleware.RoleConsultant, middleware.RoleClient)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.RefreshToken)
	mux.Handle("POST /api/v1/auth/logout", authMw.Authenticate(http.HandlerFunc(authHandler.Logout)))

	// Profile routes
	mux.Handle("GET /api/v1/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.GetProfile)))
	mux.Handle("PUT /api/v1/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.UpdateProfile)))
	mux.Handle("POST /api/v1/auth/change-password", authMw.Authenticate(http.HandlerFunc(authHandler.ChangePassword)))

	// Client routes (consultant only)
	mux.Handle("POST /api/v1/clients",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.CreateClient))))
	mux.Handle("GET /api/v1/clients",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.ListClients))))
	mux.Handle("GET /api/v1/clients/{id}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.GetClient))))
	mux.Handle("PUT /api/v1/clients/{id}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.UpdateClient))))
	mux.Handle("DELETE /api/v1/clients/{id}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.DeleteClient))))
	mux.Handle("POST /api/v1/clients/{id}/invite",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.InviteClient))))

	// Intake routes; clients read and submit their own forms
	mux.Handle("POST /api/v1/clients/{id}/intake",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(clientHandler.CreateIntakeForm))))
	mux.Handle("GET /api/v1/clients/{id}/intake",
		authMw.Authenticate(anyParty(http.HandlerFunc(clientHandler.GetLatestIntake))))
	mux.Handle("PUT /api/v1/intake/{formId}/responses",
		authMw.Authenticate(rbacMw.RequireRole(middleware.RoleClient)(http.HandlerFunc(clientHandler.SubmitIntakeResponses))))

	// Engagement routes
	mux.Handle("POST /api/v1/engagements",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(engagementHandler.CreateEngagement))))
	mux.Handle("GET /api/v1/engagements",
		authMw.Authenticate(anyParty(http.HandlerFunc(engagementHandler.ListEngagements))))
	mux.Handle("GET /api/v1/engagements/{id}",
		authMw.Authenticate(anyParty(http.HandlerFunc(engagementHandler.GetEngagement))))
	mux.Handle("PUT /api/v1/engagements/{id}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(engagementHandler.UpdateEngagement))))
	mux.Handle("PUT /api/v1/engagements/{id}/status",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(engagementHandler.UpdateStatus))))
	mux.Handle("DELETE /api/v1/engagements/{id}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(engagementHandler.DeleteEngagement))))

	// Goal routes
	mux.Handle("POST /api/v1/engagements/{id}/goals",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(goalHandler.CreateGoal))))
	mux.Handle("GET /api/v1/engagements/{id}/goals",
		authMw.Authenticate(anyParty(http.HandlerFunc(goalHandler.ListGoals))))
	mux.Handle("PUT /api/v1/goals/{goalId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(goalHandler.UpdateGoal))))
	mux.Handle("PUT /api/v1/goals/{goalId}/progress",
		authMw.Authenticate(anyParty(http.HandlerFunc(goalHandler.UpdateProgress))))
	mux.Handle("DELETE /api/v1/goals/{goalId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(goalHandler.DeleteGoal))))

	// Action routes
	mux.Handle("POST /api/v1/engagements/{id}/actions",
		authMw.Authenticate(anyParty(http.HandlerFunc(actionHandler.CreateAction))))
	mux.Handle("GET /api/v1/engagements/{id}/actions",
		authMw.Authenticate(anyParty(http.HandlerFunc(actionHandler.ListActions))))
	mux.Handle("PUT /api/v1/actions/{actionId}",
		authMw.Authenticate(anyParty(http.HandlerFunc(actionHandler.UpdateAction))))
	mux.Handle("PUT /api/v1/actions/{actionId}/toggle",
		authMw.Authenticate(anyParty(http.HandlerFunc(actionHandler.ToggleStatus))))
	mux.Handle("DELETE /api/v1/actions/{actionId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(actionHandler.DeleteAction))))

	// Session routes
	mux.Handle("POST /api/v1/engagements/{id}/sessions",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(sessionHandler.CreateSession))))
	mux.Handle("GET /api/v1/engagements/{id}/sessions",
		authMw.Authenticate(anyParty(http.HandlerFunc(sessionHandler.ListSessions))))
	mux.Handle("GET /api/v1/sessions/{sessionId}",
		authMw.Authenticate(anyParty(http.HandlerFunc(sessionHandler.GetSession))))
	mux.Handle("PUT /api/v1/sessions/{sessionId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(sessionHandler.UpdateSession))))
	mux.Handle("DELETE /api/v1/sessions/{sessionId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(sessionHandler.DeleteSession))))

	// Private session notes (consultant only, encrypted at rest)
	mux.Handle("GET /api/v1/sessions/{sessionId}/notes",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(sessionHandler.GetNotes))))
	mux.Handle("PUT /api/v1/sessions/{sessionId}/notes",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(sessionHandler.SaveNotes))))

	// Proposal routes
	mux.Handle("PUT /api/v1/engagements/{id}/proposal",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(proposalHandler.SaveDraft))))
	mux.Handle("GET /api/v1/engagements/{id}/proposal",
		authMw.Authenticate(anyParty(http.HandlerFunc(proposalHandler.GetCurrent))))
	mux.Handle("GET /api/v1/engagements/{id}/proposals",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(proposalHandler.ListProposals))))
	mux.Handle("POST /api/v1/proposals/{proposalId}/send",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(proposalHandler.Send))))
	mux.Handle("POST /api/v1/proposals/{proposalId}/accept",
		authMw.Authenticate(rbacMw.RequireRole(middleware.RoleClient)(http.HandlerFunc(proposalHandler.Accept))))
	mux.Handle("POST /api/v1/proposals/{proposalId}/reject",
		authMw.Authenticate(rbacMw.RequireRole(middleware.RoleClient)(http.HandlerFunc(proposalHandler.Reject))))
	mux.Handle("DELETE /api/v1/proposals/{proposalId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(proposalHandler.DeleteDraft))))

	// Summary routes
	mux.Handle("POST /api/v1/sessions/{sessionId}/summaries",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(summaryHandler.CreateSummary))))
	mux.Handle("PUT /api/v1/summaries/{summaryId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(summaryHandler.UpdateSummary))))
	mux.Handle("POST /api/v1/summaries/{summaryId}/approve",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(summaryHandler.Approve))))
	mux.Handle("POST /api/v1/summaries/{summaryId}/publish",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(summaryHandler.Publish))))
	mux.Handle("DELETE /api/v1/summaries/{summaryId}",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(summaryHandler.DeleteSummary))))

	// AI drafting routes (consultant only, per-user drafting budget)
	mux.Handle("POST /api/v1/engagements/{id}/proposal/generate",
		authMw.Authenticate(rateLimiter.LimitDrafting(consultantOnly(http.HandlerFunc(draftingHandler.GenerateProposal)))))
	mux.Handle("POST /api/v1/sessions/{sessionId}/summaries/generate",
		authMw.Authenticate(rateLimiter.LimitDrafting(consultantOnly(http.HandlerFunc(draftingHandler.GenerateSummary)))))
	mux.Handle("POST /api/v1/engagements/{id}/progress-update",
		authMw.Authenticate(rateLimiter.LimitDrafting(consultantOnly(http.HandlerFunc(draftingHandler.GenerateProgressUpdate)))))
	mux.Handle("GET /api/v1/usage",
		authMw.Authenticate(consultantOnly(http.HandlerFunc(draftingHandler.UsageReport))))

	// Message routes
	mux.Handle("POST /api/v1/engagements/{id}/messages",
		authMw.Authenticate(anyParty(http.HandlerFunc(messageHandler.Send))))
	mux.Handle("GET /api/v1/engagements/{id}/messages",
		authMw.Authenticate(anyParty(http.HandlerFunc(messageHandler.List))))
	mux.Handle("GET /api/v1/engagements/{id}/messages/unread",
		authMw.Authenticate(anyParty(http.HandlerFunc(messageHandler.UnreadCount))))
	mux.Handle("GET /api/v1/engagements/{id}/events",
		authMw.Authenticate(anyParty(http.HandlerFunc(messageHandler.Feed))))

	// Notification routes
	mux.Handle("GET /api/v1/notifications",
		authMw.Authenticate(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /api/v1/notifications/unread",
		authMw.Authenticate(http.HandlerFunc(notificationHandler.CountUnread)))
	mux.Handle("PUT /api/v1/notifications/{notificationId}/read",
		authMw.Authenticate(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("PUT /api/v1/notifications/read-all",
		authMw.Authenticate(http.HandlerFunc(notificationHandler.MarkAllRead)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
				return
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
			return
		}
	})

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
