package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recruiterops/backend/internal/config"
	"github.com/recruiterops/backend/internal/domain"
	"github.com/recruiterops/backend/internal/handler"
	"github.com/recruiterops/backend/internal/logger"
	appMiddleware "github.com/recruiterops/backend/internal/middleware"
	"github.com/recruiterops/backend/internal/repository"
	"github.com/recruiterops/backend/internal/service"
	"github.com/recruiterops/backend/internal/ws"
	"github.com/recruiterops/backend/pkg/groq"
)

func main() {
	// Load .env file if present (for local development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zlog.Sync()

	handler.SetLogger(zlog)

	ctx := context.Background()

	// Initialize database
	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database error", zap.Error(err))
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		zlog.Fatal("migration error", zap.Error(err))
	}
	zlog.Info("database connected and migrated")

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	pendingRepo := repository.NewPendingRepository(db)
	jobRepo := repository.NewJobRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	claimSvc := service.NewClaimService(profileRepo, pendingRepo, auditRepo, nil, zlog)
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TrialDays, profileRepo, claimSvc, zlog)
	pipelineSvc := service.NewPipelineService(jobRepo, candidateRepo, profileRepo, auditRepo, nil, zlog)

	// The activity hub needs authSvc for token checks, and the services need
	// the hub to publish; wire the hub in after both exist.
	activityHub := ws.NewActivityHub(authSvc, zlog)
	claimSvc.SetPublisher(activityHub)
	pipelineSvc.SetPublisher(activityHub)

	reconciler := service.NewReconciler(
		cfg.GumroadSellerID,
		profileRepo,
		pendingRepo,
		jobRepo,
		candidateRepo,
		auditRepo,
		activityHub,
		zlog,
	)

	groqClient := groq.New(cfg.GroqAPIKey, cfg.GroqModel)
	assistantSvc := service.NewAssistantService(groqClient, candidateRepo, pipelineSvc, zlog)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileRepo)
	webhookHandler := handler.NewWebhookHandler(reconciler)
	subscriptionHandler := handler.NewSubscriptionHandler(claimSvc)
	jobHandler := handler.NewJobHandler(pipelineSvc)
	candidateHandler := handler.NewCandidateHandler(pipelineSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	activityHandler := handler.NewActivityHandler(auditRepo)
	plansHandler := handler.NewPlansHandler()
	healthHandler := handler.NewHealthHandler(db)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.Recovery(zlog))
	r.Use(appMiddleware.Logger(zlog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	// Health check and public routes (no auth)
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/plans", plansHandler.List)
	r.HandleFunc("/api/webhooks/gumroad", webhookHandler.HandleGumroad)
	r.Post("/api/subscription/confirm", subscriptionHandler.Confirm)

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.StrictRateLimiter())
		r.Post("/api/auth/signup", authHandler.Signup)
		r.Post("/api/auth/login", authHandler.Login)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(authSvc))

		r.Get("/api/auth/me", authHandler.Me)

		r.Get("/api/profile", profileHandler.Get)
		r.Put("/api/profile", profileHandler.Update)
		r.Get("/api/profile/entitlements", profileHandler.Entitlements)

		r.Get("/api/activity", activityHandler.List)

		// Pipeline routes require an active subscription
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireActive(profileRepo))

			r.Get("/api/jobs", jobHandler.List)
			r.Post("/api/jobs", jobHandler.Create)
			r.Get("/api/jobs/{id}/candidates", jobHandler.Candidates)
			r.Get("/api/jobs/{id}", jobHandler.GetByID)
			r.Put("/api/jobs/{id}", jobHandler.Update)
			r.Delete("/api/jobs/{id}", jobHandler.Delete)

			r.Get("/api/candidates", candidateHandler.List)
			r.Post("/api/candidates", candidateHandler.Create)
			r.Put("/api/candidates/{id}", candidateHandler.Update)
			r.Delete("/api/candidates/{id}", candidateHandler.Delete)

			r.Get("/api/stats", jobHandler.Stats)
			r.Get("/api/assistant/summary", assistantHandler.DailySummary)
		})

		// Drafting routes are gated per plan
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireFeature(profileRepo, domain.FeatureOutreachDrafts))
			r.Post("/api/candidates/{id}/outreach", assistantHandler.Outreach)
		})
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireFeature(profileRepo, domain.FeatureInterviewInvites))
			r.Post("/api/candidates/{id}/invite", assistantHandler.Invite)
		})
	})

	// WebSocket activity feed (auth via query param)
	r.HandleFunc("/ws/activity", activityHub.Handle)

	// Start server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout must be 0 for WebSocket connections (they are long-lived)
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		zlog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	zlog.Info("server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		zlog.Fatal("server error", zap.Error(err))
	}
}
