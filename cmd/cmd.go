package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"site-chat-backend/internal/config"
	"site-chat-backend/internal/handlers"
	"site-chat-backend/internal/middleware"
	"site-chat-backend/internal/notify"
	"site-chat-backend/internal/services"
	"site-chat-backend/internal/store"
	"site-chat-backend/internal/store/kv"
	"site-chat-backend/internal/store/local"
	"site-chat-backend/internal/store/postgres"
	"site-chat-backend/migrations"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Select the persistence mode once; everything downstream is wired
	// against the store contract and never asks again.
	mode := cfg.Mode()
	log.Info().Str("mode", mode.String()).Msg("Persistence mode selected")

	var st *store.Store
	switch mode {
	case config.ModeRemote:
		dsn, err := cfg.Remote.DSN()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build remote DSN")
		}

		// Apply schema migrations before taking traffic
		if err := migrations.Run(dsn); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		// Connect to database
		db, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		// Test database connection
		if err := db.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connection established")

		st = postgres.New(db)

	default:
		// Open the embedded key-value store
		kvStore, err := kv.Open(cfg.Local.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open local store")
		}
		defer func() {
			if err := kvStore.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close local store")
			}
		}()
		log.Info().Str("path", cfg.Local.Path).Msg("Local store opened")

		st = local.New(kvStore)
	}

	// Push delivery is optional; without a certificate the dispatcher
	// drops every request.
	var notifier *notify.Dispatcher
	if cfg.APNs.CertPath != "" {
		notifier, err = notify.New(cfg.APNs.CertPath, cfg.APNs.CertPassword, cfg.APNs.Topic, cfg.APNs.Production)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push dispatcher")
		}
	} else {
		notifier = notify.NewDisabled()
	}
	defer notifier.Close()

	// Media uploads are optional as well
	var mediaService *services.MediaService
	if cfg.AWS.S3Bucket != "" {
		mediaService, err = services.NewMediaService(
			cfg.AWS.Region,
			cfg.AWS.S3Bucket,
			cfg.AWS.AccessKey,
			cfg.AWS.SecretKey,
			cfg.AWS.Endpoint,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create media service")
		}
	}

	// Initialize services
	authService := services.NewAuthService(st.Users, cfg.JWT.Secret)
	userService := services.NewUserService(st.Users)
	projectService := services.NewProjectService(st.Projects)
	messageService := services.NewMessageService(st.Messages, st.Projects, st.Users, notifier)
	timeService := services.NewTimeTrackService(st.TimeEntries)
	hub := services.NewHub(st.Feed)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	messageHandler := handlers.NewMessageHandler(messageService, projectService, userService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	timeHandler := handlers.NewTimeTrackHandler(timeService, userService)
	wsHandler := handlers.NewWebSocketHandler(hub, authService, projectService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))

			r.Get("/users", userHandler.List)
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/push-token", userHandler.UpdatePushToken)

			r.Get("/projects", projectHandler.List)
			r.Get("/projects/{id}", projectHandler.Get)

			r.Get("/projects/{id}/messages", messageHandler.List)
			r.Post("/projects/{id}/messages", messageHandler.Create)
			r.Post("/messages/{id}/read", messageHandler.MarkRead)

			r.Post("/projects/{id}/media", mediaHandler.PresignUpload)

			r.Post("/projects/{id}/time/check-in", timeHandler.CheckIn)
			r.Post("/projects/{id}/time/check-out", timeHandler.CheckOut)
			r.Get("/projects/{id}/time/entries", timeHandler.ListEntries)
			r.Get("/projects/{id}/time/sessions", timeHandler.ListSessions)
			r.Get("/projects/{id}/time/active", timeHandler.ActiveSession)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/projects", projectHandler.Create)
				r.Put("/projects/{id}", projectHandler.Update)
				r.Post("/projects/{id}/members", projectHandler.AddMember)
			})
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.Serve)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
