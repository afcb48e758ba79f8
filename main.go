package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"publicseva-be/config"
	"publicseva-be/repositories"
	"publicseva-be/routes"
	"publicseva-be/services"
	authUtils "publicseva-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// run wires the server and blocks until SIGINT or SIGTERM.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		config.InitLogger("development")
		return fmt.Errorf("loading configuration: %w", err)
	}
	config.InitLogger(cfg.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		users  repositories.UserRepository
		issues repositories.IssueRepository
	)
	switch cfg.Store {
	case "memory":
		store := repositories.NewMemoryStore()
		users, issues = store.Users(), store.Issues()
		log.Warn().Msg("Using in-memory store, data is lost on restart")
	default:
		client, db, err := config.ConnectDB(cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("connecting to MongoDB: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}()
		users = repositories.NewUserRepository(db.Collection(config.UsersCollection))
		issues = repositories.NewIssueRepository(db.Collection(config.IssuesCollection))
	}

	tokens, err := authUtils.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}

	authService := services.NewAuthService(users, tokens)
	issueService := services.NewIssueService(issues, users)
	adminService := services.NewAdminService(issueService)

	created, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("Admin account created")
	}

	deps := routes.Deps{
		Auth:        authService,
		Issues:      issueService,
		Admin:       adminService,
		Tokens:      tokens,
		LimitPrefix: cfg.Redis.IssuePrefix,
		DailyLimit:  cfg.IssueDailyLimit,
		CORSOrigins: cfg.CORSOrigins,
	}
	if cfg.Redis.Address != "" {
		redisClient, err := config.ConnectRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to Redis: %w", err)
		}
		defer redisClient.Close()
		deps.Counter = redisClient
	} else {
		log.Warn().Msg("REDIS_ADDRESS not set, issue rate limiting disabled")
	}

	r, err := routes.Setup(deps)
	if err != nil {
		return fmt.Errorf("setting up routes: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("starting server: %w", err)
	case <-quit:
	}
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	return nil
}
